package assessments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"governance-backend/internal/assessment"
	"governance-backend/internal/catalog"
	"governance-backend/internal/report"
	"governance-backend/internal/shared/telemetry"
)

// ReportGenerator produces a narrative; report.Generator satisfies it.
type ReportGenerator interface {
	Generate(ctx context.Context, in report.Input) report.Result
}

// ReferenceLoader supplies optional framework context; reference.Loader satisfies it.
type ReferenceLoader interface {
	Load(ctx context.Context) (string, bool)
}

// Service owns assessment sessions. Mutations are serialized so that
// load, mutate and save happen as one step per process.
type Service struct {
	Repo       Repo
	Catalog    func() []assessment.Section
	Reports    ReportGenerator
	References ReferenceLoader
	Now        func() time.Time

	mu sync.Mutex
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) sections() []assessment.Section {
	if s.Catalog != nil {
		return s.Catalog()
	}
	return catalog.Sections()
}

// Create starts a session with every catalog item incomplete.
func (s *Service) Create(ctx context.Context) (Record, error) {
	state := assessment.NewState(s.sections(), s.now())
	rec := Record{ID: uuid.NewString(), Snapshot: state.Snapshot()}
	if err := s.Repo.Save(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Get returns the stored session.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, ErrNotFound
	}
	return s.Repo.Load(ctx, id)
}

// Replace loads snap into the session, creating it if needed. Empty sections
// mean the current catalog; otherwise the sections must validate.
func (s *Service) Replace(ctx context.Context, id string, snap assessment.Snapshot) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, fmt.Errorf("%w: id must be a UUID", ErrInvalidInput)
	}
	if len(snap.Sections) == 0 {
		snap.Sections = s.sections()
	} else if err := catalog.Validate(snap.Sections); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := &assessment.State{}
	state.Load(snap, s.now())
	rec := Record{ID: id, Snapshot: state.Snapshot()}
	if err := s.Repo.Save(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Toggle flips one item. Unknown items yield assessment.ErrUnknownItem.
func (s *Service) Toggle(ctx context.Context, id, itemID string) (Record, error) {
	return s.mutate(ctx, id, func(state *assessment.State, now time.Time) error {
		return state.Toggle(itemID, now)
	})
}

// Reset clears every completion and refreshes the sections from the catalog.
func (s *Service) Reset(ctx context.Context, id string) (Record, error) {
	return s.mutate(ctx, id, func(state *assessment.State, now time.Time) error {
		state.Reset(s.sections(), now)
		return nil
	})
}

// ReportData derives the aggregate for the stored state.
func (s *Service) ReportData(ctx context.Context, id string) (assessment.ReportData, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return assessment.ReportData{}, err
	}
	return assessment.Derive(state), nil
}

// Report generates a narrative from the stored state.
func (s *Service) Report(ctx context.Context, id string, org *report.Organization) (report.Result, error) {
	data, err := s.ReportData(ctx, id)
	if err != nil {
		return report.Result{}, err
	}
	in := report.Input{
		Figures:          report.FiguresFrom(data),
		Organization:     org,
		ReferenceContext: s.referenceContext(ctx),
	}
	if s.Reports == nil {
		return report.Result{Narrative: report.Template(in), Source: report.SourceTemplate}, nil
	}
	return s.Reports.Generate(ctx, in), nil
}

// referenceContext is best effort: a failing loader yields no context.
func (s *Service) referenceContext(ctx context.Context) (text string) {
	if s.References == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			telemetry.Warn("assessments.reference_panic", map[string]any{"panic": fmt.Sprint(r)})
			text = ""
		}
	}()
	text, ok := s.References.Load(ctx)
	if !ok {
		return ""
	}
	return text
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*assessment.State, time.Time) error) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if err := fn(state, s.now()); err != nil {
		return Record{}, err
	}
	rec := Record{ID: id, Snapshot: state.Snapshot()}
	if err := s.Repo.Save(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) load(ctx context.Context, id string) (*assessment.State, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	state := &assessment.State{}
	state.Load(rec.Snapshot, s.now())
	return state, nil
}
