package assessments

import (
	"context"
	"sync"

	"governance-backend/internal/assessment"
)

// MemoryRepo is an in-memory implementation of Repo. Sessions live until the
// process exits.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]assessment.Snapshot
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]assessment.Snapshot)}
}

// Save stores a deep copy of the snapshot.
func (r *MemoryRepo) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[rec.ID] = copySnapshot(rec.Snapshot)
	return nil
}

// Load returns a copy of the stored snapshot.
func (r *MemoryRepo) Load(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.data[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{ID: id, Snapshot: copySnapshot(snap)}, nil
}

func copySnapshot(s assessment.Snapshot) assessment.Snapshot {
	return assessment.Snapshot{
		Sections:       assessment.CloneSections(s.Sections),
		CompletedItems: append([]string(nil), s.CompletedItems...),
		LastUpdated:    s.LastUpdated,
	}
}
