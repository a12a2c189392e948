package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrUnknownItem is returned when an item id is not part of the state's sections.
var ErrUnknownItem = errors.New("unknown item")

// State is the mutable assessment record: the catalog sections plus the set of
// completed item ids. The set is the source of truth; item flags mirror it.
type State struct {
	Sections    []Section
	Completed   map[string]struct{}
	LastUpdated time.Time
}

// NewState builds a state with every item incomplete.
func NewState(sections []Section, now time.Time) *State {
	s := &State{}
	s.Reset(sections, now)
	return s
}

// Toggle flips the completion of itemID.
func (s *State) Toggle(itemID string, now time.Time) error {
	if !s.hasItem(itemID) {
		return fmt.Errorf("toggle %q: %w", itemID, ErrUnknownItem)
	}
	if s.Completed == nil {
		s.Completed = make(map[string]struct{})
	}
	if _, ok := s.Completed[itemID]; ok {
		delete(s.Completed, itemID)
	} else {
		s.Completed[itemID] = struct{}{}
	}
	s.syncFlags()
	s.LastUpdated = now
	return nil
}

// Reset replaces the sections with a fresh copy and clears all completions.
func (s *State) Reset(sections []Section, now time.Time) {
	s.Sections = CloneSections(sections)
	s.Completed = make(map[string]struct{})
	s.syncFlags()
	s.LastUpdated = now
}

// Load replaces the state with snap. Completed ids that do not name an item in
// snap's sections are dropped. A zero snapshot timestamp is replaced by now.
func (s *State) Load(snap Snapshot, now time.Time) {
	s.Sections = CloneSections(snap.Sections)
	s.Completed = make(map[string]struct{}, len(snap.CompletedItems))
	for _, id := range snap.CompletedItems {
		if s.hasItem(id) {
			s.Completed[id] = struct{}{}
		}
	}
	s.syncFlags()
	s.LastUpdated = snap.LastUpdated
	if s.LastUpdated.IsZero() {
		s.LastUpdated = now
	}
}

// IsCompleted reports whether itemID is in the completed set.
func (s *State) IsCompleted(itemID string) bool {
	_, ok := s.Completed[itemID]
	return ok
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	out := &State{
		Sections:    CloneSections(s.Sections),
		Completed:   make(map[string]struct{}, len(s.Completed)),
		LastUpdated: s.LastUpdated,
	}
	for id := range s.Completed {
		out.Completed[id] = struct{}{}
	}
	return out
}

// Snapshot returns the serializable form of the state.
func (s *State) Snapshot() Snapshot {
	ids := make([]string, 0, len(s.Completed))
	for id := range s.Completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return Snapshot{
		Sections:       CloneSections(s.Sections),
		CompletedItems: ids,
		LastUpdated:    s.LastUpdated,
	}
}

// MarshalJSON encodes the state as a Snapshot.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// UnmarshalJSON decodes a Snapshot and reconstitutes the completed set.
func (s *State) UnmarshalJSON(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.Load(snap, time.Now().UTC())
	return nil
}

func (s *State) hasItem(itemID string) bool {
	for _, section := range s.Sections {
		for _, item := range section.Items {
			if item.ID == itemID {
				return true
			}
		}
	}
	return false
}

func (s *State) syncFlags() {
	for i := range s.Sections {
		items := s.Sections[i].Items
		for j := range items {
			_, items[j].Completed = s.Completed[items[j].ID]
		}
	}
}

// Snapshot is the wire and storage form of a State; the completed set travels
// as a plain list.
type Snapshot struct {
	Sections       []Section `json:"sections"`
	CompletedItems []string  `json:"completedItems"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// UnmarshalJSON accepts lastUpdated as an RFC 3339 string, epoch milliseconds,
// an empty string or null.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw struct {
		Sections       []Section       `json:"sections"`
		CompletedItems []string        `json:"completedItems"`
		LastUpdated    json.RawMessage `json:"lastUpdated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := parseTimestamp(raw.LastUpdated)
	if err != nil {
		return fmt.Errorf("lastUpdated: %w", err)
	}
	s.Sections = raw.Sections
	s.CompletedItems = raw.CompletedItems
	s.LastUpdated = ts
	return nil
}

func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if str == "" {
			return time.Time{}, nil
		}
		return time.Parse(time.RFC3339Nano, str)
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, errors.New("expected RFC 3339 string or epoch milliseconds")
	}
	return time.UnixMilli(ms).UTC(), nil
}
