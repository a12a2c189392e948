package assessments

import "context"

// Repo persists assessment snapshots. The completed set travels as a plain
// list inside the snapshot.
type Repo interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, id string) (Record, error)
}
