package assessments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"governance-backend/internal/assessment"
)

// PGRepo stores snapshots as JSONB in the assessments table.
type PGRepo struct {
	DB *sql.DB
	// TTL sets expires_at on save; zero keeps rows forever.
	TTL time.Duration
	Now func() time.Time
}

func (r *PGRepo) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// Save upserts the snapshot.
func (r *PGRepo) Save(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	now := r.now()
	var expiresAt any
	if r.TTL > 0 {
		expiresAt = now.Add(r.TTL)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO assessments (id, snapshot, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET snapshot = EXCLUDED.snapshot,
		    updated_at = EXCLUDED.updated_at,
		    expires_at = EXCLUDED.expires_at
	`, rec.ID, payload, now, expiresAt)
	if err != nil {
		return fmt.Errorf("save assessment %s: %w", rec.ID, err)
	}
	return nil
}

// Load returns the snapshot for id unless it is missing or expired.
func (r *PGRepo) Load(ctx context.Context, id string) (Record, error) {
	var payload []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT snapshot
		FROM assessments
		WHERE id = $1 AND (expires_at IS NULL OR expires_at > $2)
	`, id, r.now()).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("load assessment %s: %w", id, err)
	}

	var snap assessment.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Record{}, fmt.Errorf("decode assessment %s: %w", id, err)
	}
	return Record{ID: id, Snapshot: snap}, nil
}
