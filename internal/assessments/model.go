package assessments

import "governance-backend/internal/assessment"

// Record is a persisted assessment session.
type Record struct {
	ID       string
	Snapshot assessment.Snapshot
}

type sessionResponse struct {
	ID    string              `json:"id"`
	State assessment.Snapshot `json:"state"`
}

func toResponse(rec Record) sessionResponse {
	return sessionResponse{ID: rec.ID, State: rec.Snapshot}
}
