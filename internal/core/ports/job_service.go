package ports

import (
	"context"

	"github.com/sameboat/jobsheet/internal/core/domain"
)

// JobSheet is the dashboard view: the visible jobs and their counters.
type JobSheet struct {
	Query string       `json:"query,omitempty"`
	Total int          `json:"total"`
	Jobs  []domain.Job `json:"jobs"`
	Stats domain.Stats `json:"stats"`
}

// JobService defines the job-sheet use cases.
type JobService interface {
	Sheet(ctx context.Context, sess Session, query string) domain.Envelope[JobSheet]
	Create(ctx context.Context, sess Session, in JobInput) domain.Envelope[domain.Job]
	Update(ctx context.Context, sess Session, id string, in JobInput) domain.Envelope[domain.Job]
	Delete(ctx context.Context, sess Session, id string) domain.Envelope[struct{}]
	// Stage copies a listed job into the session for the edit page.
	Stage(ctx context.Context, sess Session, id string) error
	// Staged returns the job staged for id.
	Staged(ctx context.Context, sess Session, id string) (*domain.Job, error)
}
