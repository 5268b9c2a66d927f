package repository

import (
	"context"

	"healthtrack/treatment-tracker/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrInvalidID    = RepositoryError("invalid id")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ScheduleRepository is the remote store the adherence tracker reads schedule
// documents from and writes completion flags to. Every query is scoped to the
// given owner by the implementation; callers never filter results themselves.
type ScheduleRepository interface {
	// FetchSchedule returns the owner's schedule documents ordered by
	// ascending dayNumber. No entries is an empty slice, not an error.
	FetchSchedule(ctx context.Context, ownerID string) ([]domain.RawRecord, error)
	// UpdateCompletion sets only the completed flag of one of the owner's entries.
	UpdateCompletion(ctx context.Context, ownerID, entryID string, completed bool) error
}

// HistoryRepository serves the read-only listings, newest first.
type HistoryRepository interface {
	FetchTreatmentPlans(ctx context.Context, ownerID string) ([]domain.RawRecord, error)
	FetchAssessments(ctx context.Context, ownerID string) ([]domain.RawRecord, error)
}
