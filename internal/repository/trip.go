package repository

import (
	"context"
	"time"

	"tow/internal/domain"
)

// TripRepository defines the persistence operations for trips.
//
// The conditional-update methods (AcceptPending, StartAccepted,
// CompleteInProgress, CancelIfCancellable) must be implemented as a single
// atomic compare-and-set against the store: they either observe the guarded
// status and apply the whole update, or fail with ErrStatusConflict. A
// read-then-write pair is not an acceptable implementation; it reopens the
// two-winners race on accept and the double-charge race on complete.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetAll retrieves recent trips, newest first.
	GetAll(ctx context.Context) ([]*domain.Trip, error)

	// AssignDriver sets the driver reference without touching status.
	AssignDriver(ctx context.Context, id, driverID string) error

	// AcceptPending atomically moves PENDING -> ACCEPTED and sets the
	// driver. Returns ErrStatusConflict if the trip is no longer pending,
	// ErrNotFound if it does not exist.
	AcceptPending(ctx context.Context, id, driverID string) error

	// StartAccepted atomically moves ACCEPTED -> IN_PROGRESS and records
	// the start time.
	StartAccepted(ctx context.Context, id string, startedAt time.Time) error

	// CompleteInProgress atomically moves IN_PROGRESS -> COMPLETED,
	// persisting the settled price, actual distance and end time.
	CompleteInProgress(ctx context.Context, id string, price int64, distanceKm float64, endedAt time.Time) error

	// CancelIfCancellable atomically moves PENDING or ACCEPTED -> CANCELLED,
	// retaining the record.
	CancelIfCancellable(ctx context.Context, id, reason string, cancelledAt time.Time) error

	// Delete removes the trip record entirely.
	Delete(ctx context.Context, id string) error

	// ListCompletedBetween retrieves completed trips whose end time falls
	// in [from, to). Zero bounds are open-ended.
	ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*domain.Trip, error)
}
