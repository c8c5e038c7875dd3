// Package memory provides mutex-guarded in-memory implementations of the
// repository interfaces. It is the STORE_BACKEND=memory backend and the
// storage double used by the test suite. The conditional-update methods
// hold the store lock across check and write, giving the same atomicity
// the PostgreSQL backend gets from guarded UPDATE statements.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"tow/internal/domain"
	"tow/internal/repository"
)

// TripRepository is an in-memory implementation of repository.TripRepository.
type TripRepository struct {
	mu    sync.Mutex
	trips map[string]*domain.Trip
}

// NewTripRepository creates a new in-memory trip repository.
func NewTripRepository() *TripRepository {
	return &TripRepository{trips: make(map[string]*domain.Trip)}
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *trip
	r.trips[trip.ID] = &copied
	return nil
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	copied := *trip
	return &copied, nil
}

// GetAll retrieves recent trips, newest first.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trips := make([]*domain.Trip, 0, len(r.trips))
	for _, trip := range r.trips {
		copied := *trip
		trips = append(trips, &copied)
	}

	sort.Slice(trips, func(i, j int) bool {
		return trips[i].CreatedAt.After(trips[j].CreatedAt)
	})

	return trips, nil
}

// AssignDriver sets the driver reference without touching status.
func (r *TripRepository) AssignDriver(ctx context.Context, id, driverID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[id]
	if !ok {
		return repository.ErrNotFound
	}

	trip.DriverID = driverID
	return nil
}

// AcceptPending atomically moves PENDING -> ACCEPTED and sets the driver.
func (r *TripRepository) AcceptPending(ctx context.Context, id, driverID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[id]
	if !ok {
		return repository.ErrNotFound
	}

	if trip.Status != domain.TripStatusPending {
		return repository.ErrStatusConflict
	}

	trip.Status = domain.TripStatusAccepted
	trip.DriverID = driverID
	return nil
}

// StartAccepted atomically moves ACCEPTED -> IN_PROGRESS.
func (r *TripRepository) StartAccepted(ctx context.Context, id string, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[id]
	if !ok {
		return repository.ErrNotFound
	}

	if trip.Status != domain.TripStatusAccepted {
		return repository.ErrStatusConflict
	}

	trip.Status = domain.TripStatusInProgress
	trip.StartedAt = startedAt
	return nil
}

// CompleteInProgress atomically moves IN_PROGRESS -> COMPLETED with the
// settled price and actual distance.
func (r *TripRepository) CompleteInProgress(ctx context.Context, id string, price int64, distanceKm float64, endedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[id]
	if !ok {
		return repository.ErrNotFound
	}

	if trip.Status != domain.TripStatusInProgress {
		return repository.ErrStatusConflict
	}

	trip.Status = domain.TripStatusCompleted
	trip.Price = price
	trip.DistanceTraveledKm = distanceKm
	trip.EndedAt = endedAt
	return nil
}

// CancelIfCancellable atomically moves PENDING or ACCEPTED -> CANCELLED.
func (r *TripRepository) CancelIfCancellable(ctx context.Context, id, reason string, cancelledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[id]
	if !ok {
		return repository.ErrNotFound
	}

	if trip.Status != domain.TripStatusPending && trip.Status != domain.TripStatusAccepted {
		return repository.ErrStatusConflict
	}

	trip.Status = domain.TripStatusCancelled
	trip.CancelReason = reason
	trip.CancelledAt = cancelledAt
	return nil
}

// Delete removes the trip record entirely.
func (r *TripRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trips[id]; !ok {
		return repository.ErrNotFound
	}

	delete(r.trips, id)
	return nil
}

// ListCompletedBetween retrieves completed trips whose end time falls in
// [from, to). Zero bounds are open-ended.
func (r *TripRepository) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var trips []*domain.Trip
	for _, trip := range r.trips {
		if trip.Status != domain.TripStatusCompleted {
			continue
		}
		if !from.IsZero() && trip.EndedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !trip.EndedAt.Before(to) {
			continue
		}
		copied := *trip
		trips = append(trips, &copied)
	}

	sort.Slice(trips, func(i, j int) bool {
		return trips[i].EndedAt.Before(trips[j].EndedAt)
	})

	return trips, nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
