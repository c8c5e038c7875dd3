package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"tow/internal/domain"
	"tow/internal/repository"
)

const tripColumns = `
	id, driver_id, customer_name, customer_phone,
	pickup_address, pickup_lat, pickup_lng,
	dropoff_address, dropoff_lat, dropoff_lng,
	status, price, service_type, vehicle_model,
	distance_km, distance_traveled_km, additional_services,
	created_at, started_at, ended_at, cancelled_at, cancel_reason
`

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	extras, err := json.Marshal(trip.AdditionalServices)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query,
		trip.ID,
		nullString(trip.DriverID),
		trip.CustomerName,
		trip.CustomerPhone,
		trip.PickupAddress,
		trip.PickupLat,
		trip.PickupLng,
		trip.DropoffAddress,
		trip.DropoffLat,
		trip.DropoffLng,
		trip.Status,
		trip.Price,
		trip.ServiceType,
		trip.VehicleModel,
		trip.DistanceKm,
		trip.DistanceTraveledKm,
		extras,
		trip.CreatedAt,
		nullTime(trip.StartedAt),
		nullTime(trip.EndedAt),
		nullTime(trip.CancelledAt),
		trip.CancelReason,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// GetAll retrieves recent trips, newest first.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrips(rows)
}

// AssignDriver sets the driver reference without touching status.
func (r *TripRepository) AssignDriver(ctx context.Context, id, driverID string) error {
	query := `UPDATE trips SET driver_id = $1 WHERE id = $2`

	return r.execExpectingRow(ctx, query, driverID, id)
}

// AcceptPending atomically moves PENDING -> ACCEPTED and sets the driver.
// The status predicate in the UPDATE is the single winner-selection
// mechanism for concurrent accepts.
func (r *TripRepository) AcceptPending(ctx context.Context, id, driverID string) error {
	query := `
		UPDATE trips SET status = $1, driver_id = $2
		WHERE id = $3 AND status = $4
	`

	return r.execConditional(ctx, id, query,
		domain.TripStatusAccepted, driverID, id, domain.TripStatusPending)
}

// StartAccepted atomically moves ACCEPTED -> IN_PROGRESS.
func (r *TripRepository) StartAccepted(ctx context.Context, id string, startedAt time.Time) error {
	query := `
		UPDATE trips SET status = $1, started_at = $2
		WHERE id = $3 AND status = $4
	`

	return r.execConditional(ctx, id, query,
		domain.TripStatusInProgress, startedAt, id, domain.TripStatusAccepted)
}

// CompleteInProgress atomically moves IN_PROGRESS -> COMPLETED with the
// settled price and actual distance. A second completion attempt finds no
// row in IN_PROGRESS and fails, so commission can never apply twice.
func (r *TripRepository) CompleteInProgress(ctx context.Context, id string, price int64, distanceKm float64, endedAt time.Time) error {
	query := `
		UPDATE trips SET status = $1, price = $2, distance_traveled_km = $3, ended_at = $4
		WHERE id = $5 AND status = $6
	`

	return r.execConditional(ctx, id, query,
		domain.TripStatusCompleted, price, distanceKm, endedAt, id, domain.TripStatusInProgress)
}

// CancelIfCancellable atomically moves PENDING or ACCEPTED -> CANCELLED.
func (r *TripRepository) CancelIfCancellable(ctx context.Context, id, reason string, cancelledAt time.Time) error {
	query := `
		UPDATE trips SET status = $1, cancel_reason = $2, cancelled_at = $3
		WHERE id = $4 AND status IN ($5, $6)
	`

	return r.execConditional(ctx, id, query,
		domain.TripStatusCancelled, reason, cancelledAt, id,
		domain.TripStatusPending, domain.TripStatusAccepted)
}

// Delete removes the trip record entirely.
func (r *TripRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM trips WHERE id = $1`

	return r.execExpectingRow(ctx, query, id)
}

// ListCompletedBetween retrieves completed trips whose end time falls in
// [from, to). Zero bounds are open-ended.
func (r *TripRepository) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + ` FROM trips
		WHERE status = $1
		  AND ($2::timestamptz IS NULL OR ended_at >= $2)
		  AND ($3::timestamptz IS NULL OR ended_at < $3)
		ORDER BY ended_at
	`

	rows, err := r.q.QueryContext(ctx, query, domain.TripStatusCompleted, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrips(rows)
}

// execExpectingRow runs an unconditional statement that must match a row.
func (r *TripRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// execConditional runs a guarded status update. Zero rows means either the
// trip is gone (ErrNotFound) or the guard lost a race (ErrStatusConflict);
// a follow-up existence check tells the two apart.
func (r *TripRepository) execConditional(ctx context.Context, id, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}

	if !exists {
		return repository.ErrNotFound
	}

	return repository.ErrStatusConflict
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var driverID sql.NullString
	var extras []byte
	var startedAt, endedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&trip.ID,
		&driverID,
		&trip.CustomerName,
		&trip.CustomerPhone,
		&trip.PickupAddress,
		&trip.PickupLat,
		&trip.PickupLng,
		&trip.DropoffAddress,
		&trip.DropoffLat,
		&trip.DropoffLng,
		&trip.Status,
		&trip.Price,
		&trip.ServiceType,
		&trip.VehicleModel,
		&trip.DistanceKm,
		&trip.DistanceTraveledKm,
		&extras,
		&trip.CreatedAt,
		&startedAt,
		&endedAt,
		&cancelledAt,
		&trip.CancelReason,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		trip.DriverID = driverID.String
	}
	if startedAt.Valid {
		trip.StartedAt = startedAt.Time
	}
	if endedAt.Valid {
		trip.EndedAt = endedAt.Time
	}
	if cancelledAt.Valid {
		trip.CancelledAt = cancelledAt.Time
	}

	if len(extras) > 0 {
		if err := json.Unmarshal(extras, &trip.AdditionalServices); err != nil {
			return nil, err
		}
	}

	return &trip, nil
}

func collectTrips(rows *sql.Rows) ([]*domain.Trip, error) {
	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
