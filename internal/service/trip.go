package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"tow/internal/domain"
	"tow/internal/repository"
	"tow/internal/ws"
)

// commissionPercent is the fixed platform cut debited from the driver's
// wallet when a trip completes.
const commissionPercent = 10

// TripService owns the trip lifecycle state machine: creation, the
// single-winner accept race, start, settlement on completion, and
// cancellation. All transitions go through the repository's conditional
// updates; this service never decides a transition from a value it read
// earlier.
type TripService struct {
	tripRepo      repository.TripRepository
	driverRepo    repository.DriverRepository
	pricing       *PricingService
	walletService *WalletService
	broadcaster   Broadcaster
}

// NewTripService creates a new TripService. broadcaster may be nil.
func NewTripService(
	tripRepo repository.TripRepository,
	driverRepo repository.DriverRepository,
	pricing *PricingService,
	walletService *WalletService,
	broadcaster Broadcaster,
) *TripService {
	return &TripService{
		tripRepo:      tripRepo,
		driverRepo:    driverRepo,
		pricing:       pricing,
		walletService: walletService,
		broadcaster:   broadcaster,
	}
}

// CreateTripRequest contains the parameters for creating a trip.
type CreateTripRequest struct {
	CustomerName       string
	CustomerPhone      string
	PickupAddress      string
	PickupLat          float64
	PickupLng          float64
	DropoffAddress     string
	DropoffLat         float64
	DropoffLng         float64
	ServiceType        domain.ServiceType
	VehicleModel       string
	DistanceKm         float64
	Price              int64 // used only when no rule or fallback applies
	AdditionalServices []domain.AdditionalService
}

// Create creates a trip in PENDING state with a price estimate and fans the
// new job out to all drivers. Eligibility filtering is the clients'
// concern; the broadcast is deliberately untargeted.
//
// When the vehicle model matches no rule and the service is not towing, the
// engine computes no price and the caller-supplied one is kept as is.
func (s *TripService) Create(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	price := req.Price
	estimated, ok, err := s.pricing.Estimate(ctx, req.ServiceType, req.VehicleModel, req.DistanceKm)
	if err != nil {
		return nil, err
	}
	if ok {
		price = estimated
	}

	trip := &domain.Trip{
		ID:                 uuid.New().String(),
		CustomerName:       req.CustomerName,
		CustomerPhone:      req.CustomerPhone,
		PickupAddress:      req.PickupAddress,
		PickupLat:          req.PickupLat,
		PickupLng:          req.PickupLng,
		DropoffAddress:     req.DropoffAddress,
		DropoffLat:         req.DropoffLat,
		DropoffLng:         req.DropoffLng,
		Status:             domain.TripStatusPending,
		Price:              price,
		ServiceType:        req.ServiceType,
		VehicleModel:       req.VehicleModel,
		DistanceKm:         req.DistanceKm,
		AdditionalServices: req.AdditionalServices,
		CreatedAt:          time.Now(),
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.ToDrivers(ws.EventNewJobRequest, NewTripEvent(trip))
		s.broadcaster.ToAdmin(ws.EventTripUpdated, NewTripEvent(trip))
	}

	return trip, nil
}

// Assign sets the driver reference without changing status. A pre-assigned
// driver still has to accept before the trip leaves PENDING.
func (s *TripService) Assign(ctx context.Context, tripID, driverID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	if err := s.tripRepo.AssignDriver(ctx, tripID, driverID); err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.ToDriver(driverID, ws.EventRequestAssigned, NewTripEvent(trip))
	}

	return trip, nil
}

// Accept is the single-winner assignment race. The wallet guard runs first
// and never touches trip state; the transition itself is one conditional
// update, so out of any number of concurrent accepts exactly one sees PENDING.
// Losers get ErrTripTaken.
func (s *TripService) Accept(ctx context.Context, tripID, driverID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	wallet, err := s.walletService.Summary(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if wallet.Balance <= 0 {
		return nil, ErrInsufficientFunds
	}

	if err := s.tripRepo.AcceptPending(ctx, tripID, driverID); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrTripTaken
		}
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.ToAll(ws.EventDriverAccepted, NewTripEvent(trip))
		// Competing clients retract the now-stale offer from their screens.
		s.broadcaster.ToDrivers(ws.EventJobTaken, JobTakenEvent{TripID: tripID, DriverID: driverID})
	}

	return trip, nil
}

// Start moves an accepted trip to IN_PROGRESS and records the start time.
// Restricting start to the assigned driver is an authorization-layer
// policy, not enforced here.
func (s *TripService) Start(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if err := s.tripRepo.StartAccepted(ctx, tripID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrTripNotAccepted
		}
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.ToAll(ws.EventTripStarted, NewTripEvent(trip))
	}

	return trip, nil
}

// CompleteTripRequest contains the parameters for completing a trip.
type CompleteTripRequest struct {
	TripID      string
	DistanceKm  float64 // actual distance; 0 keeps the original estimate
	DurationMin float64 // informational only, not priced
}

// CompleteTripResponse is the settlement result of a completed trip.
type CompleteTripResponse struct {
	Trip       *domain.Trip
	Commission int64
	DriverNet  int64
	Wallet     *domain.Wallet // updated snapshot, nil when no driver assigned
}

// Complete settles and finishes a trip. With an actual distance supplied
// the price is recomputed through the settlement schedule (rounded up to
// the nearest 100); without one the original estimate stands. The
// transition is conditional on IN_PROGRESS, which also makes the commission
// debit single-shot: a second complete finds nothing to update and returns
// ErrTripNotInProgress before any money moves.
func (s *TripService) Complete(ctx context.Context, req CompleteTripRequest) (*CompleteTripResponse, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.DistanceKm < 0 {
		return nil, ErrInvalidDistance
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	price := trip.Price
	distance := trip.DistanceTraveledKm
	if req.DistanceKm > 0 {
		distance = req.DistanceKm

		settled, ok, err := s.pricing.Settle(ctx, trip.ServiceType, s.settlementVehicleType(ctx, trip), req.DistanceKm)
		if err != nil {
			return nil, err
		}
		if ok {
			price = settled
		}
	}

	endedAt := time.Now()
	if err := s.tripRepo.CompleteInProgress(ctx, req.TripID, price, distance, endedAt); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrTripNotInProgress
		}
		return nil, err
	}

	trip.Status = domain.TripStatusCompleted
	trip.Price = price
	trip.DistanceTraveledKm = distance
	trip.EndedAt = endedAt

	resp := &CompleteTripResponse{Trip: trip, DriverNet: price}

	// Money moves here and only here. A failed debit does not roll the
	// completed trip back; it is surfaced to the reconciliation job through
	// the log.
	if trip.DriverID != "" {
		commission := price * commissionPercent / 100
		wallet, err := s.walletService.Debit(ctx, trip.DriverID, commission,
			fmt.Sprintf("Commission for trip %s", trip.ID))
		if err != nil {
			log.Printf("trip %s completed but commission debit failed for driver %s: %v", trip.ID, trip.DriverID, err)
		} else {
			resp.Commission = commission
			resp.DriverNet = price - commission
			resp.Wallet = wallet
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.ToAll(ws.EventTripCompleted, NewTripEvent(trip))
	}

	return resp, nil
}

// Cancel moves a PENDING or ACCEPTED trip to CANCELLED, retaining the
// record. No wallet or pricing side effects.
func (s *TripService) Cancel(ctx context.Context, tripID, reason string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if err := s.tripRepo.CancelIfCancellable(ctx, tripID, reason, time.Now()); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrTripNotCancellable
		}
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.ToAll(ws.EventJobCancelled, NewTripEvent(trip))
	}

	return trip, nil
}

// Delete removes the trip record entirely (admin housekeeping).
func (s *TripService) Delete(ctx context.Context, tripID string) error {
	if tripID == "" {
		return ErrInvalidTripID
	}

	if err := s.tripRepo.Delete(ctx, tripID); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.ToAll(ws.EventTripDeleted, tripRef{TripID: tripID})
	}

	return nil
}

// Get retrieves a trip by ID.
func (s *TripService) Get(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	return s.tripRepo.GetByID(ctx, tripID)
}

// GetAll retrieves recent trips.
func (s *TripService) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripRepo.GetAll(ctx)
}

// settlementVehicleType resolves which vehicle type prices the settlement:
// the trip's own model, or the assigned driver's vehicle type when the trip
// has none.
func (s *TripService) settlementVehicleType(ctx context.Context, trip *domain.Trip) string {
	if trip.VehicleModel != "" {
		return trip.VehicleModel
	}

	if trip.DriverID == "" {
		return ""
	}

	driver, err := s.driverRepo.GetByID(ctx, trip.DriverID)
	if err != nil {
		return ""
	}

	return driver.VehicleType
}

func (s *TripService) validateCreateRequest(req CreateTripRequest) error {
	if !isValidLatitude(req.PickupLat) || !isValidLongitude(req.PickupLng) {
		return ErrInvalidPickupLocation
	}
	if !isValidLatitude(req.DropoffLat) || !isValidLongitude(req.DropoffLng) {
		return ErrInvalidDropoffLocation
	}
	if req.DistanceKm < 0 {
		return ErrInvalidDistance
	}
	if req.Price < 0 {
		return ErrInvalidPrice
	}

	return nil
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
