package tests

import (
	"context"
	"errors"
	"testing"

	"tow/internal/domain"
	"tow/internal/repository/memory"
	"tow/internal/service"
	"tow/internal/ws"
)

// ──────────────────────────────────────────────
// 2. TRIP LIFECYCLE
// ──────────────────────────────────────────────

// engine bundles a fully wired in-memory stack for lifecycle tests.
type engine struct {
	trips       *memory.TripRepository
	drivers     *memory.DriverRepository
	wallets     *memory.WalletRepository
	rules       *memory.PricingRuleRepository
	broadcaster *RecordingBroadcaster

	pricingService *service.PricingService
	walletService  *service.WalletService
	tripService    *service.TripService
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	e := &engine{
		trips:       memory.NewTripRepository(),
		drivers:     memory.NewDriverRepository(),
		wallets:     memory.NewWalletRepository(),
		rules:       memory.NewPricingRuleRepository(),
		broadcaster: NewRecordingBroadcaster(),
	}
	e.pricingService = service.NewPricingService(e.rules, nil)
	e.walletService = service.NewWalletService(e.wallets, e.broadcaster)
	e.tripService = service.NewTripService(e.trips, e.drivers, e.pricingService, e.walletService, e.broadcaster)
	return e
}

func (e *engine) addDriver(t *testing.T, id string, balance int64) {
	t.Helper()

	err := e.drivers.Create(context.Background(), &domain.Driver{
		ID:          id,
		Name:        "Driver " + id,
		Phone:       "070" + id,
		VehicleType: "flatbed",
		Status:      domain.DriverStatusOnline,
	})
	if err != nil {
		t.Fatalf("creating driver: %v", err)
	}

	if balance > 0 {
		if _, err := e.walletService.Recharge(context.Background(), id, balance, "test"); err != nil {
			t.Fatalf("funding driver: %v", err)
		}
	}
}

func towingRequest() service.CreateTripRequest {
	return service.CreateTripRequest{
		CustomerName:   "Amina",
		CustomerPhone:  "0700000000",
		PickupAddress:  "Bole Road",
		PickupLat:      9.0108,
		PickupLng:      38.7613,
		DropoffAddress: "Old Airport",
		DropoffLat:     8.9936,
		DropoffLng:     38.7223,
		ServiceType:    domain.ServiceTypeTowing,
		VehicleModel:   "unknown-model",
		DistanceKm:     10,
	}
}

func TestTripCreate_StartsPendingWithFallbackEstimate(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	trip, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusPending {
		t.Errorf("status = %s, want PENDING", trip.Status)
	}
	// 80000 + 6*10000 from the towing fallback schedule.
	if trip.Price != 140_000 {
		t.Errorf("price = %d, want 140000", trip.Price)
	}
	if trip.ID == "" {
		t.Error("expected a generated trip ID")
	}

	if e.broadcaster.CountEvent(ws.EventNewJobRequest) != 1 {
		t.Error("expected exactly one newJobRequest broadcast")
	}
}

func TestTripCreate_NoRuleNonTowing_KeepsCallerPrice(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	req := towingRequest()
	req.ServiceType = domain.ServiceTypeDelivery
	req.Price = 55_000

	trip, err := e.tripService.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.Price != 55_000 {
		t.Errorf("price = %d, want caller-supplied 55000", trip.Price)
	}
}

func TestTripCreate_InvalidCoordinates_Rejected(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*service.CreateTripRequest)
		wantErr error
	}{
		{
			name:    "pickup latitude out of range",
			mutate:  func(r *service.CreateTripRequest) { r.PickupLat = 91 },
			wantErr: service.ErrInvalidPickupLocation,
		},
		{
			name:    "pickup longitude out of range",
			mutate:  func(r *service.CreateTripRequest) { r.PickupLng = -181 },
			wantErr: service.ErrInvalidPickupLocation,
		},
		{
			name:    "dropoff latitude out of range",
			mutate:  func(r *service.CreateTripRequest) { r.DropoffLat = -91 },
			wantErr: service.ErrInvalidDropoffLocation,
		},
		{
			name:    "negative distance",
			mutate:  func(r *service.CreateTripRequest) { r.DistanceKm = -1 },
			wantErr: service.ErrInvalidDistance,
		},
		{
			name:    "negative price",
			mutate:  func(r *service.CreateTripRequest) { r.Price = -1 },
			wantErr: service.ErrInvalidPrice,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := newEngine(t)
			req := towingRequest()
			tc.mutate(&req)

			if _, err := e.tripService.Create(context.Background(), req); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestTripAccept_ZeroBalance_Rejected(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.addDriver(t, "d1", 0)

	trip, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = e.tripService.Accept(context.Background(), trip.ID, "d1")
	if !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// The guard must not have touched trip state: someone else can still accept.
	stored, err := e.trips.GetByID(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != domain.TripStatusPending {
		t.Errorf("status = %s, want PENDING after rejected accept", stored.Status)
	}
	if stored.DriverID != "" {
		t.Errorf("driver = %q, want unassigned", stored.DriverID)
	}
}

func TestTripAccept_SecondDriver_GetsTripTaken(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.addDriver(t, "d1", 100_000)
	e.addDriver(t, "d2", 100_000)

	trip, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := e.tripService.Accept(context.Background(), trip.ID, "d1"); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	if _, err := e.tripService.Accept(context.Background(), trip.ID, "d2"); !errors.Is(err, service.ErrTripTaken) {
		t.Fatalf("expected ErrTripTaken, got %v", err)
	}

	stored, _ := e.trips.GetByID(context.Background(), trip.ID)
	if stored.DriverID != "d1" {
		t.Errorf("winner = %q, want d1", stored.DriverID)
	}
	if e.broadcaster.CountEvent(ws.EventJobTaken) != 1 {
		t.Error("expected exactly one jobTaken broadcast")
	}
}

func TestTripStart_BeforeAccept_Fails(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	trip, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := e.tripService.Start(context.Background(), trip.ID); !errors.Is(err, service.ErrTripNotAccepted) {
		t.Fatalf("expected ErrTripNotAccepted, got %v", err)
	}
}

func TestTripComplete_SettlesAndDebitsCommission(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.addDriver(t, "d1", 100_000)

	trip, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := e.tripService.Accept(context.Background(), trip.ID, "d1"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := e.tripService.Start(context.Background(), trip.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Actual distance 25 km re-prices through the fallback schedule.
	result, err := e.tripService.Complete(context.Background(), service.CompleteTripRequest{
		TripID:     trip.ID,
		DistanceKm: 25,
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	if result.Trip.Status != domain.TripStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", result.Trip.Status)
	}
	if result.Trip.Price != 265_000 {
		t.Errorf("settled price = %d, want 265000", result.Trip.Price)
	}
	if result.Commission != 26_500 {
		t.Errorf("commission = %d, want 26500", result.Commission)
	}
	if result.DriverNet != 238_500 {
		t.Errorf("driver net = %d, want 238500", result.DriverNet)
	}
	if result.Wallet == nil || result.Wallet.Balance != 100_000-26_500 {
		t.Errorf("wallet snapshot = %+v, want balance 73500", result.Wallet)
	}
	if result.Trip.EndedAt.IsZero() {
		t.Error("expected ended timestamp")
	}
}

func TestTripComplete_WithoutDistance_KeepsEstimate(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.addDriver(t, "d1", 100_000)

	trip, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := e.tripService.Accept(context.Background(), trip.ID, "d1"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := e.tripService.Start(context.Background(), trip.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	result, err := e.tripService.Complete(context.Background(), service.CompleteTripRequest{TripID: trip.ID})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if result.Trip.Price != 140_000 {
		t.Errorf("price = %d, want original estimate 140000", result.Trip.Price)
	}
	if result.Commission != 14_000 {
		t.Errorf("commission = %d, want 14000", result.Commission)
	}
}

func TestTripComplete_Twice_SecondFailsWithSingleDebit(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.addDriver(t, "d1", 200_000)

	trip, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := e.tripService.Accept(context.Background(), trip.ID, "d1"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := e.tripService.Start(context.Background(), trip.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	req := service.CompleteTripRequest{TripID: trip.ID, DistanceKm: 25}
	if _, err := e.tripService.Complete(context.Background(), req); err != nil {
		t.Fatalf("first complete failed: %v", err)
	}

	if _, err := e.tripService.Complete(context.Background(), req); !errors.Is(err, service.ErrTripNotInProgress) {
		t.Fatalf("expected ErrTripNotInProgress, got %v", err)
	}

	wallet, err := e.walletService.Summary(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.Balance != 200_000-26_500 {
		t.Errorf("balance = %d, want single commission debit (173500)", wallet.Balance)
	}

	debits := 0
	for _, tx := range wallet.Transactions {
		if tx.Type == domain.TransactionDebit {
			debits++
		}
	}
	if debits != 1 {
		t.Errorf("ledger holds %d debits, want 1", debits)
	}
}

func TestTripCancel_PendingAndAcceptedOnly(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.addDriver(t, "d1", 100_000)

	// Pending trip cancels.
	pending, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancelled, err := e.tripService.Cancel(context.Background(), pending.ID, "customer changed mind")
	if err != nil {
		t.Fatalf("cancel pending failed: %v", err)
	}
	if cancelled.Status != domain.TripStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}
	if cancelled.CancelReason != "customer changed mind" {
		t.Errorf("reason = %q, want the recorded one", cancelled.CancelReason)
	}

	// The record survives cancellation.
	if _, err := e.trips.GetByID(context.Background(), pending.ID); err != nil {
		t.Errorf("cancelled trip should still be readable: %v", err)
	}

	// In-progress trip does not cancel.
	running, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := e.tripService.Accept(context.Background(), running.ID, "d1"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := e.tripService.Start(context.Background(), running.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := e.tripService.Cancel(context.Background(), running.ID, "too late"); !errors.Is(err, service.ErrTripNotCancellable) {
		t.Fatalf("expected ErrTripNotCancellable, got %v", err)
	}

	// A cancelled trip cannot be cancelled again either.
	if _, err := e.tripService.Cancel(context.Background(), pending.ID, "again"); !errors.Is(err, service.ErrTripNotCancellable) {
		t.Fatalf("expected ErrTripNotCancellable on repeat cancel, got %v", err)
	}
}

func TestTripDelete_RemovesRecord(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	trip, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := e.tripService.Delete(context.Background(), trip.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := e.tripService.Get(context.Background(), trip.ID); err == nil {
		t.Fatal("expected lookup of deleted trip to fail")
	}
	if e.broadcaster.CountEvent(ws.EventTripDeleted) != 1 {
		t.Error("expected a tripDeleted broadcast")
	}
}

func TestTripAssign_DoesNotChangeStatus(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.addDriver(t, "d1", 100_000)

	trip, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assigned, err := e.tripService.Assign(context.Background(), trip.ID, "d1")
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if assigned.Status != domain.TripStatusPending {
		t.Errorf("status = %s, want still PENDING", assigned.Status)
	}
	if assigned.DriverID != "d1" {
		t.Errorf("driver = %q, want d1", assigned.DriverID)
	}

	rec := e.broadcaster.LastEvent(ws.EventRequestAssigned)
	if rec == nil {
		t.Fatal("expected a requestAssigned broadcast")
	}
	if rec.Room != "driver:d1" {
		t.Errorf("requestAssigned went to %q, want the driver's private room", rec.Room)
	}
}

func TestTripAssign_UnknownDriver_Fails(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	trip, err := e.tripService.Create(context.Background(), towingRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := e.tripService.Assign(context.Background(), trip.ID, "ghost"); err == nil {
		t.Fatal("expected assign to unknown driver to fail")
	}
}
