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
// 6. DRIVER PRESENCE
// ──────────────────────────────────────────────

func newDriverService(locationStore *MockLocationStore, presence service.PresenceTracker, broadcaster service.Broadcaster) (*service.DriverService, *memory.DriverRepository) {
	driverRepo := memory.NewDriverRepository()
	return service.NewDriverService(driverRepo, locationStore, presence, broadcaster), driverRepo
}

func TestDriverLocationUpdate_WritesThrough(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	hub := ws.NewHub()
	broadcaster := NewRecordingBroadcaster()
	svc, _ := newDriverService(locationStore, hub, broadcaster)

	if err := svc.UpdateLocation(context.Background(), "d1", 9.0108, 38.7613); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if locationStore.UpdateLocationCallCount != 1 {
		t.Errorf("mirror UpdateLocation called %d times, want 1", locationStore.UpdateLocationCallCount)
	}
	if !locationStore.HasLocation("d1") {
		t.Error("expected the mirror to hold the location")
	}
	if len(hub.Presence()) != 1 {
		t.Error("expected the in-process presence to hold the location")
	}

	rec := broadcaster.LastEvent(ws.EventDriverLocationUpdated)
	if rec == nil {
		t.Fatal("expected a driverLocationUpdated broadcast")
	}
	event, ok := rec.Data.(service.LocationEvent)
	if !ok {
		t.Fatalf("payload is %T, want service.LocationEvent", rec.Data)
	}
	if event.Location == nil || event.Location.Lat != 9.0108 {
		t.Errorf("broadcast location = %+v, want the updated coordinates", event.Location)
	}
}

func TestDriverLocationUpdate_InvalidCoordinates_Rejected(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{name: "latitude too high", lat: 91.0, lng: 38.7, wantErr: true},
		{name: "latitude too low", lat: -91.0, lng: 38.7, wantErr: true},
		{name: "longitude too high", lat: 9.0, lng: 181.0, wantErr: true},
		{name: "longitude too low", lat: 9.0, lng: -181.0, wantErr: true},
		{name: "valid coordinates", lat: 9.0108, lng: 38.7613, wantErr: false},
		{name: "edge case: max latitude", lat: 90.0, lng: 38.7, wantErr: false},
		{name: "edge case: min longitude", lat: 9.0, lng: -180.0, wantErr: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, _ := newDriverService(NewMockLocationStore(), nil, nil)
			err := svc.UpdateLocation(context.Background(), "d1", tc.lat, tc.lng)
			if tc.wantErr && !errors.Is(err, service.ErrInvalidLocation) {
				t.Fatalf("expected ErrInvalidLocation, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDriverLocationUpdate_MissingDriverID_Rejected(t *testing.T) {
	t.Parallel()

	svc, _ := newDriverService(NewMockLocationStore(), nil, nil)

	if err := svc.UpdateLocation(context.Background(), "", 9.0, 38.7); !errors.Is(err, service.ErrInvalidDriverID) {
		t.Fatalf("expected ErrInvalidDriverID, got %v", err)
	}
}

func TestDriverLocationUpdate_MirrorFailure_IsNotFatal(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	locationStore.UpdateLocationError = errors.New("redis down")
	hub := ws.NewHub()
	svc, _ := newDriverService(locationStore, hub, nil)

	if err := svc.UpdateLocation(context.Background(), "d1", 9.0, 38.7); err != nil {
		t.Fatalf("mirror failure must not reject the update: %v", err)
	}

	if len(hub.Presence()) != 1 {
		t.Error("expected the in-process presence to still hold the location")
	}
}

func TestDriverGoOffline_ClearsEverythingAndNullsLocation(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	hub := ws.NewHub()
	broadcaster := NewRecordingBroadcaster()
	svc, driverRepo := newDriverService(locationStore, hub, broadcaster)

	if err := driverRepo.Create(context.Background(), &domain.Driver{ID: "d1", Name: "Ayele", Status: domain.DriverStatusOnline}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.UpdateLocation(context.Background(), "d1", 9.0, 38.7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.GoOffline(context.Background(), "d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if locationStore.HasLocation("d1") {
		t.Error("expected the mirror entry to be removed")
	}
	if len(hub.Presence()) != 0 {
		t.Error("expected the presence entry to be cleared")
	}

	driver, err := driverRepo.GetByID(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.Status != domain.DriverStatusOffline {
		t.Errorf("status = %s, want OFFLINE", driver.Status)
	}

	rec := broadcaster.LastEvent(ws.EventDriverLocationUpdated)
	if rec == nil {
		t.Fatal("expected a final location broadcast")
	}
	event := rec.Data.(service.LocationEvent)
	if event.Location != nil {
		t.Error("expected a null location to signal offline")
	}
}

func TestDriverGoOffline_UnknownDriver_NoError(t *testing.T) {
	t.Parallel()

	svc, _ := newDriverService(NewMockLocationStore(), ws.NewHub(), nil)

	// Sockets can outlive registration records; tearing one down must not fail.
	if err := svc.GoOffline(context.Background(), "ghost"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDriverNearby_ValidatesQuery(t *testing.T) {
	t.Parallel()

	svc, _ := newDriverService(NewMockLocationStore(), nil, nil)

	if _, err := svc.Nearby(context.Background(), 91, 38.7, 5); !errors.Is(err, service.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
	if _, err := svc.Nearby(context.Background(), 9.0, 38.7, 0); !errors.Is(err, service.ErrInvalidDistance) {
		t.Errorf("expected ErrInvalidDistance, got %v", err)
	}
}

func TestDriverLocations_MirrorPreferredPresenceFallback(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	hub := ws.NewHub()
	svc, _ := newDriverService(locationStore, hub, nil)

	if err := svc.UpdateLocation(context.Background(), "d1", 9.0, 38.7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	locations, err := svc.Locations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locations) != 1 {
		t.Fatalf("locations = %d, want 1 from the mirror", len(locations))
	}

	// Mirror failure falls back to the in-process presence map.
	locationStore.ListLocationsError = errors.New("redis down")
	locations, err = svc.Locations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locations) != 1 {
		t.Fatalf("locations = %d, want 1 from presence fallback", len(locations))
	}
}
