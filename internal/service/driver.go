package service

import (
	"context"
	"errors"
	"log"

	"tow/internal/domain"
	"tow/internal/redis"
	"tow/internal/repository"
	"tow/internal/ws"
)

// DriverService handles driver presence and availability. The presence
// tracker is the authoritative process-local state; the redis geo index is
// a best-effort mirror serving the REST full-state pull.
type DriverService struct {
	driverRepo    repository.DriverRepository
	locationStore redis.LocationStoreInterface
	presence      PresenceTracker
	broadcaster   Broadcaster
}

// NewDriverService creates a new DriverService. locationStore, presence and
// broadcaster may each be nil.
func NewDriverService(
	driverRepo repository.DriverRepository,
	locationStore redis.LocationStoreInterface,
	presence PresenceTracker,
	broadcaster Broadcaster,
) *DriverService {
	return &DriverService{
		driverRepo:    driverRepo,
		locationStore: locationStore,
		presence:      presence,
		broadcaster:   broadcaster,
	}
}

// UpdateLocation records a driver's position and re-broadcasts it to the
// admin room and the shared drivers room.
func (s *DriverService) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if !isValidLatitude(lat) || !isValidLongitude(lng) {
		return ErrInvalidLocation
	}

	loc := domain.DriverLocation{DriverID: driverID, Lat: lat, Lng: lng}

	if s.presence != nil {
		s.presence.SetPresence(loc)
	}

	if s.locationStore != nil {
		if err := s.locationStore.UpdateLocation(ctx, driverID, lat, lng); err != nil {
			log.Printf("driver %s: location mirror write failed: %v", driverID, err)
		}
	}

	if s.broadcaster != nil {
		event := LocationEvent{DriverID: driverID, Location: &LatLng{Lat: lat, Lng: lng}}
		s.broadcaster.ToAdmin(ws.EventDriverLocationUpdated, event)
		s.broadcaster.ToDrivers(ws.EventDriverLocationUpdated, event)
	}

	return nil
}

// GoOffline drops a driver's presence and tells all parties with a null
// location for that driver.
func (s *DriverService) GoOffline(ctx context.Context, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	if s.presence != nil {
		s.presence.ClearPresence(driverID)
	}

	if s.locationStore != nil {
		if err := s.locationStore.RemoveLocation(ctx, driverID); err != nil {
			log.Printf("driver %s: location mirror removal failed: %v", driverID, err)
		}
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusOffline); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if s.broadcaster != nil {
		event := LocationEvent{DriverID: driverID, Location: nil}
		s.broadcaster.ToAdmin(ws.EventDriverLocationUpdated, event)
		s.broadcaster.ToDrivers(ws.EventDriverLocationUpdated, event)
		s.broadcaster.ToAdmin(ws.EventDriverStatusUpdated, StatusEvent{DriverID: driverID, Status: string(domain.DriverStatusOffline)})
	}

	return nil
}

// SetStatus updates a driver's availability and notifies the admin room.
func (s *DriverService) SetStatus(ctx context.Context, driverID string, status domain.DriverStatus) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, status); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.ToAdmin(ws.EventDriverStatusUpdated, StatusEvent{DriverID: driverID, Status: string(status)})
	}

	return nil
}

// Locations returns the last known position of every tracked driver. The
// redis mirror is preferred because it survives process restarts; the
// in-process map covers running without redis.
func (s *DriverService) Locations(ctx context.Context) ([]domain.DriverLocation, error) {
	if s.locationStore != nil {
		locations, err := s.locationStore.ListLocations(ctx)
		if err == nil {
			return locations, nil
		}
		log.Printf("location mirror read failed, serving in-process presence: %v", err)
	}

	if s.presence != nil {
		return s.presence.Presence(), nil
	}

	return nil, nil
}

// Nearby returns drivers within radiusKm of a point, closest first. Only
// the redis geo index can answer this; without it the result is empty.
func (s *DriverService) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]domain.DriverLocation, error) {
	if !isValidLatitude(lat) || !isValidLongitude(lng) {
		return nil, ErrInvalidLocation
	}
	if radiusKm <= 0 {
		return nil, ErrInvalidDistance
	}

	if s.locationStore == nil {
		return nil, nil
	}

	return s.locationStore.FindNearbyDrivers(ctx, lat, lng, radiusKm)
}

// HandleLocationUpdate implements ws.DriverEventHandler.
func (s *DriverService) HandleLocationUpdate(ctx context.Context, driverID string, lat, lng float64) {
	if err := s.UpdateLocation(ctx, driverID, lat, lng); err != nil {
		log.Printf("driver %s: socket location update rejected: %v", driverID, err)
	}
}

// HandleStatusUpdate implements ws.DriverEventHandler.
func (s *DriverService) HandleStatusUpdate(ctx context.Context, driverID, status string) {
	var parsed domain.DriverStatus
	switch domain.DriverStatus(status) {
	case domain.DriverStatusOnline:
		parsed = domain.DriverStatusOnline
	case domain.DriverStatusOffline:
		parsed = domain.DriverStatusOffline
	default:
		log.Printf("driver %s: unknown status %q ignored", driverID, status)
		return
	}

	if parsed == domain.DriverStatusOffline {
		if err := s.GoOffline(ctx, driverID); err != nil {
			log.Printf("driver %s: go offline failed: %v", driverID, err)
		}
		return
	}

	if err := s.SetStatus(ctx, driverID, parsed); err != nil {
		log.Printf("driver %s: status update failed: %v", driverID, err)
	}
}

// HandleDisconnect implements ws.DriverEventHandler.
func (s *DriverService) HandleDisconnect(ctx context.Context, driverID string) {
	if err := s.GoOffline(ctx, driverID); err != nil {
		log.Printf("driver %s: offline on disconnect failed: %v", driverID, err)
	}
}
