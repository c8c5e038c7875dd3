package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"tow/internal/domain"
)

const driverLocationKey = "drivers:locations"

// LocationStore mirrors driver presence into a Redis geo index. The
// websocket hub owns the authoritative in-process presence map; this mirror
// serves the REST full-state pull clients use to re-sync after missed
// broadcasts.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores a driver's location using GEOADD.
func (s *LocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, driverLocationKey, &redis.GeoLocation{
		Name:      driverID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// RemoveLocation removes a driver's location from the geo index.
func (s *LocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	return s.client.ZRem(ctx, driverLocationKey, driverID).Err()
}

// ListLocations returns the last known position of every tracked driver.
func (s *LocationStore) ListLocations(ctx context.Context) ([]domain.DriverLocation, error) {
	ids, err := s.client.ZRange(ctx, driverLocationKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, nil
	}

	positions, err := s.client.GeoPos(ctx, driverLocationKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]domain.DriverLocation, 0, len(ids))
	for i, pos := range positions {
		if pos == nil {
			continue
		}
		locations = append(locations, domain.DriverLocation{
			DriverID: ids[i],
			Lat:      pos.Latitude,
			Lng:      pos.Longitude,
		})
	}

	return locations, nil
}

// FindNearbyDrivers returns drivers within the given radius (in kilometers),
// closest first.
func (s *LocationStore) FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]domain.DriverLocation, error) {
	results, err := s.client.GeoRadius(ctx, driverLocationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]domain.DriverLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, domain.DriverLocation{
			DriverID: r.Name,
			Lat:      r.Latitude,
			Lng:      r.Longitude,
		})
	}

	return locations, nil
}
