package redis

import (
	"context"

	"tow/internal/domain"
)

// LocationStoreInterface defines the interface for the driver presence mirror.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error
	RemoveLocation(ctx context.Context, driverID string) error
	ListLocations(ctx context.Context) ([]domain.DriverLocation, error)
	FindNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64) ([]domain.DriverLocation, error)
}

// RuleCacheInterface defines the interface for the pricing rule cache.
type RuleCacheInterface interface {
	Get(ctx context.Context, vehicleType string) (*domain.PricingRule, error)
	Set(ctx context.Context, rule *domain.PricingRule) error
	Invalidate(ctx context.Context, vehicleType string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ RuleCacheInterface     = (*RuleCache)(nil)
)
