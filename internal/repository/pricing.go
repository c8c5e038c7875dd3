package repository

import (
	"context"

	"tow/internal/domain"
)

// PricingRuleRepository defines the persistence operations for pricing rules.
type PricingRuleRepository interface {
	// Create persists a new rule.
	Create(ctx context.Context, rule *domain.PricingRule) error

	// GetActiveByVehicleType retrieves the active rule for a vehicle type.
	GetActiveByVehicleType(ctx context.Context, vehicleType string) (*domain.PricingRule, error)

	// GetAll retrieves all rules ordered by display order.
	GetAll(ctx context.Context) ([]*domain.PricingRule, error)

	// Update updates an existing rule.
	Update(ctx context.Context, rule *domain.PricingRule) error
}
