package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tow/internal/domain"
	"tow/internal/repository"
)

// PricingRuleRepository is a PostgreSQL implementation of repository.PricingRuleRepository.
type PricingRuleRepository struct {
	q Querier
}

// NewPricingRuleRepository creates a new PostgreSQL pricing rule repository.
func NewPricingRuleRepository(db *sql.DB) *PricingRuleRepository {
	return &PricingRuleRepository{q: db}
}

// Create persists a new rule.
func (r *PricingRuleRepository) Create(ctx context.Context, rule *domain.PricingRule) error {
	query := `
		INSERT INTO pricing_rules (id, vehicle_type, base_price, price_per_km, display_order, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		rule.ID,
		rule.VehicleType,
		rule.BasePrice,
		rule.PricePerKm,
		rule.DisplayOrder,
		rule.Active,
	)

	return err
}

// GetActiveByVehicleType retrieves the active rule for a vehicle type.
func (r *PricingRuleRepository) GetActiveByVehicleType(ctx context.Context, vehicleType string) (*domain.PricingRule, error) {
	query := `
		SELECT id, vehicle_type, base_price, price_per_km, display_order, active
		FROM pricing_rules
		WHERE vehicle_type = $1 AND active
	`

	var rule domain.PricingRule
	err := r.q.QueryRowContext(ctx, query, vehicleType).Scan(
		&rule.ID,
		&rule.VehicleType,
		&rule.BasePrice,
		&rule.PricePerKm,
		&rule.DisplayOrder,
		&rule.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &rule, nil
}

// GetAll retrieves all rules ordered by display order.
func (r *PricingRuleRepository) GetAll(ctx context.Context) ([]*domain.PricingRule, error) {
	query := `
		SELECT id, vehicle_type, base_price, price_per_km, display_order, active
		FROM pricing_rules ORDER BY display_order, vehicle_type
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.PricingRule
	for rows.Next() {
		var rule domain.PricingRule
		if err := rows.Scan(
			&rule.ID,
			&rule.VehicleType,
			&rule.BasePrice,
			&rule.PricePerKm,
			&rule.DisplayOrder,
			&rule.Active,
		); err != nil {
			return nil, err
		}
		rules = append(rules, &rule)
	}

	return rules, rows.Err()
}

// Update updates an existing rule.
func (r *PricingRuleRepository) Update(ctx context.Context, rule *domain.PricingRule) error {
	query := `
		UPDATE pricing_rules
		SET vehicle_type = $1, base_price = $2, price_per_km = $3, display_order = $4, active = $5
		WHERE id = $6
	`

	result, err := r.q.ExecContext(ctx, query,
		rule.VehicleType,
		rule.BasePrice,
		rule.PricePerKm,
		rule.DisplayOrder,
		rule.Active,
		rule.ID,
	)
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

// Ensure PricingRuleRepository implements repository.PricingRuleRepository.
var _ repository.PricingRuleRepository = (*PricingRuleRepository)(nil)
