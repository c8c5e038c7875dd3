package memory

import (
	"context"
	"sort"
	"sync"

	"tow/internal/domain"
	"tow/internal/repository"
)

// PricingRuleRepository is an in-memory implementation of repository.PricingRuleRepository.
type PricingRuleRepository struct {
	mu    sync.RWMutex
	rules map[string]*domain.PricingRule
}

// NewPricingRuleRepository creates a new in-memory pricing rule repository.
func NewPricingRuleRepository() *PricingRuleRepository {
	return &PricingRuleRepository{rules: make(map[string]*domain.PricingRule)}
}

// Create persists a new rule.
func (r *PricingRuleRepository) Create(ctx context.Context, rule *domain.PricingRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *rule
	r.rules[rule.ID] = &copied
	return nil
}

// GetActiveByVehicleType retrieves the active rule for a vehicle type.
func (r *PricingRuleRepository) GetActiveByVehicleType(ctx context.Context, vehicleType string) (*domain.PricingRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rule := range r.rules {
		if rule.Active && rule.VehicleType == vehicleType {
			copied := *rule
			return &copied, nil
		}
	}

	return nil, repository.ErrNotFound
}

// GetAll retrieves all rules ordered by display order.
func (r *PricingRuleRepository) GetAll(ctx context.Context) ([]*domain.PricingRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]*domain.PricingRule, 0, len(r.rules))
	for _, rule := range r.rules {
		copied := *rule
		rules = append(rules, &copied)
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].DisplayOrder != rules[j].DisplayOrder {
			return rules[i].DisplayOrder < rules[j].DisplayOrder
		}
		return rules[i].VehicleType < rules[j].VehicleType
	})

	return rules, nil
}

// Update updates an existing rule.
func (r *PricingRuleRepository) Update(ctx context.Context, rule *domain.PricingRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[rule.ID]; !ok {
		return repository.ErrNotFound
	}

	copied := *rule
	r.rules[rule.ID] = &copied
	return nil
}

// Ensure PricingRuleRepository implements repository.PricingRuleRepository.
var _ repository.PricingRuleRepository = (*PricingRuleRepository)(nil)
