package service

import (
	"context"
	"errors"
	"log"
	"math"

	"tow/internal/domain"
	"tow/internal/redis"
	"tow/internal/repository"
)

// Rate schedule constants. Every rule's base price covers the first
// includedKm kilometres; the fallback schedule applies to towing jobs whose
// vehicle model matches no configured rule.
const (
	includedKm = 4.0

	fallbackBasePrice    = 80_000 // <= 4 km
	fallbackNearPerKm    = 10_000 // 4-20 km
	fallbackNearLimitKm  = 20.0
	fallbackFarPerKm     = 5_000 // beyond 20 km
	settlementRoundingTo = 100
)

// PricingService maps (vehicle type, distance) to a price using the
// configured tiered rules, with the hard-coded towing schedule as fallback.
type PricingService struct {
	ruleRepo  repository.PricingRuleRepository
	ruleCache redis.RuleCacheInterface
}

// NewPricingService creates a new PricingService. ruleCache may be nil.
func NewPricingService(ruleRepo repository.PricingRuleRepository, ruleCache redis.RuleCacheInterface) *PricingService {
	return &PricingService{ruleRepo: ruleRepo, ruleCache: ruleCache}
}

// Estimate computes the request-time price, unrounded.
//
// The boolean reports whether a price could be computed at all: when the
// vehicle type matches no rule and the service is not towing, Estimate
// returns (0, false, nil) and the caller keeps whatever price it already
// has. That silent pass-through is part of the pricing contract, not an
// error condition.
func (s *PricingService) Estimate(ctx context.Context, serviceType domain.ServiceType, vehicleType string, distanceKm float64) (int64, bool, error) {
	if distanceKm < 0 {
		return 0, false, ErrInvalidDistance
	}

	rule, err := s.lookupRule(ctx, vehicleType)
	if err != nil {
		return 0, false, err
	}

	if rule != nil {
		return ruleAmount(rule, distanceKm), true, nil
	}

	if serviceType == domain.ServiceTypeTowing {
		return fallbackAmount(distanceKm), true, nil
	}

	return 0, false, nil
}

// Settle computes the completion-time price: the same schedule as Estimate,
// then rounded up to the nearest 100 currency units. Estimates stay
// unrounded; only settled prices are rounded.
func (s *PricingService) Settle(ctx context.Context, serviceType domain.ServiceType, vehicleType string, distanceKm float64) (int64, bool, error) {
	amount, ok, err := s.Estimate(ctx, serviceType, vehicleType, distanceKm)
	if err != nil || !ok {
		return 0, ok, err
	}

	return roundUp(amount, settlementRoundingTo), true, nil
}

// Rules retrieves all configured rules ordered for display.
func (s *PricingService) Rules(ctx context.Context) ([]*domain.PricingRule, error) {
	return s.ruleRepo.GetAll(ctx)
}

// UpdateRule updates a rule and drops its cache entry so estimates pick up
// the new rates within one lookup.
func (s *PricingService) UpdateRule(ctx context.Context, rule *domain.PricingRule) (*domain.PricingRule, error) {
	if rule.VehicleType == "" || rule.BasePrice < 0 || rule.PricePerKm < 0 {
		return nil, ErrInvalidRuleUpdate
	}

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, err
	}

	if s.ruleCache != nil {
		if err := s.ruleCache.Invalidate(ctx, rule.VehicleType); err != nil {
			log.Printf("pricing: rule cache invalidation failed for %q: %v", rule.VehicleType, err)
		}
	}

	return rule, nil
}

func (s *PricingService) lookupRule(ctx context.Context, vehicleType string) (*domain.PricingRule, error) {
	if vehicleType == "" {
		return nil, nil
	}

	if s.ruleCache != nil {
		rule, err := s.ruleCache.Get(ctx, vehicleType)
		if err != nil {
			log.Printf("pricing: rule cache read failed for %q: %v", vehicleType, err)
		} else if rule != nil {
			return rule, nil
		}
	}

	rule, err := s.ruleRepo.GetActiveByVehicleType(ctx, vehicleType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if s.ruleCache != nil {
		if err := s.ruleCache.Set(ctx, rule); err != nil {
			log.Printf("pricing: rule cache write failed for %q: %v", vehicleType, err)
		}
	}

	return rule, nil
}

func ruleAmount(rule *domain.PricingRule, distanceKm float64) int64 {
	extra := distanceKm - includedKm
	if extra < 0 {
		extra = 0
	}

	return rule.BasePrice + int64(math.Round(extra*float64(rule.PricePerKm)))
}

func fallbackAmount(distanceKm float64) int64 {
	switch {
	case distanceKm <= includedKm:
		return fallbackBasePrice
	case distanceKm <= fallbackNearLimitKm:
		return fallbackBasePrice + int64(math.Round((distanceKm-includedKm)*fallbackNearPerKm))
	default:
		near := int64((fallbackNearLimitKm - includedKm) * fallbackNearPerKm)
		return fallbackBasePrice + near + int64(math.Round((distanceKm-fallbackNearLimitKm)*fallbackFarPerKm))
	}
}

func roundUp(amount, to int64) int64 {
	if amount%to == 0 {
		return amount
	}
	return (amount/to + 1) * to
}
