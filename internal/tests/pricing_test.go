package tests

import (
	"context"
	"errors"
	"testing"

	"tow/internal/domain"
	"tow/internal/repository/memory"
	"tow/internal/service"
)

// ──────────────────────────────────────────────
// 1. PRICING ENGINE
// ──────────────────────────────────────────────

func newPricingService(t *testing.T, rules ...*domain.PricingRule) *service.PricingService {
	t.Helper()

	ruleRepo := memory.NewPricingRuleRepository()
	for _, rule := range rules {
		if err := ruleRepo.Create(context.Background(), rule); err != nil {
			t.Fatalf("seeding rule: %v", err)
		}
	}

	return service.NewPricingService(ruleRepo, nil)
}

func flatbedRule() *domain.PricingRule {
	return &domain.PricingRule{
		ID:          "rule-flatbed",
		VehicleType: "flatbed",
		BasePrice:   80_000,
		PricePerKm:  10_000,
		Active:      true,
	}
}

func TestPricing_RuleSchedule(t *testing.T) {
	t.Parallel()

	svc := newPricingService(t, flatbedRule())

	testCases := []struct {
		name     string
		distance float64
		want     int64
	}{
		{name: "zero distance is base price", distance: 0, want: 80_000},
		{name: "included distance is base price", distance: 4, want: 80_000},
		{name: "just past included", distance: 5, want: 90_000},
		{name: "ten kilometres", distance: 10, want: 140_000},
		{name: "fractional distance", distance: 6.5, want: 105_000},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok, err := svc.Estimate(context.Background(), domain.ServiceTypeTowing, "flatbed", tc.distance)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatal("expected an estimate")
			}
			if got != tc.want {
				t.Errorf("Estimate(%v) = %d, want %d", tc.distance, got, tc.want)
			}
		})
	}
}

func TestPricing_FallbackSchedule(t *testing.T) {
	t.Parallel()

	// No rules configured: towing falls through to the hard-coded schedule.
	svc := newPricingService(t)

	testCases := []struct {
		name     string
		distance float64
		want     int64
	}{
		{name: "short haul flat", distance: 2, want: 80_000},
		{name: "boundary at four km", distance: 4, want: 80_000},
		{name: "mid tier", distance: 12, want: 160_000},
		{name: "boundary at twenty km", distance: 20, want: 240_000},
		{name: "far tier", distance: 25, want: 265_000},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok, err := svc.Estimate(context.Background(), domain.ServiceTypeTowing, "unknown-model", tc.distance)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatal("expected fallback estimate for towing")
			}
			if got != tc.want {
				t.Errorf("Estimate(%v) = %d, want %d", tc.distance, got, tc.want)
			}
		})
	}
}

func TestPricing_NoRuleNonTowing_NoEstimate(t *testing.T) {
	t.Parallel()

	svc := newPricingService(t)

	amount, ok, err := svc.Estimate(context.Background(), domain.ServiceTypeDelivery, "unknown-model", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no estimate for unknown vehicle on non-towing service")
	}
	if amount != 0 {
		t.Errorf("amount = %d, want 0", amount)
	}
}

func TestPricing_NegativeDistance_Rejected(t *testing.T) {
	t.Parallel()

	svc := newPricingService(t, flatbedRule())

	_, _, err := svc.Estimate(context.Background(), domain.ServiceTypeTowing, "flatbed", -1)
	if !errors.Is(err, service.ErrInvalidDistance) {
		t.Fatalf("expected ErrInvalidDistance, got %v", err)
	}
}

func TestPricing_SettlementRoundsUpToHundred(t *testing.T) {
	t.Parallel()

	svc := newPricingService(t, &domain.PricingRule{
		ID:          "rule-odd",
		VehicleType: "wrecker",
		BasePrice:   80_050,
		PricePerKm:  3_333,
		Active:      true,
	})

	got, ok, err := svc.Settle(context.Background(), domain.ServiceTypeTowing, "wrecker", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a settlement")
	}

	// 80050 + 3*3333 = 90049, rounded up to the next hundred.
	if got != 90_100 {
		t.Errorf("Settle = %d, want 90100", got)
	}
	if got%100 != 0 {
		t.Errorf("settled amount %d not a multiple of 100", got)
	}
}

func TestPricing_SettlementOnExactHundred_Unchanged(t *testing.T) {
	t.Parallel()

	svc := newPricingService(t, flatbedRule())

	got, ok, err := svc.Settle(context.Background(), domain.ServiceTypeTowing, "flatbed", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a settlement")
	}
	if got != 140_000 {
		t.Errorf("Settle = %d, want 140000", got)
	}
}

func TestPricing_FallbackMonotonicOverDistance(t *testing.T) {
	t.Parallel()

	svc := newPricingService(t)

	var prev int64
	for d := 0.0; d <= 40; d += 0.5 {
		got, ok, err := svc.Estimate(context.Background(), domain.ServiceTypeTowing, "unknown", d)
		if err != nil || !ok {
			t.Fatalf("Estimate(%v): ok=%v err=%v", d, ok, err)
		}
		if got < prev {
			t.Fatalf("price decreased with distance: %d at %v km after %d", got, d, prev)
		}
		prev = got
	}
}

func TestPricing_InactiveRule_FallsBack(t *testing.T) {
	t.Parallel()

	rule := flatbedRule()
	rule.Active = false
	svc := newPricingService(t, rule)

	got, ok, err := svc.Estimate(context.Background(), domain.ServiceTypeTowing, "flatbed", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected fallback estimate")
	}
	if got != 265_000 {
		t.Errorf("Estimate = %d, want fallback 265000", got)
	}
}

func TestPricing_CacheServesSecondLookup(t *testing.T) {
	t.Parallel()

	ruleRepo := memory.NewPricingRuleRepository()
	if err := ruleRepo.Create(context.Background(), flatbedRule()); err != nil {
		t.Fatalf("seeding rule: %v", err)
	}
	cache := NewMockRuleCache()
	svc := service.NewPricingService(ruleRepo, cache)

	for i := 0; i < 2; i++ {
		if _, _, err := svc.Estimate(context.Background(), domain.ServiceTypeTowing, "flatbed", 10); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if cache.SetCallCount != 1 {
		t.Errorf("cache Set called %d times, want 1 (second lookup should hit)", cache.SetCallCount)
	}
	if cache.GetCallCount != 2 {
		t.Errorf("cache Get called %d times, want 2", cache.GetCallCount)
	}
}

func TestPricing_UpdateRule_InvalidatesCache(t *testing.T) {
	t.Parallel()

	ruleRepo := memory.NewPricingRuleRepository()
	rule := flatbedRule()
	if err := ruleRepo.Create(context.Background(), rule); err != nil {
		t.Fatalf("seeding rule: %v", err)
	}
	cache := NewMockRuleCache()
	svc := service.NewPricingService(ruleRepo, cache)

	// Warm the cache.
	if _, _, err := svc.Estimate(context.Background(), domain.ServiceTypeTowing, "flatbed", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cache.Cached("flatbed") {
		t.Fatal("expected cache entry after first lookup")
	}

	updated := *rule
	updated.PricePerKm = 12_000
	if _, err := svc.UpdateRule(context.Background(), &updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cache.Cached("flatbed") {
		t.Error("expected cache entry to be invalidated after rule update")
	}

	got, _, err := svc.Estimate(context.Background(), domain.ServiceTypeTowing, "flatbed", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 152_000 {
		t.Errorf("Estimate after update = %d, want 152000", got)
	}
}

func TestPricing_UpdateRule_RejectsNegativeRates(t *testing.T) {
	t.Parallel()

	svc := newPricingService(t, flatbedRule())

	testCases := []struct {
		name string
		rule domain.PricingRule
	}{
		{name: "negative base", rule: domain.PricingRule{ID: "rule-flatbed", VehicleType: "flatbed", BasePrice: -1}},
		{name: "negative per km", rule: domain.PricingRule{ID: "rule-flatbed", VehicleType: "flatbed", PricePerKm: -1}},
		{name: "empty vehicle type", rule: domain.PricingRule{ID: "rule-flatbed"}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rule := tc.rule
			if _, err := svc.UpdateRule(context.Background(), &rule); !errors.Is(err, service.ErrInvalidRuleUpdate) {
				t.Fatalf("expected ErrInvalidRuleUpdate, got %v", err)
			}
		})
	}
}
