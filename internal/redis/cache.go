package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"tow/internal/domain"
)

// RuleCacheTTL bounds staleness between a rule update on one node and
// estimates computed on another.
const RuleCacheTTL = 60 * time.Second

const ruleCachePrefix = "cache:pricing:"

// RuleCache caches active pricing rules per vehicle type. Rules change
// rarely and every trip creation reads one, so a short-TTL cache keeps the
// estimate path off the database.
type RuleCache struct {
	client *redis.Client
}

// NewRuleCache creates a new RuleCache.
func NewRuleCache(client *redis.Client) *RuleCache {
	return &RuleCache{client: client}
}

// Get retrieves a cached rule. A nil rule with nil error is a cache miss.
func (c *RuleCache) Get(ctx context.Context, vehicleType string) (*domain.PricingRule, error) {
	data, err := c.client.Get(ctx, ruleCachePrefix+vehicleType).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var rule domain.PricingRule
	if err := json.Unmarshal(data, &rule); err != nil {
		return nil, err
	}

	return &rule, nil
}

// Set stores a rule.
func (c *RuleCache) Set(ctx context.Context, rule *domain.PricingRule) error {
	data, err := json.Marshal(rule)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, ruleCachePrefix+rule.VehicleType, data, RuleCacheTTL).Err()
}

// Invalidate removes a rule from the cache after an update.
func (c *RuleCache) Invalidate(ctx context.Context, vehicleType string) error {
	return c.client.Del(ctx, ruleCachePrefix+vehicleType).Err()
}
