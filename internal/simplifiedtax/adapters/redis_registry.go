package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"simtax/internal/simplifiedtax"
	"simtax/internal/simplifiedtax/ports"
)

const (
	fixedAmountKeyPrefix = "simtax:fixed_amount:"
	landRateKeyPrefix    = "simtax:land_rate:"
)

// RedisRegistry serves amounts published to Redis by the tax office's
// parameter pipeline. Keys hold decimal strings:
//
//	simtax:fixed_amount:<route>  fixed tax in AZN
//	simtax:land_rate:<zone>      land tax per hectare
//
// Missing keys fall through to the fallback source when one is set.
type RedisRegistry struct {
	client   *redis.Client
	fallback ports.AmountSource
}

// RedisRegistryOption configures a RedisRegistry instance.
type RedisRegistryOption func(*RedisRegistry)

// WithFallback sets the source consulted for keys Redis does not hold.
func WithFallback(src ports.AmountSource) RedisRegistryOption {
	return func(r *RedisRegistry) {
		r.fallback = src
	}
}

// NewRedisRegistry constructs a Redis-backed amount source.
func NewRedisRegistry(client *redis.Client, opts ...RedisRegistryOption) ports.AmountSource {
	r := &RedisRegistry{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// FixedAmountKey is the Redis key holding the fixed tax for route.
func FixedAmountKey(route simplifiedtax.Route) string {
	return fixedAmountKeyPrefix + string(route)
}

// LandRateKey is the Redis key holding the per-hectare land tax for zone.
func LandRateKey(zone simplifiedtax.LocationZone) string {
	return landRateKeyPrefix + string(zone)
}

func (r *RedisRegistry) FixedAmount(ctx context.Context, route simplifiedtax.Route) (decimal.Decimal, bool, error) {
	amount, ok, err := r.get(ctx, FixedAmountKey(route))
	if err != nil || ok {
		return amount, ok, err
	}
	if r.fallback != nil {
		return r.fallback.FixedAmount(ctx, route)
	}
	return decimal.Zero, false, nil
}

func (r *RedisRegistry) LandTaxBase(ctx context.Context, land *simplifiedtax.LandTransfer) (decimal.Decimal, bool, error) {
	if land == nil {
		return decimal.Zero, false, nil
	}
	if land.LandTaxBase != nil {
		return *land.LandTaxBase, true, nil
	}
	if land.AreaHectares == nil || land.Zone == "" {
		return decimal.Zero, false, nil
	}

	rate, ok, err := r.get(ctx, LandRateKey(land.Zone))
	if err != nil {
		return decimal.Zero, false, err
	}
	if ok {
		return land.AreaHectares.Mul(rate).Round(2), true, nil
	}
	if r.fallback != nil {
		return r.fallback.LandTaxBase(ctx, land)
	}
	return decimal.Zero, false, nil
}

func (r *RedisRegistry) get(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	raw, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("redis key %s holds %q: %w", key, raw, err)
	}
	if v.IsNegative() {
		return decimal.Zero, false, fmt.Errorf("redis key %s holds negative amount %s", key, v)
	}
	return v, true, nil
}
