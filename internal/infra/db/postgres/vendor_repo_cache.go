package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace-entitlements/internal/domain/model"
	"marketplace-entitlements/internal/domain/ports/repository"
	"marketplace-entitlements/internal/infra/metrics"
	red "marketplace-entitlements/internal/infra/redis"
)

var _ repository.VendorRepository = (*vendorRepoCacheDecorator)(nil)

// vendorRepoCacheDecorator caches owner lookups. The TTL is short because
// entitlement reads must not serve long-stale subscription status.
type vendorRepoCacheDecorator struct {
	inner repository.VendorRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewVendorRepoCacheDecorator(inner repository.VendorRepository, cache red.RedisClient) repository.VendorRepository {
	return &vendorRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   30 * time.Second,
	}
}

func ownerKey(ownerID string) string { return fmt.Sprintf("vendor:owner:%s", ownerID) }

func (d *vendorRepoCacheDecorator) FindByOwner(ctx context.Context, tx repository.Tx, ownerID string) (*model.Vendor, error) {
	// Transactional reads bypass the cache.
	if tx == nil {
		if val, err := d.cache.Get(ctx, ownerKey(ownerID)); err == nil {
			var v model.Vendor
			if json.Unmarshal([]byte(val), &v) == nil {
				metrics.IncCacheRequest("vendor", "hit")
				return &v, nil
			}
		}
		metrics.IncCacheRequest("vendor", "miss")
	}

	v, err := d.inner.FindByOwner(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}
	if tx == nil && v != nil {
		if bytes, err := json.Marshal(v); err == nil {
			_ = d.cache.Set(ctx, ownerKey(ownerID), bytes, d.ttl)
		}
	}
	return v, nil
}

func (d *vendorRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Vendor, error) {
	return d.inner.FindByID(ctx, tx, id)
}

func (d *vendorRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, v *model.Vendor) error {
	_ = d.cache.Del(ctx, ownerKey(v.OwnerID))
	return d.inner.Save(ctx, tx, v)
}
