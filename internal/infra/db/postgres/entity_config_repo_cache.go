package postgres

import (
	"context"
	"encoding/json"
	"time"

	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
	"zoo-assistant/internal/infra/metrics"
	red "zoo-assistant/internal/infra/redis"
)

var _ repository.EntityConfigRepository = (*entityConfigRepoCacheDecorator)(nil)

const entityConfigsKey = "entity_configs:all"

// entityConfigRepoCacheDecorator caches the config list. The pipeline reads it
// once per job, writes are rare.
type entityConfigRepoCacheDecorator struct {
	inner repository.EntityConfigRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewEntityConfigRepoCacheDecorator(inner repository.EntityConfigRepository, cache red.RedisClient, ttl time.Duration) repository.EntityConfigRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &entityConfigRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *entityConfigRepoCacheDecorator) List(ctx context.Context, tx repository.Tx) ([]*model.EntityConfig, error) {
	// inside a transaction the caller wants what the tx sees
	if tx != nil {
		return d.inner.List(ctx, tx)
	}
	val, err := d.cache.Get(ctx, entityConfigsKey)
	if err == nil {
		var cfgs []*model.EntityConfig
		if json.Unmarshal([]byte(val), &cfgs) == nil {
			metrics.IncCacheRequest("entity_config", "hit")
			return cfgs, nil
		}
	}

	metrics.IncCacheRequest("entity_config", "miss")
	cfgs, err := d.inner.List(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(cfgs) > 0 {
		if b, err := json.Marshal(cfgs); err == nil {
			_ = d.cache.Set(ctx, entityConfigsKey, b, d.ttl)
		}
	}
	return cfgs, nil
}

func (d *entityConfigRepoCacheDecorator) ListActiveTypes(ctx context.Context, tx repository.Tx) ([]string, error) {
	cfgs, err := d.List(ctx, tx)
	if err != nil {
		return nil, err
	}
	return model.ActiveTypes(cfgs), nil
}

func (d *entityConfigRepoCacheDecorator) Upsert(ctx context.Context, tx repository.Tx, c *model.EntityConfig) error {
	if err := d.inner.Upsert(ctx, tx, c); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, entityConfigsKey)
	return nil
}
