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

var _ repository.AudioJobRepository = (*audioJobRepoCacheDecorator)(nil)

// audioJobRepoCacheDecorator caches terminal jobs only. A terminal job never
// changes again, so its cached view cannot go stale.
type audioJobRepoCacheDecorator struct {
	inner repository.AudioJobRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewAudioJobRepoCacheDecorator(inner repository.AudioJobRepository, cache red.RedisClient, ttl time.Duration) repository.AudioJobRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &audioJobRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func jobStatusKey(id string) string { return "job:status:" + id }

func (d *audioJobRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.AudioJob, error) {
	key := jobStatusKey(id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var job model.AudioJob
		if json.Unmarshal([]byte(val), &job) == nil {
			metrics.IncCacheRequest("job_status", "hit")
			return &job, nil
		}
	}

	metrics.IncCacheRequest("job_status", "miss")
	job, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if job.IsTerminal() {
		if b, err := json.Marshal(job); err == nil {
			_ = d.cache.Set(ctx, key, b, d.ttl)
		}
	}
	return job, nil
}

func (d *audioJobRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, job *model.AudioJob) error {
	return d.inner.Create(ctx, tx, job)
}

func (d *audioJobRepoCacheDecorator) Finish(ctx context.Context, tx repository.Tx, job *model.AudioJob) error {
	return d.inner.Finish(ctx, tx, job)
}

func (d *audioJobRepoCacheDecorator) MarkStarted(ctx context.Context, tx repository.Tx, id string) error {
	return d.inner.MarkStarted(ctx, tx, id)
}

func (d *audioJobRepoCacheDecorator) ListRecent(ctx context.Context, tx repository.Tx, limit, offset int) ([]*model.AudioJob, error) {
	return d.inner.ListRecent(ctx, tx, limit, offset)
}

func (d *audioJobRepoCacheDecorator) FailStale(ctx context.Context, tx repository.Tx, olderThan time.Time, detail string) ([]string, error) {
	return d.inner.FailStale(ctx, tx, olderThan, detail)
}
