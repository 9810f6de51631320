//go:build !integration

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
)

var errCacheMiss = errors.New("redis: nil")

func TestEntityConfigRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	cfgs := []*model.EntityConfig{{EntityType: model.EntityWeight, IsActive: true, Priority: 4}}
	cfgJSON, _ := json.Marshal(cfgs)

	t.Run("List should return from cache on hit", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return string(cfgJSON), nil
			},
		}
		innerCalled := false
		inner := &mockInnerEntityConfigRepo{
			ListFunc: func(ctx context.Context, tx repository.Tx) ([]*model.EntityConfig, error) {
				innerCalled = true
				return nil, nil
			},
		}

		got, err := NewEntityConfigRepoCacheDecorator(inner, mockRedis, time.Hour).List(ctx, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if innerCalled {
			t.Error("inner repository should not be called on a cache hit")
		}
		if len(got) != 1 || got[0].EntityType != model.EntityWeight {
			t.Errorf("unexpected configs from cache: %+v", got)
		}
	})

	t.Run("List should fill the cache on miss", func(t *testing.T) {
		var stored string
		mockRedis := &mockRedisClient{
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				stored = key
				return nil
			},
		}
		inner := &mockInnerEntityConfigRepo{
			ListFunc: func(ctx context.Context, tx repository.Tx) ([]*model.EntityConfig, error) {
				return cfgs, nil
			},
		}

		got, err := NewEntityConfigRepoCacheDecorator(inner, mockRedis, time.Hour).List(ctx, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 config, got %d", len(got))
		}
		if stored != entityConfigsKey {
			t.Errorf("expected cache key %q to be set, got %q", entityConfigsKey, stored)
		}
	})

	t.Run("Upsert should invalidate the cache", func(t *testing.T) {
		var deleted []string
		mockRedis := &mockRedisClient{
			DelFunc: func(ctx context.Context, keys ...string) error {
				deleted = append(deleted, keys...)
				return nil
			},
		}
		inner := &mockInnerEntityConfigRepo{
			UpsertFunc: func(ctx context.Context, tx repository.Tx, c *model.EntityConfig) error { return nil },
		}

		err := NewEntityConfigRepoCacheDecorator(inner, mockRedis, time.Hour).Upsert(ctx, nil, cfgs[0])
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(deleted) != 1 || deleted[0] != entityConfigsKey {
			t.Fatalf("expected %q to be deleted, got %v", entityConfigsKey, deleted)
		}
	})

	t.Run("failed Upsert keeps the cache", func(t *testing.T) {
		delCalled := false
		mockRedis := &mockRedisClient{
			DelFunc: func(ctx context.Context, keys ...string) error {
				delCalled = true
				return nil
			},
		}
		inner := &mockInnerEntityConfigRepo{
			UpsertFunc: func(ctx context.Context, tx repository.Tx, c *model.EntityConfig) error {
				return errors.New("db down")
			},
		}

		if err := NewEntityConfigRepoCacheDecorator(inner, mockRedis, time.Hour).Upsert(ctx, nil, cfgs[0]); err == nil {
			t.Fatal("expected error")
		}
		if delCalled {
			t.Error("cache should not be invalidated when the write fails")
		}
	})
}

func TestAudioJobRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()

	t.Run("processing jobs are never cached", func(t *testing.T) {
		setCalled := false
		mockRedis := &mockRedisClient{
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				setCalled = true
				return nil
			},
		}
		inner := &mockInnerAudioJobRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.AudioJob, error) {
				return &model.AudioJob{ID: id, Status: model.AudioJobStatusProcessing}, nil
			},
		}

		job, err := NewAudioJobRepoCacheDecorator(inner, mockRedis, time.Hour).FindByID(ctx, nil, "j1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if job.Status != model.AudioJobStatusProcessing {
			t.Errorf("unexpected status %s", job.Status)
		}
		if setCalled {
			t.Error("a processing job must not be cached")
		}
	})

	t.Run("terminal jobs are cached and served from cache", func(t *testing.T) {
		cache := map[string]string{}
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				if v, ok := cache[key]; ok {
					return v, nil
				}
				return "", errCacheMiss
			},
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				cache[key] = string(value.([]byte))
				return nil
			},
		}
		calls := 0
		inner := &mockInnerAudioJobRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.AudioJob, error) {
				calls++
				job, _ := model.NewAudioJob("a.wav", "/tmp/a.wav", 10)
				job.ID = id
				_ = job.Complete("тигрица спит", nil, nil, time.Second)
				return job, nil
			},
		}
		repo := NewAudioJobRepoCacheDecorator(inner, mockRedis, time.Hour)

		first, err := repo.FindByID(ctx, nil, "j2")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second, err := repo.FindByID(ctx, nil, "j2")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 inner call, got %d", calls)
		}
		if second.Transcription != first.Transcription || second.Status != model.AudioJobStatusCompleted {
			t.Errorf("cached view differs: %+v vs %+v", first, second)
		}
	})
}
