//go:build !integration

package postgres

import (
	"context"
	"time"

	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
	red "zoo-assistant/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

type mockInnerEntityConfigRepo struct {
	ListFunc   func(ctx context.Context, tx repository.Tx) ([]*model.EntityConfig, error)
	UpsertFunc func(ctx context.Context, tx repository.Tx, c *model.EntityConfig) error
}

func (m *mockInnerEntityConfigRepo) List(ctx context.Context, tx repository.Tx) ([]*model.EntityConfig, error) {
	return m.ListFunc(ctx, tx)
}
func (m *mockInnerEntityConfigRepo) ListActiveTypes(ctx context.Context, tx repository.Tx) ([]string, error) {
	cfgs, err := m.ListFunc(ctx, tx)
	if err != nil {
		return nil, err
	}
	return model.ActiveTypes(cfgs), nil
}
func (m *mockInnerEntityConfigRepo) Upsert(ctx context.Context, tx repository.Tx, c *model.EntityConfig) error {
	return m.UpsertFunc(ctx, tx, c)
}

type mockInnerAudioJobRepo struct {
	CreateFunc      func(ctx context.Context, tx repository.Tx, job *model.AudioJob) error
	FindByIDFunc    func(ctx context.Context, tx repository.Tx, id string) (*model.AudioJob, error)
	FinishFunc      func(ctx context.Context, tx repository.Tx, job *model.AudioJob) error
	ListRecentFunc  func(ctx context.Context, tx repository.Tx, limit, offset int) ([]*model.AudioJob, error)
	MarkStartedFunc func(ctx context.Context, tx repository.Tx, id string) error
	FailStaleFunc   func(ctx context.Context, tx repository.Tx, olderThan time.Time, detail string) ([]string, error)
}

func (m *mockInnerAudioJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.AudioJob) error {
	return m.CreateFunc(ctx, tx, job)
}
func (m *mockInnerAudioJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.AudioJob, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerAudioJobRepo) Finish(ctx context.Context, tx repository.Tx, job *model.AudioJob) error {
	return m.FinishFunc(ctx, tx, job)
}
func (m *mockInnerAudioJobRepo) MarkStarted(ctx context.Context, tx repository.Tx, id string) error {
	return m.MarkStartedFunc(ctx, tx, id)
}
func (m *mockInnerAudioJobRepo) ListRecent(ctx context.Context, tx repository.Tx, limit, offset int) ([]*model.AudioJob, error) {
	return m.ListRecentFunc(ctx, tx, limit, offset)
}
func (m *mockInnerAudioJobRepo) FailStale(ctx context.Context, tx repository.Tx, olderThan time.Time, detail string) ([]string, error) {
	return m.FailStaleFunc(ctx, tx, olderThan, detail)
}

// mockRedisClient mocks our Redis client wrapper. Unset funcs behave like an empty cache.
type mockRedisClient struct {
	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc func(ctx context.Context, keys ...string) error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", errCacheMiss
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return true, nil
}
func (m *mockRedisClient) DelIfEqual(ctx context.Context, key, value string) (bool, error) {
	return true, nil
}
func (m *mockRedisClient) Ping(ctx context.Context) error                      { return nil }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) { return 1, nil }
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
func (m *mockRedisClient) Close() error { return nil }
