//go:build !integration

package worker

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/require"

	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/adapter"
	"zoo-assistant/internal/domain/ports/repository"
)

type memStore struct {
	mu           sync.Mutex
	jobs         map[string]*model.AudioJob
	animals      []*model.Animal
	observations []*model.Observation
	measurements []*model.Measurement
	feedings     []*model.Feeding
	configs      []*model.EntityConfig
	failObs      error
	failConfigs  error
}

func newMemStore() *memStore {
	return &memStore{jobs: map[string]*model.AudioJob{}}
}

func (s *memStore) repos() Repos {
	return Repos{
		Jobs:          memJobs{s},
		Animals:       memAnimals{s},
		Observations:  memObservations{s},
		Measurements:  memMeasurements{s},
		Feedings:      memFeedings{s},
		EntityConfigs: memConfigs{s},
	}
}

// memTx buffers facts until commit so a failing fn leaves the store untouched.
type memTx struct{ s *memStore }

func (m memTx) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.s.mu.Lock()
	snapAnimals := append([]*model.Animal(nil), m.s.animals...)
	snapObs := append([]*model.Observation(nil), m.s.observations...)
	snapMeas := append([]*model.Measurement(nil), m.s.measurements...)
	snapFeed := append([]*model.Feeding(nil), m.s.feedings...)
	m.s.mu.Unlock()

	if err := fn(ctx, struct{}{}); err != nil {
		m.s.mu.Lock()
		m.s.animals, m.s.observations, m.s.measurements, m.s.feedings = snapAnimals, snapObs, snapMeas, snapFeed
		m.s.mu.Unlock()
		return err
	}
	return nil
}

type memJobs struct{ s *memStore }

func (r memJobs) Create(_ context.Context, _ repository.Tx, j *model.AudioJob) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *j
	r.s.jobs[j.ID] = &cp
	return nil
}

func (r memJobs) FindByID(_ context.Context, _ repository.Tx, id string) (*model.AudioJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r memJobs) Finish(_ context.Context, _ repository.Tx, j *model.AudioJob) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.jobs[j.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.IsTerminal() {
		return domain.ErrJobAlreadyFinished
	}
	cp := *j
	r.s.jobs[j.ID] = &cp
	return nil
}

func (r memJobs) MarkStarted(_ context.Context, _ repository.Tx, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.IsTerminal() {
		return domain.ErrJobAlreadyFinished
	}
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (r memJobs) ListRecent(context.Context, repository.Tx, int, int) ([]*model.AudioJob, error) {
	return nil, nil
}

func (r memJobs) FailStale(context.Context, repository.Tx, time.Time, string) ([]string, error) {
	return nil, nil
}

type memAnimals struct{ s *memStore }

func (r memAnimals) UpsertByNameSpecies(_ context.Context, _ repository.Tx, a *model.Animal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, cur := range r.s.animals {
		if cur.Key() == a.Key() {
			a.ID = cur.ID
			return nil
		}
	}
	a.ID = int64(len(r.s.animals) + 1)
	cp := *a
	r.s.animals = append(r.s.animals, &cp)
	return nil
}

func (r memAnimals) FindByID(context.Context, repository.Tx, int64) (*model.Animal, error) {
	return nil, domain.ErrNotFound
}

func (r memAnimals) List(context.Context, repository.Tx) ([]*model.Animal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]*model.Animal(nil), r.s.animals...), nil
}

type memObservations struct{ s *memStore }

func (r memObservations) Create(_ context.Context, _ repository.Tx, o *model.Observation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failObs != nil {
		return r.s.failObs
	}
	o.ID = int64(len(r.s.observations) + 1)
	r.s.observations = append(r.s.observations, o)
	return nil
}

func (r memObservations) List(context.Context, repository.Tx, int, int) ([]*model.Observation, error) {
	return nil, nil
}

func (r memObservations) ListByAnimal(context.Context, repository.Tx, int64, int, int) ([]*model.Observation, error) {
	return nil, nil
}

func (r memObservations) LatestByAnimal(context.Context, repository.Tx, int64) (*model.Observation, error) {
	return nil, domain.ErrNotFound
}

func (r memObservations) ListBetween(context.Context, repository.Tx, time.Time, time.Time) ([]*model.Observation, error) {
	return nil, nil
}

type memMeasurements struct{ s *memStore }

func (r memMeasurements) Create(_ context.Context, _ repository.Tx, m *model.Measurement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = int64(len(r.s.measurements) + 1)
	r.s.measurements = append(r.s.measurements, m)
	return nil
}

func (r memMeasurements) LatestByAnimal(context.Context, repository.Tx, int64) (*model.Measurement, error) {
	return nil, domain.ErrNotFound
}

func (r memMeasurements) ListBetween(context.Context, repository.Tx, time.Time, time.Time) ([]*model.Measurement, error) {
	return nil, nil
}

type memFeedings struct{ s *memStore }

func (r memFeedings) Create(_ context.Context, _ repository.Tx, f *model.Feeding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f.ID = int64(len(r.s.feedings) + 1)
	r.s.feedings = append(r.s.feedings, f)
	return nil
}

func (r memFeedings) LatestByAnimal(context.Context, repository.Tx, int64) (*model.Feeding, error) {
	return nil, domain.ErrNotFound
}

func (r memFeedings) ListBetween(context.Context, repository.Tx, time.Time, time.Time) ([]*model.Feeding, error) {
	return nil, nil
}

type memConfigs struct{ s *memStore }

func (r memConfigs) List(context.Context, repository.Tx) ([]*model.EntityConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failConfigs != nil {
		return nil, r.s.failConfigs
	}
	return append([]*model.EntityConfig(nil), r.s.configs...), nil
}

func (r memConfigs) ListActiveTypes(ctx context.Context, tx repository.Tx) ([]string, error) {
	cfgs, err := r.List(ctx, tx)
	if err != nil {
		return nil, err
	}
	return model.ActiveTypes(cfgs), nil
}

func (r memConfigs) Upsert(context.Context, repository.Tx, *model.EntityConfig) error {
	return errors.New("not supported")
}

type stubLocker struct {
	mu     sync.Mutex
	held   map[string]bool
	err    error
	unlock int
}

func (l *stubLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", l.err
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return "", domain.ErrJobLocked
	}
	l.held[key] = true
	return "tok", nil
}

func (l *stubLocker) Unlock(_ context.Context, key, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	l.unlock++
	return nil
}

type stubConverter struct {
	calls int
	err   error
}

func (c *stubConverter) ToPCM16(_ context.Context, src, dir string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, "converted_16k.wav")
	return out, os.WriteFile(out, b, 0o644)
}

type stubExtractor struct {
	spans []model.EntitySpan
	err   error
	types []string
}

func (e *stubExtractor) Extract(_ context.Context, _ string, active []string) ([]model.EntitySpan, error) {
	e.types = active
	return e.spans, e.err
}

type transcribeFunc func(ctx context.Context, path string) (adapter.Transcript, error)

func (f transcribeFunc) Transcribe(ctx context.Context, path string) (adapter.Transcript, error) {
	return f(ctx, path)
}
func (transcribeFunc) NeedsPCM() bool { return false }
func (transcribeFunc) Name() string   { return "func" }

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, text)
	return nil
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

// writeWav writes a silent PCM16 WAV file of the given shape.
func writeWav(t *testing.T, dir, name string, rate, channels, samples int) string {
	t.Helper()
	dataLen := samples * channels * 2
	b := make([]byte, 44+dataLen)
	copy(b[0:], "RIFF")
	binary.LittleEndian.PutUint32(b[4:], uint32(36+dataLen))
	copy(b[8:], "WAVE")
	copy(b[12:], "fmt ")
	binary.LittleEndian.PutUint32(b[16:], 16)
	binary.LittleEndian.PutUint16(b[20:], 1)
	binary.LittleEndian.PutUint16(b[22:], uint16(channels))
	binary.LittleEndian.PutUint32(b[24:], uint32(rate))
	binary.LittleEndian.PutUint32(b[28:], uint32(rate*channels*2))
	binary.LittleEndian.PutUint16(b[32:], uint16(channels*2))
	binary.LittleEndian.PutUint16(b[34:], 16)
	copy(b[36:], "data")
	binary.LittleEndian.PutUint32(b[40:], uint32(dataLen))

	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, b, 0o644))
	return p
}
