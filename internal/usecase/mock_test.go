//go:build !integration

package usecase_test

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
)

// -----------------------------
// Audio jobs
// -----------------------------

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*model.AudioJob
	seq  []string
}

func newMemJobRepo() *memJobRepo { return &memJobRepo{jobs: map[string]*model.AudioJob{}} }

func (r *memJobRepo) Create(_ context.Context, _ repository.Tx, j *model.AudioJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[j.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *j
	r.jobs[j.ID] = &cp
	r.seq = append(r.seq, j.ID)
	return nil
}

func (r *memJobRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.AudioJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *memJobRepo) Finish(_ context.Context, _ repository.Tx, j *model.AudioJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.jobs[j.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.IsTerminal() {
		return domain.ErrJobAlreadyFinished
	}
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r *memJobRepo) MarkStarted(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.IsTerminal() {
		return domain.ErrJobAlreadyFinished
	}
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memJobRepo) ListRecent(_ context.Context, _ repository.Tx, limit, offset int) ([]*model.AudioJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AudioJob
	for i := len(r.seq) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		cp := *r.jobs[r.seq[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memJobRepo) FailStale(context.Context, repository.Tx, time.Time, string) ([]string, error) {
	return nil, nil
}

type memStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	max     int64
	removed []string
	n       int
}

func newMemStore(max int64) *memStore { return &memStore{files: map[string][]byte{}, max: max} }

func (s *memStore) Save(name string, r io.Reader) (string, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	path := "/uploads/" + string(rune('a'+s.n)) + "_" + name
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, s.max+1))
	if err != nil {
		return "", n, err
	}
	if n > s.max {
		return path, n, domain.ErrUploadTooLarge
	}
	s.files[path] = buf.Bytes()
	return path, n, nil
}

func (s *memStore) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	s.removed = append(s.removed, path)
	return nil
}

type fakeDispatcher struct {
	mu   sync.Mutex
	err  error
	jobs []*model.AudioJob
}

func (d *fakeDispatcher) Dispatch(job *model.AudioJob) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

// -----------------------------
// Animals and facts
// -----------------------------

type memFacts struct {
	mu           sync.Mutex
	animals      []*model.Animal
	observations []*model.Observation
	measurements []*model.Measurement
	feedings     []*model.Feeding
}

func (f *memFacts) addAnimal(name, species string) *model.Animal {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := model.NewAnimal(name, species)
	a.ID = int64(len(f.animals) + 1)
	f.animals = append(f.animals, a)
	return a
}

type memAnimalRepo struct{ f *memFacts }

func (r memAnimalRepo) UpsertByNameSpecies(_ context.Context, _ repository.Tx, a *model.Animal) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, cur := range r.f.animals {
		if cur.Key() == a.Key() {
			a.ID = cur.ID
			return nil
		}
	}
	a.ID = int64(len(r.f.animals) + 1)
	r.f.animals = append(r.f.animals, a)
	return nil
}

func (r memAnimalRepo) FindByID(_ context.Context, _ repository.Tx, id int64) (*model.Animal, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, a := range r.f.animals {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memAnimalRepo) List(context.Context, repository.Tx) ([]*model.Animal, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := append([]*model.Animal(nil), r.f.animals...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func between(ts, from, to time.Time) bool { return !ts.Before(from) && ts.Before(to) }

type memObservationRepo struct{ f *memFacts }

func (r memObservationRepo) Create(_ context.Context, _ repository.Tx, o *model.Observation) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	o.ID = int64(len(r.f.observations) + 1)
	r.f.observations = append(r.f.observations, o)
	return nil
}

func (r memObservationRepo) newestFirst(keep func(*model.Observation) bool) []*model.Observation {
	var out []*model.Observation
	for i := len(r.f.observations) - 1; i >= 0; i-- {
		if keep(r.f.observations[i]) {
			out = append(out, r.f.observations[i])
		}
	}
	return out
}

func page[T any](xs []T, limit, offset int) []T {
	if offset >= len(xs) {
		return nil
	}
	xs = xs[offset:]
	if len(xs) > limit {
		xs = xs[:limit]
	}
	return xs
}

func (r memObservationRepo) List(_ context.Context, _ repository.Tx, limit, offset int) ([]*model.Observation, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return page(r.newestFirst(func(*model.Observation) bool { return true }), limit, offset), nil
}

func (r memObservationRepo) ListByAnimal(_ context.Context, _ repository.Tx, id int64, limit, offset int) ([]*model.Observation, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return page(r.newestFirst(func(o *model.Observation) bool { return o.AnimalID == id }), limit, offset), nil
}

func (r memObservationRepo) LatestByAnimal(_ context.Context, _ repository.Tx, id int64) (*model.Observation, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if xs := r.newestFirst(func(o *model.Observation) bool { return o.AnimalID == id }); len(xs) > 0 {
		return xs[0], nil
	}
	return nil, domain.ErrNotFound
}

func (r memObservationRepo) ListBetween(_ context.Context, _ repository.Tx, from, to time.Time) ([]*model.Observation, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*model.Observation
	for _, o := range r.f.observations {
		if between(o.Timestamp, from, to) {
			out = append(out, o)
		}
	}
	return out, nil
}

type memMeasurementRepo struct{ f *memFacts }

func (r memMeasurementRepo) Create(_ context.Context, _ repository.Tx, m *model.Measurement) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m.ID = int64(len(r.f.measurements) + 1)
	r.f.measurements = append(r.f.measurements, m)
	return nil
}

func (r memMeasurementRepo) LatestByAnimal(_ context.Context, _ repository.Tx, id int64) (*model.Measurement, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for i := len(r.f.measurements) - 1; i >= 0; i-- {
		if r.f.measurements[i].AnimalID == id {
			return r.f.measurements[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memMeasurementRepo) ListBetween(_ context.Context, _ repository.Tx, from, to time.Time) ([]*model.Measurement, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*model.Measurement
	for _, m := range r.f.measurements {
		if between(m.Timestamp, from, to) {
			out = append(out, m)
		}
	}
	return out, nil
}

type memFeedingRepo struct{ f *memFacts }

func (r memFeedingRepo) Create(_ context.Context, _ repository.Tx, fd *model.Feeding) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	fd.ID = int64(len(r.f.feedings) + 1)
	r.f.feedings = append(r.f.feedings, fd)
	return nil
}

func (r memFeedingRepo) LatestByAnimal(_ context.Context, _ repository.Tx, id int64) (*model.Feeding, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for i := len(r.f.feedings) - 1; i >= 0; i-- {
		if r.f.feedings[i].AnimalID == id {
			return r.f.feedings[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memFeedingRepo) ListBetween(_ context.Context, _ repository.Tx, from, to time.Time) ([]*model.Feeding, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*model.Feeding
	for _, fd := range r.f.feedings {
		if between(fd.Timestamp, from, to) {
			out = append(out, fd)
		}
	}
	return out, nil
}

// -----------------------------
// Entity configs
// -----------------------------

type memConfigRepo struct {
	mu   sync.Mutex
	cfgs map[string]*model.EntityConfig
	err  error
}

func newMemConfigRepo() *memConfigRepo { return &memConfigRepo{cfgs: map[string]*model.EntityConfig{}} }

func (r *memConfigRepo) List(context.Context, repository.Tx) ([]*model.EntityConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.EntityConfig, 0, len(r.cfgs))
	for _, c := range r.cfgs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].EntityType < out[j].EntityType
	})
	return out, nil
}

func (r *memConfigRepo) ListActiveTypes(ctx context.Context, tx repository.Tx) ([]string, error) {
	cfgs, err := r.List(ctx, tx)
	if err != nil {
		return nil, err
	}
	return model.ActiveTypes(cfgs), nil
}

func (r *memConfigRepo) Upsert(_ context.Context, _ repository.Tx, c *model.EntityConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if cur, ok := r.cfgs[c.EntityType]; ok {
		c.CreatedAt = cur.CreatedAt
	}
	cp := *c
	r.cfgs[c.EntityType] = &cp
	return nil
}
