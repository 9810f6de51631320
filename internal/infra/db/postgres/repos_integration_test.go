//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"

	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
)

func TestAnimalRepo_UpsertIsCaseInsensitive(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	animals := NewAnimalRepo(testPool)
	observations := NewObservationRepo(testPool)

	for _, pair := range [][2]string{{"Багира", "Тигрица"}, {"багира", "ТИГРИЦА"}} {
		a := model.NewAnimal(pair[0], pair[1])
		if err := animals.UpsertByNameSpecies(ctx, nil, a); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if err := observations.Create(ctx, nil, &model.Observation{AnimalID: a.ID, Behavior: model.StrPtr("спит")}); err != nil {
			t.Fatalf("create observation: %v", err)
		}
	}

	all, err := animals.List(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 animal, got %d", len(all))
	}
	if all[0].Name != "Багира" {
		t.Errorf("first spelling should be kept, got %q", all[0].Name)
	}
	obs, err := observations.ListByAnimal(ctx, nil, all[0].ID, 10, 0)
	if err != nil {
		t.Fatalf("list observations: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}
}

func TestAnimalRepo_UpsertKeepsKnownAge(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := NewAnimalRepo(testPool)

	a := model.NewAnimal("Балу", "Медведь")
	a.Age = model.FloatPtr(12)
	if err := repo.UpsertByNameSpecies(ctx, nil, a); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	again := model.NewAnimal("Балу", "Медведь")
	if err := repo.UpsertByNameSpecies(ctx, nil, again); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if again.ID != a.ID {
		t.Fatalf("expected same id %d, got %d", a.ID, again.ID)
	}
	if again.Age == nil || *again.Age != 12 {
		t.Errorf("age should survive an upsert without age, got %v", again.Age)
	}

	if _, err := repo.FindByID(ctx, nil, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAudioJobRepo_Lifecycle(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := NewAudioJobRepo(testPool)

	job, _ := model.NewAudioJob("rec.wav", "/data/rec.wav", 1024)
	if err := repo.Create(ctx, nil, job); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.FindByID(ctx, nil, job.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != model.AudioJobStatusProcessing || got.StructuredData != nil {
		t.Fatalf("unexpected fresh job: %+v", got)
	}

	rec := &model.StructuredRecord{Name: model.StrPtr("Багира")}
	spans := []model.EntitySpan{{Type: model.EntityPerson, Text: "Багира", Start: 0, End: 6}}
	if err := job.Complete("Багира спит", spans, rec, 2*time.Second); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := repo.Finish(ctx, nil, job); err != nil {
		t.Fatalf("finish: %v", err)
	}

	got, err = repo.FindByID(ctx, nil, job.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != model.AudioJobStatusCompleted || got.Transcription != "Багира спит" {
		t.Errorf("unexpected finished job: %+v", got)
	}
	if got.StructuredData == nil || model.Deref(got.StructuredData.Name) != "Багира" {
		t.Errorf("structured data not persisted: %+v", got.StructuredData)
	}
	if len(got.Entities) != 1 || got.FinishedAt == nil {
		t.Errorf("entities or finished_at missing: %+v", got)
	}

	// a second terminal write is refused
	dup := *got
	dup.Status = model.AudioJobStatusFailed
	if err := repo.Finish(ctx, nil, &dup); !errors.Is(err, domain.ErrJobAlreadyFinished) {
		t.Errorf("expected ErrJobAlreadyFinished, got %v", err)
	}
}

func TestAudioJobRepo_FailStale(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := NewAudioJobRepo(testPool)

	old, _ := model.NewAudioJob("old.wav", "/data/old.wav", 1)
	old.CreatedAt = time.Now().Add(-time.Hour)
	old.UpdatedAt = old.CreatedAt
	fresh, _ := model.NewAudioJob("new.wav", "/data/new.wav", 1)
	for _, j := range []*model.AudioJob{old, fresh} {
		if err := repo.Create(ctx, nil, j); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	ids, err := repo.FailStale(ctx, nil, time.Now().Add(-10*time.Minute), "processing deadline exceeded")
	if err != nil {
		t.Fatalf("fail stale: %v", err)
	}
	if len(ids) != 1 || ids[0] != old.ID {
		t.Fatalf("expected only %s to be reaped, got %v", old.ID, ids)
	}
	got, _ := repo.FindByID(ctx, nil, old.ID)
	if got.Status != model.AudioJobStatusFailed || got.ErrorDetail == "" {
		t.Errorf("reaped job not failed: %+v", got)
	}
	got, _ = repo.FindByID(ctx, nil, fresh.ID)
	if got.Status != model.AudioJobStatusProcessing {
		t.Errorf("fresh job should keep processing, got %s", got.Status)
	}
}

func TestFactsRepos_DailyWindowAndLatest(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	animals := NewAnimalRepo(testPool)
	measurements := NewMeasurementRepo(testPool)
	feedings := NewFeedingRepo(testPool)
	tm := NewTxManager(testPool)

	a := model.NewAnimal("Шерхан", "Тигр")
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := animals.UpsertByNameSpecies(ctx, tx, a); err != nil {
			return err
		}
		for _, ts := range []time.Time{day.Add(-time.Minute), day.Add(time.Hour), day.Add(23 * time.Hour)} {
			if err := measurements.Create(ctx, tx, &model.Measurement{AnimalID: a.ID, Weight: model.FloatPtr(200), Timestamp: ts}); err != nil {
				return err
			}
		}
		return feedings.Create(ctx, tx, &model.Feeding{AnimalID: a.ID, FoodType: "мясо", Quantity: model.FloatPtr(5), Timestamp: day.Add(2 * time.Hour)})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	ms, err := measurements.ListBetween(ctx, nil, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("list measurements: %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("expected 2 measurements inside the day, got %d", len(ms))
	}
	if ms[0].AnimalName != "Шерхан" {
		t.Errorf("animal name not joined: %+v", ms[0])
	}

	latest, err := measurements.LatestByAnimal(ctx, nil, a.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !latest.Timestamp.Equal(day.Add(23 * time.Hour)) {
		t.Errorf("unexpected latest measurement at %v", latest.Timestamp)
	}

	fs, err := feedings.ListBetween(ctx, nil, day, day.Add(24*time.Hour))
	if err != nil || len(fs) != 1 || fs[0].FoodType != "мясо" {
		t.Fatalf("unexpected feedings %v, err %v", fs, err)
	}

	if _, err := feedings.LatestByAnimal(ctx, nil, 12345); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTxManager_RollbackOnError(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	animals := NewAnimalRepo(testPool)
	tm := NewTxManager(testPool)

	boom := errors.New("boom")
	err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := animals.UpsertByNameSpecies(ctx, tx, model.NewAnimal("Каа", "Питон")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	all, _ := animals.List(ctx, nil)
	if len(all) != 0 {
		t.Errorf("rolled back insert is visible: %v", all)
	}
}

func TestSeedAndEntityConfigs(t *testing.T) {
	cleanup(t)
	ctx := context.Background()

	if err := Seed(ctx, testPool); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// seeding twice must not duplicate rows
	if err := Seed(ctx, testPool); err != nil {
		t.Fatalf("seed again: %v", err)
	}

	animals, _ := NewAnimalRepo(testPool).List(ctx, nil)
	if len(animals) != len(DefaultAnimals) {
		t.Errorf("expected %d animals, got %d", len(DefaultAnimals), len(animals))
	}

	repo := NewEntityConfigRepo(testPool)
	cfgs, err := repo.List(ctx, nil)
	if err != nil {
		t.Fatalf("list configs: %v", err)
	}
	if len(cfgs) != len(model.KnownEntityTypes) {
		t.Fatalf("expected %d configs, got %d", len(model.KnownEntityTypes), len(cfgs))
	}
	if cfgs[0].EntityType != model.EntityAnimalSpecies || cfgs[0].Priority != 1 {
		t.Errorf("unexpected first config %+v", cfgs[0])
	}

	off, _ := model.NewEntityConfig(model.EntityPerson, false, 3)
	if err := repo.Upsert(ctx, nil, off); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	cfgs, _ = repo.List(ctx, nil)
	active := model.ActiveTypes(cfgs)
	for _, typ := range active {
		if typ == model.EntityPerson {
			t.Error("person should be inactive after upsert")
		}
	}
}
