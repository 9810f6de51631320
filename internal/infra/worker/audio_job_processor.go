package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"zoo-assistant/internal/assembly"
	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/adapter"
	"zoo-assistant/internal/domain/ports/repository"
	"zoo-assistant/internal/infra/audio"
	"zoo-assistant/internal/infra/i18n"
	"zoo-assistant/internal/infra/logging"
	"zoo-assistant/internal/infra/metrics"
	red "zoo-assistant/internal/infra/redis"
)

// Converter re-encodes an audio file to 16 kHz mono PCM16 WAV.
type Converter interface {
	ToPCM16(ctx context.Context, src, dir string) (string, error)
}

type ProcessorConfig struct {
	MaxUploadBytes   int64
	AllowedMimeTypes []string
	ExtractTimeout   time.Duration
	LockTTL          time.Duration
	TempDir          string
	// Messages renders alerts; nil means the default locale.
	Messages *i18n.Translator
}

type Repos struct {
	Jobs          repository.AudioJobRepository
	Animals       repository.AnimalRepository
	Observations  repository.ObservationRepository
	Measurements  repository.MeasurementRepository
	Feedings      repository.FeedingRepository
	EntityConfigs repository.EntityConfigRepository
}

// AudioJobProcessor runs the pipeline for one job:
// lock, validate, convert, transcribe, extract, assemble, persist, notify.
type AudioJobProcessor struct {
	repos       Repos
	tm          repository.TransactionManager
	locker      red.Locker
	pool        *Pool
	converter   Converter
	transcriber adapter.Transcriber
	extractor   adapter.EntityExtractor
	assembler   *assembly.Assembler
	notifier    adapter.Notifier
	cfg         ProcessorConfig
	msg         *i18n.Translator
	log         *zerolog.Logger
}

func NewAudioJobProcessor(
	repos Repos,
	tm repository.TransactionManager,
	locker red.Locker,
	pool *Pool,
	converter Converter,
	transcriber adapter.Transcriber,
	extractor adapter.EntityExtractor,
	assembler *assembly.Assembler,
	notifier adapter.Notifier,
	cfg ProcessorConfig,
	logger *zerolog.Logger,
) *AudioJobProcessor {
	msg := cfg.Messages
	if msg == nil {
		msg = i18n.Default()
	}
	return &AudioJobProcessor{
		repos:       repos,
		tm:          tm,
		locker:      locker,
		pool:        pool,
		converter:   converter,
		transcriber: transcriber,
		extractor:   extractor,
		assembler:   assembler,
		notifier:    notifier,
		cfg:         cfg,
		msg:         msg,
		log:         logging.Component(logger, "AudioJobProcessor"),
	}
}

// Dispatch queues the pipeline for job without blocking.
func (p *AudioJobProcessor) Dispatch(job *model.AudioJob) error {
	id := job.ID
	err := p.pool.Submit(func(ctx context.Context) error {
		p.Process(ctx, id)
		return nil
	})
	if errors.Is(err, ErrQueueFull) {
		return domain.ErrQueueFull
	}
	return err
}

// Process runs the pipeline once. Jobs already terminal or locked by another
// worker are skipped.
func (p *AudioJobProcessor) Process(ctx context.Context, jobID string) {
	ctx = logging.WithJobID(ctx, jobID)
	log := logging.With(ctx, p.log)
	metrics.JobStarted()
	defer metrics.JobFinished()

	lockKey := red.JobLockKey(jobID)
	token, err := p.locker.TryLock(ctx, lockKey, p.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrJobLocked) {
			log.Warn().Msg("job is locked by another worker, skipping")
			return
		}
		// left processing; the reaper finishes it
		log.Error().Err(err).Msg("could not take job lock")
		return
	}
	defer func() {
		if err := p.locker.Unlock(context.WithoutCancel(ctx), lockKey, token); err != nil {
			log.Warn().Err(err).Msg("release job lock")
		}
	}()

	job, err := p.repos.Jobs.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		log.Error().Err(err).Msg("load job")
		return
	}
	if job.IsTerminal() {
		log.Debug().Str("status", string(job.Status)).Msg("job already finished, skipping")
		return
	}
	// time spent in the queue does not count toward stale_after
	if err := p.repos.Jobs.MarkStarted(ctx, repository.NoTX, jobID); err != nil {
		if errors.Is(err, domain.ErrJobAlreadyFinished) {
			log.Debug().Msg("job finished while queued, skipping")
			return
		}
		log.Warn().Err(err).Msg("mark job started")
	}

	start := time.Now()
	if err := p.run(ctx, job, start); err != nil {
		p.fail(ctx, job, err, start)
	}

	metrics.IncAudioJob(string(job.Status))
	ev := log.Info()
	if job.Status == model.AudioJobStatusFailed {
		ev = log.Warn().Str("error_kind", string(job.ErrorKind)).Str("error", job.ErrorDetail)
	}
	ev.Str("status", string(job.Status)).
		Dur("duration_ms", time.Since(start)).
		Str("transcription", logging.Preview(job.Transcription, 80)).
		Msg("audio job finished")
	p.notify(ctx, job)
}

func (p *AudioJobProcessor) run(ctx context.Context, job *model.AudioJob, start time.Time) error {
	log := logging.With(ctx, p.log)

	t0 := time.Now()
	mime, err := p.validate(job)
	metrics.ObserveStage("validate", time.Since(t0))
	if err != nil {
		metrics.IncUploadRejection(rejectionReason(err))
		return domain.NewJobError(domain.JobErrorValidation, err)
	}
	job.MimeType = mime

	t0 = time.Now()
	input, cleanup, err := p.prepare(ctx, job)
	metrics.ObserveStage("convert", time.Since(t0))
	if err != nil {
		return domain.NewJobError(domain.JobErrorTranscription, fmt.Errorf("%w: %v", domain.ErrTranscriptionFailed, err))
	}
	defer cleanup()

	// the transcriber carries its own deadline, started once a slot is held
	t0 = time.Now()
	tr, err := p.transcriber.Transcribe(ctx, input)
	metrics.ObserveStage("transcribe", time.Since(t0))
	if err != nil {
		return domain.NewJobError(domain.JobErrorTranscription, fmt.Errorf("%w: %v", domain.ErrTranscriptionFailed, err))
	}
	if tr.AudioDuration > 0 {
		job.AudioDuration = tr.AudioDuration.Seconds()
	}
	text := strings.TrimSpace(tr.Text)
	log.Debug().Str("provider", tr.Provider).Str("text", logging.Preview(text, 120)).Msg("transcribed")

	t0 = time.Now()
	spans := p.extract(ctx, text)
	metrics.ObserveStage("extract", time.Since(t0))

	t0 = time.Now()
	rec := p.assembler.Assemble(spans, text)
	metrics.ObserveStage("assemble", time.Since(t0))

	t0 = time.Now()
	err = p.persist(ctx, job, text, spans, rec, start)
	metrics.ObserveStage("persist", time.Since(t0))
	if err != nil {
		if errors.Is(err, domain.ErrJobAlreadyFinished) {
			// the reaper got there first; its verdict stands
			log.Warn().Msg("job was finished concurrently, results discarded")
			if cur, ferr := p.repos.Jobs.FindByID(ctx, repository.NoTX, job.ID); ferr == nil {
				*job = *cur
			}
			return nil
		}
		job.Transcription = text
		return domain.NewJobError(domain.JobErrorPersistence, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err))
	}
	return nil
}

func (p *AudioJobProcessor) validate(job *model.AudioJob) (string, error) {
	st, err := os.Stat(job.FilePath)
	if err != nil {
		return "", fmt.Errorf("uploaded file unavailable: %w", err)
	}
	if st.Size() == 0 {
		return "", domain.ErrUploadEmpty
	}
	if p.cfg.MaxUploadBytes > 0 && st.Size() > p.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: %d > %d bytes", domain.ErrUploadTooLarge, st.Size(), p.cfg.MaxUploadBytes)
	}
	mime, err := audio.DetectMime(job.FilePath)
	if err != nil {
		return "", err
	}
	if !audio.Allowed(mime, p.cfg.AllowedMimeTypes) {
		return mime, fmt.Errorf("%w: %s", domain.ErrUnsupportedMedia, mime)
	}
	return mime, nil
}

// prepare returns the file to hand to the transcriber, converting it when the
// backend needs PCM and the upload is not already 16 kHz mono PCM16.
func (p *AudioJobProcessor) prepare(ctx context.Context, job *model.AudioJob) (string, func(), error) {
	noop := func() {}
	info, werr := audio.InspectWav(job.FilePath)
	if werr == nil {
		job.AudioDuration = info.Duration.Seconds()
	}
	if !p.transcriber.NeedsPCM() || (werr == nil && info.IsPCM16Mono16k()) {
		return job.FilePath, noop, nil
	}
	out, err := p.converter.ToPCM16(ctx, job.FilePath, p.cfg.TempDir)
	if err != nil {
		return "", noop, err
	}
	if info, err := audio.InspectWav(out); err == nil {
		job.AudioDuration = info.Duration.Seconds()
	}
	return out, func() { _ = os.Remove(out) }, nil
}

// extract never fails the job: errors downgrade to an empty span list.
func (p *AudioJobProcessor) extract(ctx context.Context, text string) []model.EntitySpan {
	log := logging.With(ctx, p.log)
	if text == "" {
		return []model.EntitySpan{}
	}
	active, err := p.activeTypes(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("entity config unavailable, extracting all known types")
		active = model.KnownEntityTypes
	}
	ectx, cancel := withTimeout(ctx, p.cfg.ExtractTimeout)
	defer cancel()
	spans, err := p.extractor.Extract(ectx, text, active)
	if err != nil {
		metrics.IncExtractionFailure()
		log.Error().Err(fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)).Msg("extraction failed, continuing without entities")
		return []model.EntitySpan{}
	}
	return spans
}

// activeTypes reads the entity configuration. An empty table means nothing
// was configured yet, and every known type runs.
func (p *AudioJobProcessor) activeTypes(ctx context.Context) ([]string, error) {
	cfgs, err := p.repos.EntityConfigs.List(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	if len(cfgs) == 0 {
		return model.KnownEntityTypes, nil
	}
	return model.ActiveTypes(cfgs), nil
}

func (p *AudioJobProcessor) persist(ctx context.Context, job *model.AudioJob, text string, spans []model.EntitySpan, rec *model.StructuredRecord, start time.Time) error {
	done := *job
	if err := done.Complete(text, spans, rec, time.Since(start)); err != nil {
		return err
	}
	err := p.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		a := model.NewAnimal(model.Deref(rec.Name), model.Deref(rec.Species))
		a.Age = rec.Measurements.Age
		a.Enclosure = rec.Enclosure
		if err := p.repos.Animals.UpsertByNameSpecies(ctx, tx, a); err != nil {
			return fmt.Errorf("upsert animal: %w", err)
		}

		now := time.Now().UTC()
		obs := &model.Observation{
			AnimalID:      a.ID,
			Behavior:      rec.Behavior,
			HealthStatus:  rec.HealthStatus,
			Temperature:   rec.Environment.Temperature,
			Humidity:      rec.Environment.Humidity,
			Timestamp:     now,
			AudioFile:     job.FileName,
			Transcription: text,
			Notes:         notes(text),
			JobID:         job.ID,
		}
		if err := p.repos.Observations.Create(ctx, tx, obs); err != nil {
			return fmt.Errorf("create observation: %w", err)
		}

		if rec.Measurements.HasAny() {
			m := &model.Measurement{
				AnimalID:    a.ID,
				Weight:      rec.Measurements.Weight,
				Length:      rec.Measurements.Length,
				Height:      rec.Measurements.Height,
				Temperature: rec.Measurements.Temperature,
				Timestamp:   now,
			}
			if err := p.repos.Measurements.Create(ctx, tx, m); err != nil {
				return fmt.Errorf("create measurement: %w", err)
			}
		}

		if rec.Feeding.HasAny() {
			f := &model.Feeding{
				AnimalID:  a.ID,
				FoodType:  model.Deref(rec.Feeding.FoodType),
				Quantity:  rec.Feeding.Quantity,
				Timestamp: now,
			}
			if err := p.repos.Feedings.Create(ctx, tx, f); err != nil {
				return fmt.Errorf("create feeding: %w", err)
			}
		}

		done.AnimalID = &a.ID
		done.ObservationID = &obs.ID
		return p.repos.Jobs.Finish(ctx, tx, &done)
	})
	if err != nil {
		return err
	}
	*job = done
	return nil
}

// fail writes the failed state in its own statement, outside any rolled back transaction.
func (p *AudioJobProcessor) fail(ctx context.Context, job *model.AudioJob, cause error, start time.Time) {
	log := logging.With(ctx, p.log)
	if err := job.Fail(cause, time.Since(start)); err != nil {
		log.Error().Err(err).Msg("cannot fail job")
		return
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := p.repos.Jobs.Finish(wctx, repository.NoTX, job); err != nil {
		log.Error().Err(err).Msg("persist failed job state")
	}
}

func notes(text string) *string {
	if text == "" {
		return nil
	}
	return &text
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUploadTooLarge):
		return "too_large"
	case errors.Is(err, domain.ErrUploadEmpty):
		return "empty"
	case errors.Is(err, domain.ErrUnsupportedMedia):
		return "unsupported_media"
	default:
		return "unreadable"
	}
}
