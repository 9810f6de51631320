package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
	"zoo-assistant/internal/infra/logging"
	"zoo-assistant/internal/infra/metrics"
)

// Compile-time check
var _ AudioUseCase = (*audioUC)(nil)

// AudioUseCase accepts recordings and reports the state of their jobs.
type AudioUseCase interface {
	// Submit stores the upload, creates a processing job and queues it. The
	// returned job may already be failed when the upload was rejected.
	Submit(ctx context.Context, fileName string, r io.Reader) (*model.AudioJob, error)
	GetStatus(ctx context.Context, id string) (*model.AudioJob, error)
	List(ctx context.Context, limit, offset int) ([]*model.AudioJob, error)
}

// UploadStore keeps uploaded bytes until the pipeline has read them.
type UploadStore interface {
	Save(name string, r io.Reader) (path string, n int64, err error)
	Remove(path string) error
}

// JobDispatcher queues a job for asynchronous processing without blocking.
type JobDispatcher interface {
	Dispatch(job *model.AudioJob) error
}

type audioUC struct {
	jobs       repository.AudioJobRepository
	store      UploadStore
	dispatcher JobDispatcher
	log        *zerolog.Logger
}

func NewAudioUseCase(jobs repository.AudioJobRepository, store UploadStore, dispatcher JobDispatcher, logger *zerolog.Logger) *audioUC {
	return &audioUC{
		jobs:       jobs,
		store:      store,
		dispatcher: dispatcher,
		log:        logging.Component(logger, "AudioUC"),
	}
}

func (u *audioUC) Submit(ctx context.Context, fileName string, r io.Reader) (*model.AudioJob, error) {
	defer logging.TraceDuration(u.log, "AudioUC.Submit")()
	start := time.Now()

	path, n, err := u.store.Save(fileName, r)
	if err != nil && !errors.Is(err, domain.ErrUploadTooLarge) {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	rejected := err

	job, err := model.NewAudioJob(fileName, path, n)
	if err != nil {
		_ = u.store.Remove(path)
		return nil, err
	}
	if err := u.jobs.Create(ctx, repository.NoTX, job); err != nil {
		_ = u.store.Remove(path)
		return nil, fmt.Errorf("create job: %w", err)
	}
	log := logging.With(logging.WithJobID(ctx, job.ID), u.log)

	if rejected != nil {
		metrics.IncUploadRejection("too_large")
		u.finishFailed(ctx, job, domain.NewJobError(domain.JobErrorValidation, rejected), start)
		log.Warn().Int64("size", n).Str("file", fileName).Msg("upload rejected")
		return job, nil
	}

	if err := u.dispatcher.Dispatch(job); err != nil {
		metrics.IncUploadRejection("queue_full")
		u.finishFailed(ctx, job, domain.NewJobError(domain.JobErrorInternal, err), start)
		log.Warn().Err(err).Msg("job not queued")
		return job, nil
	}

	log.Info().Str("file", fileName).Int64("size", n).Msg("audio job queued")
	return job, nil
}

// finishFailed records a job that never reached the pipeline.
func (u *audioUC) finishFailed(ctx context.Context, job *model.AudioJob, cause error, start time.Time) {
	if err := job.Fail(cause, time.Since(start)); err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := u.jobs.Finish(wctx, repository.NoTX, job); err != nil {
		u.log.Error().Err(err).Str("job_id", job.ID).Msg("persist rejected job")
	}
	metrics.IncAudioJob(string(job.Status))
	_ = u.store.Remove(job.FilePath)
}

func (u *audioUC) GetStatus(ctx context.Context, id string) (*model.AudioJob, error) {
	defer logging.TraceDuration(u.log, "AudioUC.GetStatus")()
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.jobs.FindByID(ctx, repository.NoTX, id)
}

func (u *audioUC) List(ctx context.Context, limit, offset int) ([]*model.AudioJob, error) {
	defer logging.TraceDuration(u.log, "AudioUC.List")()
	if err := CheckPage(limit, offset); err != nil {
		return nil, err
	}
	return u.jobs.ListRecent(ctx, repository.NoTX, limit, offset)
}
