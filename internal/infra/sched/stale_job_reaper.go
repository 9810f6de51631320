package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"zoo-assistant/internal/domain/ports/repository"
	"zoo-assistant/internal/infra/metrics"
)

const staleJobDetail = "processing timed out"

// StaleJobReaper fails jobs stuck in processing, e.g. after a crash or a
// dropped queue on shutdown, so that every job reaches a terminal state.
type StaleJobReaper struct {
	jobs       repository.AudioJobRepository
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how long a job may stay processing
	log        *zerolog.Logger
}

func NewStaleJobReaper(jobs repository.AudioJobRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *StaleJobReaper {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 15 * time.Minute
	}
	l := logger.With().Str("component", "StaleJobReaper").Logger()
	return &StaleJobReaper{jobs: jobs, interval: interval, staleAfter: staleAfter, log: &l}
}

// Run reaps once immediately, then on every tick until ctx is done.
func (w *StaleJobReaper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("stale_after", w.staleAfter).Msg("started")
	w.Tick(ctx)

	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopped")
			return ctx.Err()
		case <-t.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs a single scan and returns the ids it failed.
func (w *StaleJobReaper) Tick(ctx context.Context) []string {
	cutoff := time.Now().UTC().Add(-w.staleAfter)
	ids, err := w.jobs.FailStale(ctx, repository.NoTX, cutoff, staleJobDetail)
	if err != nil {
		w.log.Error().Err(err).Msg("fail stale jobs")
		return nil
	}
	if len(ids) > 0 {
		metrics.AddStaleJobsReaped(len(ids))
		w.log.Warn().Strs("job_ids", ids).Msg("stale jobs marked failed")
	}
	return ids
}
