package repository

import (
	"context"
	"time"

	"zoo-assistant/internal/domain/model"
)

type AudioJobRepository interface {
	Create(ctx context.Context, tx Tx, job *model.AudioJob) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.AudioJob, error)
	// Finish writes the terminal state of a job. It only succeeds while the
	// stored row is still processing and returns domain.ErrJobAlreadyFinished otherwise.
	Finish(ctx context.Context, tx Tx, job *model.AudioJob) error
	// MarkStarted restarts the stale clock of a processing job when a worker
	// picks it up. A finished job yields domain.ErrJobAlreadyFinished.
	MarkStarted(ctx context.Context, tx Tx, id string) error
	ListRecent(ctx context.Context, tx Tx, limit, offset int) ([]*model.AudioJob, error)
	// FailStale marks jobs processing since before olderThan as failed and returns their ids.
	FailStale(ctx context.Context, tx Tx, olderThan time.Time, detail string) ([]string, error)
}
