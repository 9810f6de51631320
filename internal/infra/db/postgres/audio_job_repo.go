package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
)

var _ repository.AudioJobRepository = (*audioJobRepo)(nil)

type audioJobRepo struct {
	pool *pgxpool.Pool
}

func NewAudioJobRepo(pool *pgxpool.Pool) *audioJobRepo {
	return &audioJobRepo{pool: pool}
}

const audioJobColumns = `
id::text, status, file_name, file_path, mime_type, size_bytes,
COALESCE(transcription, ''), COALESCE(entities::text, ''), COALESCE(structured_data::text, ''),
COALESCE(error_kind, ''), COALESCE(error_detail, ''),
COALESCE(processing_time, 0), COALESCE(audio_duration, 0),
animal_id, observation_id, created_at, updated_at, finished_at`

func (r *audioJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.AudioJob) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO audio_jobs (id, status, file_name, file_path, mime_type, size_bytes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := execSQL(ctx, r.pool, tx, q,
		job.ID, string(job.Status), job.FileName, job.FilePath, job.MimeType, job.SizeBytes, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create audio job: %w", err)
	}
	return nil
}

func (r *audioJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.AudioJob, error) {
	q := `SELECT ` + audioJobColumns + ` FROM audio_jobs WHERE id::text = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	job, err := scanAudioJob(row)
	if err != nil {
		return nil, scanErr(err)
	}
	return job, nil
}

// Finish writes the terminal state only while the row is still processing,
// so a reaped job cannot be completed later and vice versa.
func (r *audioJobRepo) Finish(ctx context.Context, tx repository.Tx, job *model.AudioJob) error {
	if job == nil || !job.IsTerminal() {
		return domain.ErrInvalidArgument
	}
	var entities, structured *string
	if job.Entities != nil {
		b, err := json.Marshal(job.Entities)
		if err != nil {
			return fmt.Errorf("marshal entities: %w", err)
		}
		s := string(b)
		entities = &s
	}
	if job.StructuredData != nil {
		b, err := json.Marshal(job.StructuredData)
		if err != nil {
			return fmt.Errorf("marshal structured data: %w", err)
		}
		s := string(b)
		structured = &s
	}
	const q = `
UPDATE audio_jobs SET
  status = $2,
  mime_type = $3,
  transcription = NULLIF($4, ''),
  entities = $5::jsonb,
  structured_data = $6::jsonb,
  error_kind = NULLIF($7, ''),
  error_detail = NULLIF($8, ''),
  processing_time = $9,
  audio_duration = $10,
  animal_id = $11,
  observation_id = $12,
  updated_at = $13,
  finished_at = $14
WHERE id::text = $1 AND status = 'processing';`
	ct, err := execSQL(ctx, r.pool, tx, q,
		job.ID, string(job.Status), job.MimeType, job.Transcription, entities, structured,
		string(job.ErrorKind), job.ErrorDetail, job.ProcessingTime, job.AudioDuration,
		job.AnimalID, job.ObservationID, job.UpdatedAt, job.FinishedAt)
	if err != nil {
		return fmt.Errorf("finish audio job: %w", err)
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.FindByID(ctx, tx, job.ID); err != nil {
			return err
		}
		return domain.ErrJobAlreadyFinished
	}
	return nil
}

func (r *audioJobRepo) MarkStarted(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE audio_jobs SET updated_at = now() WHERE id::text = $1 AND status = 'processing';`
	ct, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return fmt.Errorf("mark audio job started: %w", err)
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.FindByID(ctx, tx, id); err != nil {
			return err
		}
		return domain.ErrJobAlreadyFinished
	}
	return nil
}

func (r *audioJobRepo) ListRecent(ctx context.Context, tx repository.Tx, limit, offset int) ([]*model.AudioJob, error) {
	q := `SELECT ` + audioJobColumns + ` FROM audio_jobs ORDER BY created_at DESC LIMIT $1 OFFSET $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audio jobs: %w", err)
	}
	defer rows.Close()
	out := make([]*model.AudioJob, 0, limit)
	for rows.Next() {
		job, err := scanAudioJob(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (r *audioJobRepo) FailStale(ctx context.Context, tx repository.Tx, olderThan time.Time, detail string) ([]string, error) {
	const q = `
UPDATE audio_jobs SET
  status = 'failed',
  error_kind = $2,
  error_detail = $3,
  processing_time = EXTRACT(EPOCH FROM (now() - created_at)),
  updated_at = now(),
  finished_at = now()
WHERE status = 'processing' AND updated_at < $1
RETURNING id::text;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, string(domain.JobErrorInternal), detail)
	if err != nil {
		return nil, fmt.Errorf("fail stale jobs: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanAudioJob(row pgx.Row) (*model.AudioJob, error) {
	var (
		j                            model.AudioJob
		status, kind                 string
		entitiesJSON, structuredJSON string
	)
	err := row.Scan(
		&j.ID, &status, &j.FileName, &j.FilePath, &j.MimeType, &j.SizeBytes,
		&j.Transcription, &entitiesJSON, &structuredJSON,
		&kind, &j.ErrorDetail,
		&j.ProcessingTime, &j.AudioDuration,
		&j.AnimalID, &j.ObservationID, &j.CreatedAt, &j.UpdatedAt, &j.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	j.Status = model.AudioJobStatus(status)
	j.ErrorKind = domain.JobErrorKind(kind)
	if entitiesJSON != "" {
		if err := json.Unmarshal([]byte(entitiesJSON), &j.Entities); err != nil {
			return nil, fmt.Errorf("decode entities: %w", err)
		}
	}
	if structuredJSON != "" {
		j.StructuredData = &model.StructuredRecord{}
		if err := json.Unmarshal([]byte(structuredJSON), j.StructuredData); err != nil {
			return nil, fmt.Errorf("decode structured data: %w", err)
		}
	}
	return &j, nil
}
