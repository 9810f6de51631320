package model

import (
	"time"

	"zoo-assistant/internal/domain"

	"github.com/google/uuid"
)

type AudioJobStatus string

const (
	AudioJobStatusProcessing AudioJobStatus = "processing"
	AudioJobStatusCompleted  AudioJobStatus = "completed"
	AudioJobStatusFailed     AudioJobStatus = "failed"
)

// AudioJob tracks one uploaded recording through the processing pipeline.
// It is created in the processing state and finished exactly once.
type AudioJob struct {
	ID             string              `json:"id"`
	Status         AudioJobStatus      `json:"status"`
	FileName       string              `json:"file_name"`
	FilePath       string              `json:"file_path"`
	MimeType       string              `json:"mime_type,omitempty"`
	SizeBytes      int64               `json:"size_bytes"`
	Transcription  string              `json:"transcription,omitempty"`
	Entities       []EntitySpan        `json:"entities,omitempty"`
	StructuredData *StructuredRecord   `json:"structured_data,omitempty"`
	ErrorKind      domain.JobErrorKind `json:"error_kind,omitempty"`
	ErrorDetail    string              `json:"error,omitempty"`
	ProcessingTime float64             `json:"processing_time,omitempty"`
	AudioDuration  float64             `json:"audio_duration,omitempty"`
	AnimalID       *int64              `json:"animal_id,omitempty"`
	ObservationID  *int64              `json:"observation_id,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	FinishedAt     *time.Time          `json:"finished_at,omitempty"`
}

func NewAudioJob(fileName, filePath string, size int64) (*AudioJob, error) {
	if fileName == "" || filePath == "" {
		return nil, domain.ErrInvalidArgument
	}
	if size < 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now().UTC()
	return &AudioJob{
		ID:        uuid.NewString(),
		Status:    AudioJobStatusProcessing,
		FileName:  fileName,
		FilePath:  filePath,
		SizeBytes: size,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (j *AudioJob) IsTerminal() bool {
	return j.Status == AudioJobStatusCompleted || j.Status == AudioJobStatusFailed
}

// Complete moves a processing job to completed with its results attached.
func (j *AudioJob) Complete(transcription string, spans []EntitySpan, rec *StructuredRecord, elapsed time.Duration) error {
	if j.IsTerminal() {
		return domain.ErrJobAlreadyFinished
	}
	if rec == nil {
		rec = &StructuredRecord{}
	}
	if spans == nil {
		spans = []EntitySpan{}
	}
	j.Status = AudioJobStatusCompleted
	j.Transcription = transcription
	j.Entities = spans
	j.StructuredData = rec
	j.ProcessingTime = elapsed.Seconds()
	j.ErrorKind = ""
	j.ErrorDetail = ""
	j.stamp()
	return nil
}

// Fail moves a processing job to failed. The transcription, when known, is kept.
func (j *AudioJob) Fail(err error, elapsed time.Duration) error {
	if j.IsTerminal() {
		return domain.ErrJobAlreadyFinished
	}
	j.Status = AudioJobStatusFailed
	j.ErrorKind = domain.KindOf(err)
	j.ErrorDetail = err.Error()
	j.ProcessingTime = elapsed.Seconds()
	j.stamp()
	return nil
}

func (j *AudioJob) stamp() {
	now := time.Now().UTC()
	j.UpdatedAt = now
	j.FinishedAt = &now
}
