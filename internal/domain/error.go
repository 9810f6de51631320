package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrRateLimited        = errors.New("rate limit exceeded")

	// Audio job pipeline
	ErrJobAlreadyFinished  = errors.New("audio job already finished")
	ErrUploadTooLarge      = errors.New("audio file exceeds size limit")
	ErrUploadEmpty         = errors.New("audio file is empty")
	ErrUnsupportedMedia    = errors.New("unsupported audio media type")
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrExtractionFailed    = errors.New("entity extraction failed")
	ErrPersistenceFailed   = errors.New("failed to persist observation")
	ErrQueueFull           = errors.New("processing queue is full, resubmit later")
	ErrJobLocked           = errors.New("audio job is already being processed")
)

// JobErrorKind classifies why a job failed.
type JobErrorKind string

const (
	JobErrorValidation    JobErrorKind = "validation"
	JobErrorTranscription JobErrorKind = "transcription"
	JobErrorPersistence   JobErrorKind = "persistence"
	JobErrorInternal      JobErrorKind = "internal"
)

// JobError carries the failure kind alongside the cause so the pipeline can
// record a human-readable detail on the job row.
type JobError struct {
	Kind JobErrorKind
	Err  error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

func NewJobError(kind JobErrorKind, err error) *JobError {
	return &JobError{Kind: kind, Err: err}
}

// KindOf returns the JobErrorKind of err, or JobErrorInternal when err carries none.
func KindOf(err error) JobErrorKind {
	var je *JobError
	if errors.As(err, &je) {
		return je.Kind
	}
	return JobErrorInternal
}
