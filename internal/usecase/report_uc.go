package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/repository"
	"zoo-assistant/internal/infra/export"
	"zoo-assistant/internal/infra/logging"
)

// Compile-time check
var _ ReportUseCase = (*reportUC)(nil)

// ReportUseCase builds per-day summaries of everything recorded.
type ReportUseCase interface {
	// Daily collects the facts of the UTC calendar day containing date.
	Daily(ctx context.Context, date time.Time) (*model.DailyReport, error)
	// ExportDaily renders Daily as an xlsx workbook.
	ExportDaily(ctx context.Context, date time.Time) ([]byte, error)
}

type reportUC struct {
	observations repository.ObservationRepository
	measurements repository.MeasurementRepository
	feedings     repository.FeedingRepository
	log          *zerolog.Logger
}

func NewReportUseCase(
	observations repository.ObservationRepository,
	measurements repository.MeasurementRepository,
	feedings repository.FeedingRepository,
	logger *zerolog.Logger,
) *reportUC {
	return &reportUC{
		observations: observations,
		measurements: measurements,
		feedings:     feedings,
		log:          logging.Component(logger, "ReportUC"),
	}
}

// DayBounds returns [00:00, next 00:00) in UTC for the day of t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

func (u *reportUC) Daily(ctx context.Context, date time.Time) (*model.DailyReport, error) {
	defer logging.TraceDuration(u.log, "ReportUC.Daily")()
	from, to := DayBounds(date)

	obs, err := u.observations.ListBetween(ctx, repository.NoTX, from, to)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	ms, err := u.measurements.ListBetween(ctx, repository.NoTX, from, to)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	fs, err := u.feedings.ListBetween(ctx, repository.NoTX, from, to)
	if err != nil {
		return nil, fmt.Errorf("list feedings: %w", err)
	}

	rep := &model.DailyReport{
		Date:         from,
		Observations: obs,
		Measurements: ms,
		Feedings:     fs,
	}
	if rep.Observations == nil {
		rep.Observations = []*model.Observation{}
	}
	if rep.Measurements == nil {
		rep.Measurements = []*model.Measurement{}
	}
	if rep.Feedings == nil {
		rep.Feedings = []*model.Feeding{}
	}
	return rep, nil
}

func (u *reportUC) ExportDaily(ctx context.Context, date time.Time) ([]byte, error) {
	defer logging.TraceDuration(u.log, "ReportUC.ExportDaily")()
	rep, err := u.Daily(ctx, date)
	if err != nil {
		return nil, err
	}
	buf, err := export.DailyXLSX(rep)
	if err != nil {
		return nil, err
	}
	u.log.Info().
		Time("date", rep.Date).
		Int("observations", len(rep.Observations)).
		Int("measurements", len(rep.Measurements)).
		Int("feedings", len(rep.Feedings)).
		Msg("daily report exported")
	return buf.Bytes(), nil
}
