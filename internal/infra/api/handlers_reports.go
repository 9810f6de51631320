package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/infra/export"
)

const dateLayout = "2006-01-02"

// reportDate parses ?date=YYYY-MM-DD, defaulting to today in UTC.
func reportDate(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return time.Now().UTC(), nil
	}
	d, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidArgument)
	}
	return d, nil
}

func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	day, err := reportDate(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rep, err := s.reports.Daily(r.Context(), day)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dailyReportView(rep))
}

func (s *Server) handleDailyExport(w http.ResponseWriter, r *http.Request) {
	day, err := reportDate(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	b, err := s.reports.ExportDaily(r.Context(), day)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(day)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
