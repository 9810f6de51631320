package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"zoo-assistant/internal/domain"
	"zoo-assistant/internal/infra/metrics"
)

// multipart framing allowance on top of the file itself
const multipartOverhead = 1 << 20

func (s *Server) handleProcessAudio(w http.ResponseWriter, r *http.Request) {
	if s.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+multipartOverhead)
	}
	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart/form-data with a file field")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.uploadError(w, r, err)
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}
		name := part.FileName()
		if name == "" {
			name = "upload"
		}

		job, err := s.audio.Submit(r.Context(), name, part)
		_ = part.Close()
		if err != nil {
			s.uploadError(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, SubmitView{
			ID:       job.ID,
			Status:   string(job.Status),
			FileName: job.FileName,
			Error:    job.ErrorDetail,
		})
		return
	}
	metrics.IncUploadRejection("missing_file")
	writeError(w, http.StatusBadRequest, "missing file field")
}

func (s *Server) uploadError(w http.ResponseWriter, r *http.Request, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		metrics.IncUploadRejection("too_large")
		writeError(w, http.StatusRequestEntityTooLarge, domain.ErrUploadTooLarge.Error())
		return
	}
	s.fail(w, r, err)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.audio.GetStatus(r.Context(), chi.URLParam(r, "job_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobView(job))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	jobs, err := s.audio.List(r.Context(), limit, offset)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, jobView(j))
	}
	writeJSON(w, http.StatusOK, out)
}
