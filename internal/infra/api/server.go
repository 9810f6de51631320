package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"zoo-assistant/internal/infra/logging"
	red "zoo-assistant/internal/infra/redis"
	"zoo-assistant/internal/usecase"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	MaxUploadBytes   int64
	UploadsPerMinute int
	RequestTimeout   time.Duration
}

// Server exposes the audio pipeline, animal registry, reports and entity
// configuration over JSON.
type Server struct {
	audio   usecase.AudioUseCase
	animals usecase.AnimalUseCase
	reports usecase.ReportUseCase
	configs usecase.EntityConfigUseCase
	limiter Limiter
	db      Pinger
	opts    Options
	log     *zerolog.Logger
}

func NewServer(
	audio usecase.AudioUseCase,
	animals usecase.AnimalUseCase,
	reports usecase.ReportUseCase,
	configs usecase.EntityConfigUseCase,
	limiter Limiter,
	db Pinger,
	opts Options,
	logger *zerolog.Logger,
) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Server{
		audio:   audio,
		animals: animals,
		reports: reports,
		configs: configs,
		limiter: limiter,
		db:      db,
		opts:    opts,
		log:     logging.Component(logger, "API"),
	}
}

// Routes builds the full handler tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log), CORS())

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// uploads stream to disk and are not bound by the request timeout
		r.With(RateLimit(s.limiter, "audio_process", s.opts.UploadsPerMinute, time.Minute, red.ClientRouteKey, s.log)).
			Post("/audio/process", s.handleProcessAudio)

		r.Group(func(r chi.Router) {
			r.Use(Timeout(s.opts.RequestTimeout))

			r.Get("/audio/status/{job_id}", s.handleJobStatus)
			r.Get("/audio/jobs", s.handleListJobs)
			r.Get("/transcriptions", s.handleTranscriptions)

			r.Get("/animals", s.handleListAnimals)
			r.Get("/animals/{id}", s.handleGetAnimal)
			r.Get("/animals/{id}/log", s.handleAnimalLog)

			r.Get("/reports/daily", s.handleDailyReport)
			r.Get("/reports/daily/export", s.handleDailyExport)

			r.Get("/entities/config", s.handleListEntityConfigs)
			r.Post("/entities/config", s.handleUpsertEntityConfig)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.logFor(r).Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "up"})
}

func (s *Server) logFor(r *http.Request) *zerolog.Logger {
	return logging.With(r.Context(), s.log)
}
