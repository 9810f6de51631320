package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"zoo-assistant/internal/assembly"
	"zoo-assistant/internal/config"
	"zoo-assistant/internal/domain/ports/adapter"
	"zoo-assistant/internal/extraction"
	"zoo-assistant/internal/infra/adapters/telegram"
	"zoo-assistant/internal/infra/adapters/transcribe"
	"zoo-assistant/internal/infra/api"
	"zoo-assistant/internal/infra/audio"
	pg "zoo-assistant/internal/infra/db/postgres"
	"zoo-assistant/internal/infra/i18n"
	"zoo-assistant/internal/infra/logging"
	"zoo-assistant/internal/infra/metrics"
	red "zoo-assistant/internal/infra/redis"
	"zoo-assistant/internal/infra/sched"
	"zoo-assistant/internal/infra/storage"
	"zoo-assistant/internal/infra/worker"
	"zoo-assistant/internal/usecase"
)

func buildServeCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the job workers and the stale job reaper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(flags.configPath, flags.dev)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second, logger)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()

	// ---- Repositories ----
	jobs := pg.NewAudioJobRepoCacheDecorator(pg.NewAudioJobRepo(pool), redisClient, cfg.Redis.TTL)
	configs := pg.NewEntityConfigRepoCacheDecorator(pg.NewEntityConfigRepo(pool), redisClient, cfg.Redis.TTL)
	animals := pg.NewAnimalRepo(pool)
	observations := pg.NewObservationRepo(pool)
	measurements := pg.NewMeasurementRepo(pool)
	feedings := pg.NewFeedingRepo(pool)

	// ---- Pipeline adapters ----
	transcriber, err := transcribe.New(ctx, cfg.Transcription, logger)
	if err != nil {
		return fmt.Errorf("transcriber: %w", err)
	}
	defer transcribe.Close(transcriber)

	rules, err := extraction.LoadRules(cfg.Extraction.RulesPath)
	if err != nil {
		return fmt.Errorf("extraction rules: %w", err)
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}
	messages, err := i18n.New(cfg.Notify.Language)
	if err != nil {
		return fmt.Errorf("notify.language: %w", err)
	}

	store, err := storage.NewUploadStore(cfg.Audio.UploadDir, cfg.Audio.MaxUploadBytes)
	if err != nil {
		return fmt.Errorf("upload store: %w", err)
	}

	// ---- Workers ----
	// detached from the signal context so a stop drains running jobs first
	workers := worker.NewPool(cfg.Jobs.Workers, logger)
	workers.Start(context.WithoutCancel(ctx))
	defer workers.Stop(cfg.Jobs.ShutdownGrace)

	processor := worker.NewAudioJobProcessor(
		worker.Repos{
			Jobs:          jobs,
			Animals:       animals,
			Observations:  observations,
			Measurements:  measurements,
			Feedings:      feedings,
			EntityConfigs: configs,
		},
		pg.NewTxManager(pool),
		red.NewLocker(redisClient),
		workers,
		audio.NewConverter(cfg.Audio.FFmpegPath),
		transcriber,
		extraction.NewRuleExtractor(rules),
		assembly.New(),
		notifier,
		worker.ProcessorConfig{
			MaxUploadBytes:   cfg.Audio.MaxUploadBytes,
			AllowedMimeTypes: cfg.Audio.AllowedMimeTypes,
			ExtractTimeout:   cfg.Extraction.Timeout,
			LockTTL:          cfg.Jobs.LockTTL,
			TempDir:          store.Dir(),
			Messages:         messages,
		},
		logger,
	)

	reaper := sched.NewStaleJobReaper(jobs, cfg.Jobs.ReapInterval, cfg.Jobs.StaleAfter, logger)
	go func() {
		if err := reaper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("stale job reaper stopped")
		}
	}()

	// ---- Use cases ----
	audioUC := usecase.NewAudioUseCase(jobs, store, processor, logger)
	animalUC := usecase.NewAnimalUseCase(animals, observations, measurements, feedings, logger)
	reportUC := usecase.NewReportUseCase(observations, measurements, feedings, logger)
	configUC := usecase.NewEntityConfigUseCase(configs, logger)

	// ---- HTTP ----
	srv := api.NewServer(audioUC, animalUC, reportUC, configUC, red.NewRateLimiter(redisClient), pool, api.Options{
		MaxUploadBytes:   cfg.Audio.MaxUploadBytes,
		UploadsPerMinute: cfg.RateLimit.UploadsPerMinute,
		RequestTimeout:   cfg.HTTP.RequestTimeout,
	}, logger)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", httpSrv.Addr).Str("transcriber", transcriber.Name()).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	logger.Info().Msg("bye")
	return nil
}

func openDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return pool, nil
}

func newNotifier(cfg *config.Config, logger *zerolog.Logger) (adapter.Notifier, error) {
	if cfg.Notify.TelegramToken == "" {
		return telegram.NewNoopNotifier(logger), nil
	}
	n, err := telegram.NewBotNotifier(&cfg.Notify)
	if err != nil {
		return nil, fmt.Errorf("telegram notifier: %w", err)
	}
	return n, nil
}
