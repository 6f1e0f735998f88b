package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dcgen/internal/adapter/repo"
	"dcgen/internal/generate"
	"dcgen/internal/genjob"
	"dcgen/internal/http/handlers"
	httpapi "dcgen/internal/http/httpapi"
	"dcgen/internal/infra"
	"dcgen/internal/infra/geoip"
	"dcgen/internal/infra/google"
	"dcgen/internal/media"
	"dcgen/internal/middleware"
	"dcgen/internal/quota"
	"dcgen/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	users := repo.NewUserRepository(runner)
	usage := repo.NewUsageRepository(runner)
	settings := repo.NewSettingsRepository(runner)
	mediaRepo := repo.NewMediaRepository(runner)

	var store storage.Store
	if cfg.S3Enabled() {
		store, err = storage.NewS3Store(storage.S3Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3UsePathStyle,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure s3 store")
		}
		logger.Info().Str("bucket", cfg.S3Bucket).Msg("media re-hosting via s3")
	} else {
		store, err = storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure local storage")
		}
		logger.Info().Str("path", cfg.StoragePath).Msg("media re-hosting via local storage")
	}

	gate := quota.NewGate(users, settings, usage, logger)
	jobs := genjob.NewClient(genjob.Options{Logger: &logger})
	pipeline := &genjob.Pipeline{
		Client:      jobs,
		Interval:    cfg.PollInterval,
		MaxWait:     cfg.PollMaxWait,
		MaxAttempts: cfg.PollMaxAttempts,
	}
	mediaSvc := media.NewService(media.Options{
		Repo:   mediaRepo,
		Store:  store,
		TTL:    cfg.MediaTTL,
		Logger: &logger,
	})
	generateSvc := generate.NewService(gate, pipeline, mediaSvc, &logger)

	app := &handlers.App{
		Cfg:            cfg,
		Logger:         logger,
		Users:          users,
		Usage:          usage,
		Settings:       settings,
		Gate:           gate,
		Generate:       generateSvc,
		Media:          mediaSvc,
		Jobs:           jobs,
		Store:          store,
		GoogleVerifier: google.NewVerifier(cfg.GoogleIssuer, cfg.GoogleClientID),
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		lookup = resolver.CountryCode
	}

	router := httpapi.NewRouter(app, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("api listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
