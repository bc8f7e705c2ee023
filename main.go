package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/postbox/internal/api"
	"github.com/debemdeboas/postbox/internal/config"
	"github.com/debemdeboas/postbox/internal/db"
	"github.com/debemdeboas/postbox/internal/logger"
	"github.com/debemdeboas/postbox/internal/repository"
)

const rateLimitSweepInterval = time.Minute

func main() {
	envErr := godotenv.Load()

	// Bootstrap logger until the configured one is available.
	l := logger.New("info", logger.FormatConsole)
	if envErr != nil {
		l.Debug().Err(envErr).Msg("No .env file loaded")
	}

	config.SetLogger(l)
	configPath := os.Getenv(config.EnvConfigPath)
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}
	if err := config.LoadConfig(configPath); err != nil {
		l.Fatal().Err(err).Str("path", configPath).Msg(config.ErrLoadConfig)
	}
	cfg := config.AppConfig

	l = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	setLoggers(l)

	if cfg.Debug.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			l.Error().Err(err).Msg(config.ErrStartGops)
		} else {
			defer agent.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.Open(ctx, cfg.Store, repository.S3Credentials{
		AccessKeyID:     os.Getenv(config.EnvS3AccessKeyID),
		SecretAccessKey: os.Getenv(config.EnvS3SecretAccessKey),
	})
	if err != nil {
		l.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg(config.ErrOpenStore)
	}
	defer repo.Close()

	if err := serve(ctx, l, cfg, repo); err != nil {
		l.Error().Err(err).Msg(config.ErrServerFailed)
		repo.Close()
		os.Exit(1)
	}
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l.With().Str("component", "config").Logger())
	db.SetLogger(l.With().Str("component", "db").Logger())
	repository.SetLogger(l.With().Str("component", "repository").Logger())
	api.SetLogger(l.With().Str("component", "api").Logger())
}

func newServer(cfg *config.Config, repo repository.PostRepository) (*http.Server, *api.RateLimiter) {
	limiter := api.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)

	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(api.NewHandler(repo, cfg.Server.MaxBodyBytes), limiter),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}, limiter
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests for at most cfg.Server.ShutdownTimeout.
func serve(ctx context.Context, l zerolog.Logger, cfg *config.Config, repo repository.PostRepository) error {
	srv, limiter := newServer(cfg, repo)
	if limiter != nil {
		go limiter.Run(ctx, rateLimitSweepInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info().
			Str("addr", srv.Addr).
			Str("store", cfg.Store.Driver).
			Msg("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	l.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
