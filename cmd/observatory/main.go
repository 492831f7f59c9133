package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/htc-global/pu-observatory/internal/app"
	"github.com/htc-global/pu-observatory/internal/platform/config"
	db "github.com/htc-global/pu-observatory/internal/storage"
)

func main() {
	mode := flag.String("mode", "", "Service mode (generate, schedule, serve, seed)")
	specID := flag.String("spec", "", "Specification id (for generate mode)")
	force := flag.Bool("force", false, "Bypass the cadence gate (for generate mode)")
	seedFile := flag.String("seed-file", "", "Catalog fixture path (for seed mode)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolOpts := db.PoolOptions{
		MaxConns:          cfg.Database.MaxConnections,
		MinConns:          cfg.Database.MinConnections,
		MaxConnIdleTime:   cfg.Database.MaxConnIdleTime,
		MaxConnLifetime:   cfg.Database.MaxConnLifetime,
		HealthCheckPeriod: cfg.Database.HealthCheckPeriod,
	}

	database, err := db.NewWithOptions(ctx, cfg.Database.PostgresDSN, poolOpts, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	application := app.New(cfg, database, &logger)

	if err := runMode(ctx, application, *mode, *specID, *seedFile, *force); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		if errors.Is(err, app.ErrRunSkipped) {
			logger.Info().Msg("run skipped: cadence quota already consumed")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode, specID, seedFile string, force bool) error {
	switch mode {
	case "generate":
		if specID == "" {
			log.Fatalf("Usage: %s --mode=generate --spec=<specification-id>", os.Args[0])
		}

		// Health endpoints stay up for the duration of the run.
		go func() {
			if err := application.StartHealthServer(ctx); err != nil {
				log.Printf("health check server error: %v", err)
			}
		}()

		return application.GenerateOnce(ctx, specID, force)
	case "schedule":
		if specID == "" {
			log.Fatalf("Usage: %s --mode=schedule --spec=<specification-id>", os.Args[0])
		}

		go func() {
			if err := application.StartHealthServer(ctx); err != nil {
				log.Printf("health check server error: %v", err)
			}
		}()

		return application.RunScheduler(ctx, specID)
	case "serve":
		return application.StartHealthServer(ctx)
	case "seed":
		if seedFile == "" {
			log.Fatalf("Usage: %s --mode=seed --seed-file=<path>", os.Args[0])
		}

		return application.Seed(ctx, seedFile)
	default:
		log.Fatalf("Usage: %s --mode=[generate|schedule|serve|seed]", os.Args[0])

		return nil
	}
}
