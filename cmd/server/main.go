package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/facility-export/internal/cache"
	"github.com/JonMunkholm/facility-export/internal/config"
	"github.com/JonMunkholm/facility-export/internal/core"
	_ "github.com/JonMunkholm/facility-export/internal/core/fields" // Register all fields
	"github.com/JonMunkholm/facility-export/internal/logging"
	"github.com/JonMunkholm/facility-export/internal/report"
	"github.com/JonMunkholm/facility-export/internal/repository"
	"github.com/JonMunkholm/facility-export/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"batch_max_concurrent", cfg.Batch.MaxConcurrent,
		"batch_workers", cfg.Batch.Workers,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"progress_mirror", cfg.Redis.URL != "",
	)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		slog.Error("failed to prepare schema", "error", err)
		os.Exit(1)
	}

	// Optional cross-instance progress mirror
	var mirror core.ProgressMirror
	if cfg.Redis.URL != "" {
		rc, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		mirror = cache.NewProgressMirror(rc, cfg.Redis.KeyPrefix, cfg.Redis.ProgressTTL)
		slog.Info("progress mirror enabled", "prefix", cfg.Redis.KeyPrefix)
	}

	catalog := core.DefaultCatalog()
	slog.Info("fields registered",
		"count", catalog.TotalFieldCount(),
		"groups", len(catalog.Groups()),
	)
	for _, group := range catalog.Groups() {
		slog.Debug("field group", "group", group, "fields", len(catalog.ByGroup(group)))
	}

	formatter := core.NewFormatter(core.FormatOptions{
		DatePattern:      cfg.Export.DatePattern,
		EmptyValue:       cfg.Export.EmptyValue,
		TextMaxLength:    cfg.Export.TextMaxLength,
		TruncationMarker: cfg.Export.TruncationMarker,
		CurrencyMax:      cfg.Export.CurrencyMax,
	})
	builder := core.NewBuilder(catalog, formatter, core.BuilderOptions{
		MissingRelationValue: cfg.Export.MissingRelationValue,
	})

	renderer, err := report.New(report.Options{
		FontPath:   cfg.PDF.FontPath,
		FontFamily: cfg.PDF.FontFamily,
	})
	if err != nil {
		slog.Error("failed to create document renderer", "error", err)
		os.Exit(1)
	}
	if cfg.PDF.FontPath == "" {
		slog.Warn("PDF_FONT_PATH not set, Japanese text will not render in PDFs")
	}

	service := core.NewService(
		repository.NewFacilityStore(pool),
		repository.NewFavorites(pool),
		builder,
		core.ServiceOptions{
			MaxFacilities: cfg.Export.MaxFacilities,
			ChunkSize:     cfg.Export.ChunkSize,
			Renderer:      renderer,
			Activity:      core.NewSlogActivityRecorder(slog.Default()),
		},
	)

	batches, err := core.NewBatchRunner(service, core.BatchRunnerOptions{
		WorkDir:   cfg.Batch.WorkDir,
		Workers:   cfg.Batch.Workers,
		Timeout:   cfg.Batch.Timeout,
		Retention: cfg.Batch.Retention,
		Limiter:   core.NewBatchLimiter(cfg.Batch.MaxConcurrent, cfg.Batch.MaxWaitTime),
		Mirror:    mirror,
	})
	if err != nil {
		slog.Error("failed to create batch runner", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(cfg, service, batches)

	// Background jobs stop before the server shuts down
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go batches.StartJanitor(jobCtx, cfg.Batch.JanitorInterval)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if active := batches.ActiveCount(); active > 0 {
			slog.Info("waiting for batches to complete", "active", active)
			if err := batches.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("batches did not complete in time", "error", err)
			} else {
				slog.Info("all batches completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
