// Command wanderwise serves the WanderWise tours site and manages its
// database schema.
//
// Usage:
//
//	wanderwise serve [-addr :3000]
//	wanderwise migrate [-timeout 30s] up|down [N]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"github.com/wanderwise/pgdb"
	"github.com/wanderwise/pgdb/internal/telemetry"
	"github.com/wanderwise/pgdb/migrations"
	"github.com/wanderwise/pgdb/tours"
)

const (
	defaultAddr            = ":3000"
	defaultShutdownTimeout = 10 * time.Second
	defaultMigrateTimeout  = 30 * time.Second
	healthCheckTimeout     = 3 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New("command required (serve|migrate)")
	}

	if err := pgdb.LoadDotEnv(); err != nil {
		return err
	}

	switch args[0] {
	case "serve":
		return serve(ctx, args[1:], stderr)
	case "migrate":
		return migrate(ctx, args[1:], stderr)
	default:
		return fmt.Errorf("unknown command %q (expected serve or migrate)", args[0])
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func serve(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		addr     = fs.String("addr", defaultAddr, "HTTP listen address")
		shutdown = fs.Duration("shutdown-timeout", defaultShutdownTimeout, "Maximum time to drain in-flight requests")
		level    slog.Level
	)
	fs.TextVar(&level, "log-level", slog.LevelInfo, "Minimum log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := newLogger(stderr, level)

	cfg, err := pgdb.ConfigFromEnv()
	if err != nil {
		return err
	}

	otelCfg, err := telemetry.ConfigFromEnv()
	if err != nil {
		return err
	}
	mp, shutdownTelemetry, err := telemetry.Init(ctx, otelCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	pool, err := pgdb.New(ctx, cfg, pgdb.WithQueryLogger(logger.With("component", "pgx")))
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.ObserveMetrics(mp, "primary"); err != nil {
		logger.Warn("register pool metrics", "error", err)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newMux(pool, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", *addr, "db_host", cfg.Host, "tls", cfg.RequireTLS)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), *shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func newMux(db pgdb.DB, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	tours.NewHandler(tours.NewStore(db), logger).Register(mux)
	mux.HandleFunc("GET /healthz", healthHandler(db, logger))
	return mux
}

func healthHandler(db pgdb.DB, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		status, err := pgdb.HealthCheck(ctx, db)
		if err != nil {
			logger.WarnContext(ctx, "health check", "error", err.Error())
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(pgdb.HealthStatus{Status: "unavailable", Database: "postgres"})
			return
		}
		_ = json.NewEncoder(w).Encode(status)
	}
}

func migrate(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		timeout = fs.Duration("timeout", defaultMigrateTimeout, "Maximum time to wait for database connectivity")
		quiet   = fs.Bool("quiet", false, "Suppress informational logs")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New("migrate: command required (up|down)")
	}

	var logger *slog.Logger
	if !*quiet {
		logger = newLogger(stderr, slog.LevelInfo)
	}

	cfg, err := pgdb.ConfigFromEnv()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	switch rest[0] {
	case "up":
		return migrations.Up(ctx, cfg.ConnString(), logger)
	case "down":
		steps := 1
		if len(rest) > 1 {
			n, err := strconv.Atoi(rest[1])
			if err != nil {
				return fmt.Errorf("invalid down steps %q: %w", rest[1], err)
			}
			steps = n
		}
		return migrations.Down(ctx, cfg.ConnString(), steps, logger)
	default:
		return fmt.Errorf("unknown migrate command %q (expected up or down)", rest[0])
	}
}
