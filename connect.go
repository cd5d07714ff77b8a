package pgdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
)

// Option configures New for advanced use cases.
type Option func(*connectOptions)

type connectOptions struct {
	pgxConfigModifier func(*pgxpool.Config)
	queryLogger       *slog.Logger
}

// newPoolWithConfig is a package-private seam used by tests to force
// deterministic pool-construction failures without network dependencies.
var newPoolWithConfig = pgxpool.NewWithConfig

// WithPgxConfig allows low-level pgxpool configuration, including pool
// sizing, which Config deliberately does not expose.
//
// The modifier runs after every other option.
func WithPgxConfig(fn func(*pgxpool.Config)) Option {
	return func(o *connectOptions) {
		o.pgxConfigModifier = fn
	}
}

// WithQueryLogger traces pgx activity to logger. SQL text and bind
// arguments are never logged.
func WithQueryLogger(logger *slog.Logger) Option {
	return func(o *connectOptions) {
		o.queryLogger = logger
	}
}

// New creates the connection pool described by cfg.
//
// No connection is opened here; the pool dials on first use and reuses idle
// connections afterwards.
func New(ctx context.Context, cfg Config, opts ...Option) (*Pool, error) {
	pgxCfg, err := cfg.pgxConfig()
	if err != nil {
		return nil, &SafeError{
			msg:   fmt.Sprintf("pgdb: invalid connection config (host=%s)", cfg.Host),
			cause: err,
		}
	}

	var o connectOptions
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}
	if o.queryLogger != nil {
		pgxCfg.ConnConfig.Tracer = newTraceLog(o.queryLogger)
	}
	if o.pgxConfigModifier != nil {
		o.pgxConfigModifier(pgxCfg)
	}

	pool, err := newPoolWithConfig(ctx, pgxCfg)
	if err != nil {
		// SECURITY: cause may include sensitive details; keep outer error safe.
		return nil, &SafeError{
			msg:   fmt.Sprintf("pgdb: failed to create pool (host=%s)", cfg.Host),
			cause: err,
		}
	}

	return newPool(pgxDriver{pool}), nil
}

// pgxConfig translates cfg into a pgxpool configuration. The TLS policy is
// carried by sslmode: require skips certificate verification, verify-full
// checks it, disable leaves TLSConfig nil with no fallbacks.
func (c Config) pgxConfig() (*pgxpool.Config, error) {
	pgxCfg, err := pgxpool.ParseConfig(c.ConnString())
	if err != nil {
		return nil, err
	}

	if c.RequireTLS && pgxCfg.ConnConfig.TLSConfig != nil {
		pgxCfg.ConnConfig.TLSConfig.InsecureSkipVerify = c.InsecureSkipVerify
	}

	return pgxCfg, nil
}

func newTraceLog(logger *slog.Logger) *tracelog.TraceLog {
	return &tracelog.TraceLog{
		Logger: tracelog.LoggerFunc(func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
			attrs := make([]any, 0, 2*len(data)+2)
			attrs = append(attrs, "pgx_level", level.String())
			for k, v := range data {
				if k == "sql" || k == "args" {
					continue
				}
				attrs = append(attrs, k, v)
			}
			logger.Log(ctx, slogLevel(level), msg, attrs...)
		}),
		LogLevel: tracelog.LogLevelInfo,
	}
}

func slogLevel(level tracelog.LogLevel) slog.Level {
	switch level {
	case tracelog.LogLevelError:
		return slog.LevelError
	case tracelog.LogLevelWarn:
		return slog.LevelWarn
	case tracelog.LogLevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
