package pgdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/wanderwise/pgdb"

// ObserveMetrics registers observable gauges reporting total, idle, acquired
// and constructing connection counts for p. A nil mp uses the global
// provider; an empty name is reported as "primary".
func (p *Pool) ObserveMetrics(mp metric.MeterProvider, name string) error {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "primary"
	}
	attrs := metric.WithAttributes(attribute.String("db_pool", name))
	meter := mp.Meter(meterName)

	gauges := []struct {
		name string
		desc string
		read func(*pgxpool.Stat) int32
	}{
		{"wanderwise_db_pool_connections_total", "Total connections (idle + acquired + constructing)", (*pgxpool.Stat).TotalConns},
		{"wanderwise_db_pool_connections_idle", "Idle connections ready for checkout", (*pgxpool.Stat).IdleConns},
		{"wanderwise_db_pool_connections_acquired", "Connections currently acquired by callers", (*pgxpool.Stat).AcquiredConns},
		{"wanderwise_db_pool_connections_constructing", "Connections currently being constructed", (*pgxpool.Stat).ConstructingConns},
	}

	var errs []error
	for _, g := range gauges {
		read := g.read
		_, err := meter.Int64ObservableGauge(g.name,
			metric.WithDescription(g.desc),
			metric.WithUnit("{connection}"),
			metric.WithInt64Callback(func(_ context.Context, observer metric.Int64Observer) error {
				stat := p.Stat()
				if stat == nil {
					return nil
				}
				observer.Observe(int64(read(stat)), attrs)
				return nil
			}),
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("pgdb: register %s: %w", g.name, err))
		}
	}
	return errors.Join(errs...)
}
