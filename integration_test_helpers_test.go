//go:build integration

package pgdb

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	integrationDSNURLPattern   = regexp.MustCompile(`(?i)postgres(?:ql)?://[^\s]+`)
	integrationPasswordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)
)

const (
	integrationUser     = "wanderwise"
	integrationPassword = "wanderwise-secret"
	integrationDatabase = "wanderwise"
)

// startPostgres runs a throwaway PostgreSQL container for t and returns a
// Config pointing at it.
func startPostgres(t *testing.T) Config {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     integrationUser,
				"POSTGRES_PASSWORD": integrationPassword,
				"POSTGRES_DB":       integrationDatabase,
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	mustNoErr(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Errorf("terminate container: %s", sanitizeErrorMessage(err))
		}
	})

	host, err := container.Host(ctx)
	mustNoErr(t, err, "container host")
	mapped, err := container.MappedPort(ctx, "5432/tcp")
	mustNoErr(t, err, "container port")
	port, err := strconv.ParseUint(mapped.Port(), 10, 16)
	mustNoErr(t, err, "parse mapped port")

	return Config{
		Host:     host,
		Port:     uint16(port),
		Database: integrationDatabase,
		User:     integrationUser,
		Password: integrationPassword,
	}
}

func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = integrationDSNURLPattern.ReplaceAllString(msg, "[REDACTED_DSN]")
	msg = integrationPasswordPattern.ReplaceAllString(msg, "password=[REDACTED]")
	return msg
}

func mustNoErr(t *testing.T, err error, operation string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %s", operation, sanitizeErrorMessage(err))
	}
}

func mustIs(t *testing.T, got error, want error, operation string) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Fatalf("%s: got=%s want=%v", operation, sanitizeErrorMessage(got), want)
	}
}
