package pgdb

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

func ExampleHealthCheck() {
	status, err := HealthCheck(context.Background(), &TestDB{})
	if err != nil {
		fmt.Println("unexpected error")
		return
	}
	fmt.Println(status.Status, status.Database)
	// Output: ok postgres
}

func ExampleTestDB() {
	db := &TestDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return NewRow(int64(7), "Alpine Lakes Trek")
		},
	}

	var id int64
	var name string
	err := db.QueryRow(context.Background(), "SELECT id, name FROM tours WHERE slug = $1", "alpine-lakes").Scan(&id, &name)
	if err != nil {
		fmt.Println("unexpected error")
		return
	}

	fmt.Println(id, name)
	// Output: 7 Alpine Lakes Trek
}

func ExamplePool_WithClient() {
	client := &TestClient{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}
	var db DB = &TestDB{WithClientFunc: ClientFunc(client)}

	err := db.WithClient(context.Background(), func(c Client) error {
		tag, err := c.Exec(context.Background(), "UPDATE tours SET price = $1 WHERE id = $2", "1299.00", 7)
		if err != nil {
			return err
		}
		fmt.Println(tag.RowsAffected())
		return nil
	})
	if err != nil {
		fmt.Println("unexpected error")
		return
	}

	fmt.Println("released:", client.Released)
	// Output:
	// 1
	// released: 1
}

func ExampleWithQueryLogger() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	opts := []Option{
		WithQueryLogger(logger),
		WithPgxConfig(func(c *pgxpool.Config) {
			c.MaxConns = 8
		}),
	}

	_ = opts
	fmt.Println("options configured")
	// Output: options configured
}
