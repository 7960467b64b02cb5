package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the query surface repositories depend on. *Client satisfies it in
// production; a mock satisfies it in tests.
type DB interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

var (
	_ DB            = (*Client)(nil)
	_ HealthChecker = (*Client)(nil)
)

type Client struct {
	*pgxpool.Pool
}

// NewClient creates a new db client.
func NewClient(pool *pgxpool.Pool) *Client {
	return &Client{pool}
}

func (c *Client) IsHealthy(ctx context.Context) (bool, error) {
	if err := c.Ping(ctx); err != nil {
		return false, fmt.Errorf("ping database: %w", err)
	}
	return true, nil
}
