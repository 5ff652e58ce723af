package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// ConnectSQLite opens a SQLite-backed bun DB. Used for local development and
// tests; production deployments use Postgres.
func ConnectSQLite(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, strings.TrimPrefix(dsn, "sqlite://"))
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// an in-memory database disappears when the pool opens a second connection
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	return db, nil
}

// Open connects to the store named by dsn, selecting the driver from the URL
// scheme. Anything that is not sqlite is treated as Postgres.
func Open(ctx context.Context, dsn string, timeout time.Duration) (*bun.DB, error) {
	if strings.HasPrefix(dsn, "sqlite://") || strings.HasPrefix(dsn, "file:") {
		return ConnectSQLite(ctx, dsn)
	}
	return Connect(ctx, dsn, timeout)
}
