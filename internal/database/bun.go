package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/taskory/taskory-api/internal/models"
)

// Connect opens a Postgres-backed bun DB and verifies connectivity.
// Caller should call db.Close().
func Connect(ctx context.Context, dsn string, timeout time.Duration) (*bun.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// CreateSchema creates the users and todos tables when they do not exist yet.
// The unique index on users.email backs the sync upsert; the foreign key ties
// each todo to its owning user.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*models.Todo)(nil)).
		IfNotExists().
		ForeignKey(`("user_id") REFERENCES "users" ("id")`).
		Exec(ctx); err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}
	return nil
}
