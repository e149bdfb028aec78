// Package db opens the server database and applies the embedded goose
// migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mediaplanhq/campaignstore/internal/server/migrations"
)

// Open connects to PostgreSQL via the pgx stdlib driver and verifies the
// connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return conn, nil
}

// RunMigrations applies the embedded migrations. The dialect is explicit so
// the same schema can be applied to the in-memory SQLite databases used in
// tests ("sqlite3") and to PostgreSQL in production ("postgres").
func RunMigrations(ctx context.Context, conn *sql.DB, dialect string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, conn, ".")
}
