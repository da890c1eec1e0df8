package db

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"
)

var DB *sql.DB

var driverName = "postgres"

var ErrNotInitialized = errors.New("database not initialized")

// InitDB opens the Postgres connection and makes sure the journal schema
// exists.
// DB is only set once the schema is in place.
func InitDB(databaseURL string) error {
	conn, err := sql.Open(driverName, databaseURL)
	if err != nil {
		return err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return err
	}
	if err := migrate(context.Background(), conn); err != nil {
		conn.Close()
		return err
	}
	DB = conn
	return nil
}

func CloseDB() error {
	if DB == nil {
		return nil
	}
	err := DB.Close()
	DB = nil
	return err
}

func Migrate(ctx context.Context) error {
	if DB == nil {
		return ErrNotInitialized
	}
	return migrate(ctx, DB)
}

func migrate(ctx context.Context, conn *sql.DB) error {
	_, err := conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS transfers (
		tx_hash      TEXT PRIMARY KEY,
		from_address TEXT NOT NULL,
		to_address   TEXT NOT NULL,
		amount       NUMERIC(78, 0) NOT NULL,
		status       TEXT NOT NULL,
		block_number BIGINT NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS transfers_from_idx ON transfers (lower(from_address), created_at DESC)`)
	return err
}
