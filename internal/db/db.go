package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

func Connect(driver, connString string) (*sql.DB, error) {
	db, err := sql.Open(driver, connString)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// one writer; avoids "database is locked" under concurrent handlers
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// Schema returns the DDL for driver. Only the users key differs; timestamps
// are Unix milliseconds so neither driver has to agree on time types.
func Schema(driver string) []string {
	userKey := "INTEGER PRIMARY KEY"
	if driver == DriverPostgres {
		userKey = "BIGSERIAL PRIMARY KEY"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
		id         ` + userKey + `,
		email      TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
		`CREATE TABLE IF NOT EXISTS remote_tasks (
		user_id    BIGINT NOT NULL,
		id         TEXT NOT NULL,
		payload    TEXT NOT NULL,
		version    BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		PRIMARY KEY (user_id, id)
	)`,
		`CREATE INDEX IF NOT EXISTS remote_tasks_user_updated ON remote_tasks (user_id, updated_at)`,
		`CREATE TABLE IF NOT EXISTS analytics_events (
		event_name       TEXT NOT NULL,
		event_time       BIGINT NOT NULL,
		user_id          BIGINT NOT NULL,
		session_id       TEXT,
		platform         TEXT NOT NULL,
		app_version      TEXT NOT NULL,
		device_locale    TEXT,
		source_event_key TEXT UNIQUE,
		properties       TEXT NOT NULL
	)`,
		`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	}
}

func Migrate(db *sql.DB, driver string) error {
	for _, stmt := range Schema(driver) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
