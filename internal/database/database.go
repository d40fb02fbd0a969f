package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// dialectTurso is the goose dialect for libsql remotes.
const dialectTurso = goose.Dialect("turso")

//go:embed migrations/*.sql
var embedMigrations embed.FS

// InitDB opens the database and migrates it to the latest schema. The returned
// teardown closes the connection.
func InitDB(dbPath string, primaryUrl string, authToken string) (*sql.DB, func(), error) {
	var (
		db      *sql.DB
		dialect goose.Dialect
		err     error
	)
	if primaryUrl == "" {
		log.Info("Initializing local-only SQLite database", "path", dbPath)
		db, err = sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open local database: %w", err)
		}
		// SQLite allows one writer; a single connection also keeps ":memory:" databases intact.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		dialect = goose.DialectSQLite3
	} else {
		log.Info("Initializing Turso database", "url", primaryUrl)
		db, err = sql.Open("libsql", primaryUrl+"?authToken="+authToken)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db %s: %w", primaryUrl, err)
		}
		dialect = dialectTurso
	}

	teardown := func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}

	if err := migrate(context.Background(), db, dialect, false); err != nil {
		teardown()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, teardown, nil
}

// Reset drops every table and re-applies all migrations, leaving an empty ledger.
func Reset(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, dialectOf(db), true)
}

func migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect, reset bool) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(dialect, db, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	if reset {
		results, err := provider.DownTo(ctx, 0)
		if err != nil {
			return fmt.Errorf("failed to roll back migrations: %w", err)
		}
		log.Info("Dropped ledger schema", "migrations", len(results))
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		log.Debug("Applied migration", "source", r.Source.Path, "duration", r.Duration)
	}
	log.Info("Database initialized successfully", "applied", len(results))
	return nil
}

func dialectOf(db *sql.DB) goose.Dialect {
	if _, ok := db.Driver().(*sqlite3.SQLiteDriver); ok {
		return goose.DialectSQLite3
	}
	return dialectTurso
}
