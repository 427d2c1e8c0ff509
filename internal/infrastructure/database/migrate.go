package database

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const migrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// Migration is one forward-only schema change, named <version>_<name>.up.sql
type Migration struct {
	Version string
	Name    string
	SQL     string
}

// AppliedMigration is a row of schema_migrations
type AppliedMigration struct {
	Version   string    `db:"version"`
	AppliedAt time.Time `db:"applied_at"`
}

// LoadMigrations reads every *.up.sql file from fsys sorted by version
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	files, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	migrations := make([]Migration, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, file := range files {
		base := strings.TrimSuffix(path.Base(file), ".up.sql")
		version, name, ok := strings.Cut(base, "_")
		if !ok || version == "" {
			return nil, fmt.Errorf("migration %q: expected <version>_<name>.up.sql", file)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %s used by %q and %q", version, prev, file)
		}
		seen[version] = file

		body, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read migration %q: %w", file, err)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(body)})
	}
	return migrations, nil
}

type Migrator struct {
	db *sqlx.DB
}

func NewMigrator(db *sqlx.DB) *Migrator {
	return &Migrator{db: db}
}

// Applied lists the versions already recorded in schema_migrations
func (m *Migrator) Applied(ctx context.Context) ([]AppliedMigration, error) {
	if _, err := m.db.ExecContext(ctx, migrationsTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var applied []AppliedMigration
	if err := m.db.SelectContext(ctx, &applied,
		`SELECT version, applied_at FROM schema_migrations ORDER BY version`); err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return applied, nil
}

// Up applies every pending migration, each in its own transaction
func (m *Migrator) Up(ctx context.Context, migrations []Migration) ([]string, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}

	var ran []string
	for _, mig := range Pending(migrations, done) {
		if err := m.apply(ctx, mig); err != nil {
			return ran, err
		}
		log.Info().Str("version", mig.Version).Str("name", mig.Name).Msg("[MIGRATE] Applied")
		ran = append(ran, mig.Version)
	}
	return ran, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", mig.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		return fmt.Errorf("apply migration %s_%s: %w", mig.Version, mig.Name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version) VALUES ($1)`, mig.Version); err != nil {
		return fmt.Errorf("record migration %s: %w", mig.Version, err)
	}
	return tx.Commit()
}

// Pending filters out versions already applied, preserving order
func Pending(migrations []Migration, applied map[string]bool) []Migration {
	var pending []Migration
	for _, mig := range migrations {
		if !applied[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending
}
