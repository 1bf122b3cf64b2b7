// Package migrations holds the schema as ordered SQL files and applies the
// pending ones through database/sql.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/lib/pq"
)

//go:embed sql/*.sql
var files embed.FS

// Table records applied migrations.
const Table = "schema_migrations"

// Migration is one schema step.
type Migration struct {
	Version string
	SQL     string
}

// Load returns the embedded migrations ordered by version.
func Load() ([]Migration, error) {
	return load(files, "sql")
}

func load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		body, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Version: strings.TrimSuffix(e.Name(), ".sql"), SQL: string(body)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Apply runs every migration not yet recorded, each in its own transaction,
// and returns the versions it applied.
func Apply(ctx context.Context, db *sql.DB, all []Migration) ([]string, error) {
	table := pq.QuoteIdentifier(Table)
	if _, err := db.ExecContext(ctx, fmt.Sprintf(
		`create table if not exists %s (version text primary key, applied_at timestamptz not null default now())`, table)); err != nil {
		return nil, fmt.Errorf("create %s: %w", Table, err)
	}

	applied := map[string]bool{}
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`select version from %s`, table))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", Table, err)
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return nil, err
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var done []string
	for _, m := range Pending(all, applied) {
		if err := applyOne(ctx, db, table, m); err != nil {
			return done, err
		}
		done = append(done, m.Version)
	}
	return done, nil
}

// Pending filters out the versions already applied, preserving order.
func Pending(all []Migration, applied map[string]bool) []Migration {
	var out []Migration
	for _, m := range all {
		if !applied[m.Version] {
			out = append(out, m)
		}
	}
	return out
}

func applyOne(ctx context.Context, db *sql.DB, table string, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %s: %w", m.Version, describe(err))
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`insert into %s (version) values ($1)`, table), m.Version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", m.Version, err)
	}
	return tx.Commit()
}

// describe adds the server-side detail lib/pq attaches to errors.
func describe(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		return fmt.Errorf("%w (code %s, detail %q, position %s)", err, pqErr.Code, pqErr.Detail, pqErr.Position)
	}
	return err
}
