// Package migrations embeds the goose schema migrations for every supported
// database dialect. Each dialect lives in its own directory.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dialect directories and goose dialect names.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

var gooseDialects = map[string]string{
	Postgres: "pgx",
	SQLite:   "sqlite3",
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Up applies every pending migration for the dialect.
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	gooseDialect, ok := gooseDialects[dialect]
	if !ok {
		return fmt.Errorf("unsupported migration dialect %q", dialect)
	}
	goose.SetBaseFS(FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dialect); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
