package migrations

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

func TestUp_UnknownDialect(t *testing.T) {
	err := Up(context.Background(), nil, "oracle")
	require.ErrorContains(t, err, `unsupported migration dialect "oracle"`)
}

func TestUp_PassesDialectDirectory(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, Up(context.Background(), nil, Postgres))
	require.Equal(t, "postgres", gotDir)
}

func TestUp_WrapsGooseError(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	boom := errors.New("boom")
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return boom
	}

	err := Up(context.Background(), nil, SQLite)
	require.ErrorIs(t, err, boom)
}

func TestFS_ContainsBothDialects(t *testing.T) {
	for _, dir := range []string{Postgres, SQLite} {
		entries, err := FS.ReadDir(dir)
		require.NoError(t, err)
		require.NotEmpty(t, entries, dir)
	}
}
