// Package migrations resolves the embedded SQL schema into per-dialect
// filesystems and hands them to the caller's migration runner.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	xero "github.com/goliatone/go-xero"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// FilesystemSpec is one dialect's migration filesystem.
type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// RegisterFunc receives one dialect's filesystem, typically forwarding it to
// a persistence client's RegisterSQLMigrations.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

// Filesystems resolves the embedded migration tree into the postgres root
// and its sqlite subdirectory, verifying each carries at least one up
// migration.
func Filesystems() ([]FilesystemSpec, error) {
	base, err := fs.Sub(xero.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve migration root: %w", err)
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	filesystems := []FilesystemSpec{
		{Dialect: DialectPostgres, Path: "data/sql/migrations", FS: base},
		{Dialect: DialectSQLite, Path: "data/sql/migrations/sqlite", FS: sqliteFS},
	}
	for _, fsys := range filesystems {
		matches, globErr := fs.Glob(fsys.FS, "*.up.sql")
		if globErr != nil {
			return nil, fmt.Errorf("migrations: glob %s %s: %w", fsys.Dialect, fsys.Path, globErr)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", fsys.Dialect, fsys.Path)
		}
	}
	return filesystems, nil
}

// Register invokes registerFn once per requested dialect. With no dialects
// given, every embedded dialect registers.
func Register(ctx context.Context, registerFn RegisterFunc, dialects ...string) error {
	if registerFn == nil {
		return fmt.Errorf("migrations: register function is required")
	}
	filesystems, err := Filesystems()
	if err != nil {
		return err
	}

	wanted := map[string]struct{}{}
	for _, dialect := range dialects {
		trimmed := strings.TrimSpace(strings.ToLower(dialect))
		if trimmed != "" {
			wanted[trimmed] = struct{}{}
		}
	}

	for _, fsys := range filesystems {
		if len(wanted) > 0 {
			if _, ok := wanted[fsys.Dialect]; !ok {
				continue
			}
		}
		if err := registerFn(ctx, fsys.Dialect, "go-xero", fsys.FS); err != nil {
			return fmt.Errorf("migrations: register %s (%s): %w", fsys.Dialect, fsys.Path, err)
		}
	}
	return nil
}
