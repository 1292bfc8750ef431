package migrations

import (
	"context"
	"io/fs"
	"testing"
)

func TestFilesystemsExposeBothDialects(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("Filesystems() error = %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}

	byDialect := map[string]FilesystemSpec{}
	for _, spec := range filesystems {
		byDialect[spec.Dialect] = spec
	}
	for _, dialect := range []string{DialectPostgres, DialectSQLite} {
		spec, ok := byDialect[dialect]
		if !ok {
			t.Fatalf("missing %s filesystem", dialect)
		}
		matches, globErr := fs.Glob(spec.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("%s filesystem has no up migrations", dialect)
		}
	}
}

func TestRegisterFiltersDialects(t *testing.T) {
	var seen []string
	err := Register(context.Background(), func(_ context.Context, dialect, source string, fsys fs.FS) error {
		if source != "go-xero" {
			t.Fatalf("unexpected source label %q", source)
		}
		if fsys == nil {
			t.Fatalf("nil filesystem for %s", dialect)
		}
		seen = append(seen, dialect)
		return nil
	}, DialectSQLite)
	if err != nil {
		t.Fatalf("Register error = %v", err)
	}
	if len(seen) != 1 || seen[0] != DialectSQLite {
		t.Fatalf("expected sqlite only, got %v", seen)
	}
}

func TestRegisterRequiresCallback(t *testing.T) {
	if err := Register(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil register function")
	}
}
