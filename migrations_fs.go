package xero

import (
	"embed"
	"io/fs"
)

// migrationsFS embeds the credential-state schema, with the sqlite dialect
// alternative under data/sql/migrations/sqlite.
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded SQL migration tree.
func GetMigrationsFS() fs.FS {
	return migrationsFS
}
