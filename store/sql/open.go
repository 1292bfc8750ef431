package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// DBConfig selects the SQL driver and connection string for Open. It
// satisfies the persistence client's config surface.
type DBConfig struct {
	Driver      string
	DSN         string
	Debug       bool
	PingTimeout time.Duration
}

func (c DBConfig) GetDebug() bool {
	return c.Debug
}

func (c DBConfig) GetDriver() string {
	return c.Driver
}

func (c DBConfig) GetServer() string {
	return c.DSN
}

func (c DBConfig) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 5 * time.Second
	}
	return c.PingTimeout
}

func (c DBConfig) GetOtelIdentifier() string {
	return "go-xero"
}

// Open connects to the configured database and returns a persistence client
// with the bun dialect matching the driver name.
func Open(cfg DBConfig) (*persistence.Client, error) {
	driver := strings.TrimSpace(cfg.Driver)
	if driver == "" {
		return nil, fmt.Errorf("sqlstore: driver is required")
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}

	dialect, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s database: %w", driver, err)
	}

	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	return client, nil
}

func dialectFor(driver string) (schema.Dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "pg":
		return pgdialect.New(), nil
	case "sqlite", "sqlite3":
		return sqlitedialect.New(), nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}
