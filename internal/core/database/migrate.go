package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// NewMigrator 每个方言一套 SQL：migrations/<driver>/*.sql
func NewMigrator(o Opts) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+o.Driver)
	if err != nil {
		return nil, fmt.Errorf("open migrations for %q: %w", o.Driver, err)
	}
	dbURL, err := migrateURL(o)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, fmt.Errorf("init migrator failed: %w", err)
	}
	return m, nil
}

// MigrateUp 已是最新版本不算错误
func MigrateUp(o Opts) error {
	m, err := NewMigrator(o)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up failed: %w", err)
	}
	return nil
}

// MigrateDown 回退 steps 个版本
func MigrateDown(o Opts, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	m, err := NewMigrator(o)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down failed: %w", err)
	}
	return nil
}

func migrateURL(o Opts) (string, error) {
	switch o.Driver {
	case DriverMySQL:
		return "mysql://" + normalizeMySQLDSN(o.DSN, o.Username, o.Password), nil
	case DriverPostgres:
		if !strings.HasPrefix(o.DSN, "postgres://") && !strings.HasPrefix(o.DSN, "postgresql://") {
			return "", fmt.Errorf("postgres migrations need a URL DSN, got %q", maskDSN(o.DSN))
		}
		return o.DSN, nil
	case DriverSQLite:
		path := o.DSN
		if path == "" {
			path = "data/menus.db"
		}
		return "sqlite3://" + path, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, o.Driver)
	}
}
