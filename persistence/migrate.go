package persistence

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/goliatone/go-boards/auth"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
)

//go:embed migrations
var migrationsFS embed.FS

// goose keeps its base FS and dialect in package state
var gooseMu sync.Mutex

// GetMigrationsFS returns the migration files for the given driver
func GetMigrationsFS(driver string) (fs.FS, error) {
	dir, _, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}
	return fs.Sub(migrationsFS, "migrations/"+dir)
}

// Migrate applies all pending migrations for driver
func Migrate(ctx context.Context, db *bun.DB, driver string, logger auth.Logger) error {
	logger = auth.ResolveLogger("migrations", nil, logger)

	fsys, err := GetMigrationsFS(driver)
	if err != nil {
		return err
	}

	_, dialect, _ := gooseDialect(driver)

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{logger})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db.DB)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	logger.Info("database migrated", "driver", driverName(driver), "version", version)
	return nil
}

func gooseDialect(driver string) (dir, dialect string, err error) {
	switch driver {
	case DriverSQLite, "":
		return "sqlite", "sqlite3", nil
	case DriverPostgres:
		return "postgres", "postgres", nil
	case DriverMySQL:
		return "mysql", "mysql", nil
	}
	return "", "", fmt.Errorf("no migrations for driver %q", driver)
}

type gooseLogger struct {
	logger auth.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
