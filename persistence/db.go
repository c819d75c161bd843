// Package persistence opens the bun database for the configured driver and
// applies the embedded schema migrations.
//
// Supported drivers:
//   - sqlite: sqliteshim, a file named after DB_NAME unless DB_DSN is set
//   - postgres: pgx through database/sql
//   - mysql: go-sql-driver/mysql
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/goliatone/go-boards/auth"
	"github.com/goliatone/go-boards/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

const pingTimeout = 5 * time.Second

// Open connects to the database described by cfg and verifies the
// connection with a ping.
func Open(ctx context.Context, cfg config.DBConfig, logger auth.Logger) (*bun.DB, error) {
	logger = auth.ResolveLogger("persistence", nil, logger)

	sqldb, err := openSQL(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	var db *bun.DB
	switch cfg.Driver {
	case DriverPostgres:
		db = bun.NewDB(sqldb, pgdialect.New())
	case DriverMySQL:
		db = bun.NewDB(sqldb, mysqldialect.New())
	default:
		// sqlite allows a single writer
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite || cfg.Driver == "" {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	}

	logger.Info("database connected", "driver", driverName(cfg.Driver), "name", cfg.Name)
	return db, nil
}

func openSQL(cfg config.DBConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case DriverPostgres:
		pgcfg, err := pgx.ParseConfig(postgresDSN(cfg))
		if err != nil {
			return nil, fmt.Errorf("parse postgres config: %w", err)
		}
		return stdlib.OpenDB(*pgcfg), nil

	case DriverMySQL:
		mycfg, err := mysqlConfig(cfg)
		if err != nil {
			return nil, err
		}
		connector, err := mysql.NewConnector(mycfg)
		if err != nil {
			return nil, fmt.Errorf("mysql connector: %w", err)
		}
		return sql.OpenDB(connector), nil

	case DriverSQLite, "":
		sqldb, err := sql.Open(sqliteshim.ShimName, sqliteDSN(cfg))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return sqldb, nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func sqliteDSN(cfg config.DBConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return fmt.Sprintf("file:%s.db?cache=shared", cfg.Name)
}

func postgresDSN(cfg config.DBConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, port, cfg.User, cfg.Password, cfg.Name)
}

func mysqlConfig(cfg config.DBConfig) (*mysql.Config, error) {
	if cfg.DSN != "" {
		mycfg, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		mycfg.ParseTime = true
		mycfg.ClientFoundRows = true
		return mycfg, nil
	}

	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mycfg := mysql.NewConfig()
	mycfg.Net = "tcp"
	mycfg.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mycfg.User = cfg.User
	mycfg.Passwd = cfg.Password
	mycfg.DBName = cfg.Name
	mycfg.ParseTime = true
	// affected rows must count matched rows so no-op updates are not
	// reported as missing records
	mycfg.ClientFoundRows = true
	return mycfg, nil
}

func driverName(driver string) string {
	if driver == "" {
		return DriverSQLite
	}
	return driver
}
