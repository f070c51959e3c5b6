package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver          string // postgres | sqlite
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DB is an ent SQL driver over either a pgx pool or a SQLite file.
type DB struct {
	drv     *entsql.Driver
	pool    *pgxpool.Pool
	dialect string
	logger  *slog.Logger
}

// Open connects according to cfg.Driver and wraps the handle for ent.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("db.open", "driver", cfg.Driver)

	switch cfg.Driver {
	case DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case DriverSQLite, "":
		return openSQLite(ctx, cfg, logger)
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported database driver %q", cfg.Driver), common.ErrInvalidInput)
	}
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("db.open.parse_failed", "err", err)
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "invoice-extractor"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("db.open.failed", "err", err)
		return nil, fmt.Errorf("connect: %w", err)
	}

	// Wrap pool as *sql.DB for ent
	sqlDB := stdlib.OpenDBFromPool(pool)
	return &DB{
		drv:     entsql.OpenDB(dialect.Postgres, sqlDB),
		pool:    pool,
		dialect: dialect.Postgres,
		logger:  logger,
	}, nil
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		logger.Error("db.open.failed", "err", err)
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if cfg.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if cfg.MaxConnLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		logger.Error("db.open.failed", "err", err)
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &DB{
		drv:     entsql.OpenDB(dialect.SQLite, sqlDB),
		dialect: dialect.SQLite,
		logger:  logger,
	}, nil
}

// Dialect returns the ent dialect name in use.
func (db *DB) Dialect() string { return db.dialect }

func (db *DB) builder() *entsql.DialectBuilder { return entsql.Dialect(db.dialect) }

// Close closes the database connections gracefully
func (db *DB) Close() error {
	db.logger.Info("db.close")
	err := db.drv.Close()
	if db.pool != nil {
		db.pool.Close()
	}
	return err
}

// HealthCheck pings the database, bounded by timeout when positive.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.drv.DB().PingContext(ctx); err != nil {
		return common.NewAppError("DB_UNAVAILABLE", "ping failed", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	return nil
}

// exec runs a write and reports the affected row count.
func (db *DB) exec(ctx context.Context, query string, args []any) (int64, error) {
	var res sql.Result
	if err := db.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (db *DB) query(ctx context.Context, query string, args []any) (*entsql.Rows, error) {
	rows := &entsql.Rows{}
	if err := db.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}
