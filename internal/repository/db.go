// Package repository provides GORM-backed persistence for the scheduling
// domain's entities.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBConfig carries the connection tuning for both handles. The defaults in
// config.Load are sized for this service's request model: a generate run
// holds a single connection end-to-end (evaluation within a run is
// sequential), so connection counts scale with concurrent requests rather
// than with any per-run fan-out.
type DBConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	PoolMaxConns        int32
	PoolMinConns        int32
	PoolMaxConnIdleTime time.Duration
}

// DB holds both the GORM connection used for entity CRUD and the pgx pool
// the health check runs on.
type DB struct {
	GORM *gorm.DB
	Pool *pgxpool.Pool
}

// NewDB opens both connections against cfg.URL, applying the tuning from cfg,
// and verifies connectivity before returning.
func NewDB(cfg DBConfig) (*DB, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect with GORM: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}
	poolConfig.MaxConns = cfg.PoolMaxConns
	poolConfig.MinConns = cfg.PoolMinConns
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.PoolMaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Int("max_open_conns", cfg.MaxOpenConns).
		Int32("pool_max_conns", cfg.PoolMaxConns).
		Msg("database connection established")

	return &DB{GORM: gormDB, Pool: pool}, nil
}

// Close closes both connections.
func (db *DB) Close() error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	sqlDB, err := db.GORM.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTransaction runs fn inside a GORM transaction, used by multi-statement
// writes (closing the open AvailabilityVersion and inserting the next one,
// replacing a receiver's visit templates). Appointment inserts do not go
// through it.
func (db *DB) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return db.GORM.WithContext(ctx).Transaction(fn)
}

// Health checks database connectivity over the pgx pool. Test databases are
// constructed without a pool and fall back to pinging the GORM handle.
func (db *DB) Health(ctx context.Context) error {
	if db.Pool != nil {
		return db.Pool.Ping(ctx)
	}
	sqlDB, err := db.GORM.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
