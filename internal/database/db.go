package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Pool — подмножество методов pgxpool.Pool, используемое хранилищем документов.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type DBInterface interface {
	Pool() Pool
	Ping(ctx context.Context) error
	Close()
}

// DB представляет подключение к БД
type DB struct {
	pool   *pgxpool.Pool
	Logger *zap.Logger
}

// NewDB создает новое подключение к БД и прогоняет миграции.
func NewDB(ctx context.Context, dsn, migrationsPath string, logger *zap.Logger) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is not set")
	}

	if err := runMigrations(dsn, migrationsPath, logger); err != nil {
		return nil, err
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	return &DB{pool: pool, Logger: logger}, nil
}

func runMigrations(dsn, migrationsPath string, logger *zap.Logger) error {
	if migrationsPath == "" {
		return nil
	}

	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("Миграции применены", zap.String("path", migrationsPath))
	return nil
}

// Pool возвращает пул соединений.
func (db *DB) Pool() Pool {
	return db.pool
}

// Ping проверяет соединение с БД
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.pool.Ping(ctx)
}

// Close закрывает соединение с БД
func (db *DB) Close() {
	db.pool.Close()
}
