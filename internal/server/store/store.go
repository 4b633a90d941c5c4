// Package store opens the account store selected by the server config and
// hands out account repositories bound to it.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store is an open connection to one account backend.
type Store struct {
	db      *sql.DB
	manager repomanager.RepositoryManager
	rdb     redis.UniversalClient
}

// Open connects to the backend named by cfg.StoreBackend. SQL backends are
// migrated before Open returns.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		return openSQL(ctx, "pgx", cfg.DatabaseDSN, repomanager.NewPostgresRepositoryManager())
	case config.StoreBackendSQLite:
		return openSQL(ctx, "sqlite", cfg.DatabaseDSN, repomanager.NewSQLiteRepositoryManager())
	case config.StoreBackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		return NewRedisStore(redis.NewClient(opts)), nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalidConfig, cfg.StoreBackend)
	}
}

func openSQL(ctx context.Context, driver, dsn string, m repomanager.RepositoryManager) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	s := NewSQLStore(db, m)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	return s, nil
}

// NewSQLStore wraps an already open database. Migrations are not run.
func NewSQLStore(db *sql.DB, m repomanager.RepositoryManager) *Store {
	return &Store{db: db, manager: m}
}

func NewRedisStore(rdb redis.UniversalClient) *Store {
	return &Store{rdb: rdb}
}

// Accounts returns a repository over the whole store.
func (s *Store) Accounts() accounts.Repository {
	if s.rdb != nil {
		return accounts.NewRedisRepository(s.rdb)
	}
	return s.manager.Accounts(s.db)
}

// InTx runs fn with a repository whose statements share one transaction on
// SQL backends. Redis repositories are already atomic per operation, so fn
// gets the plain repository there.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repo accounts.Repository) error) error {
	if s.rdb != nil {
		return fn(ctx, s.Accounts())
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, s.manager.Accounts(tx))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	if s.rdb != nil {
		return s.rdb.Ping(ctx).Err()
	}
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.rdb != nil {
		return s.rdb.Close()
	}
	return s.db.Close()
}
