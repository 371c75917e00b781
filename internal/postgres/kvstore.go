package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS client_state (
		scope      VARCHAR(255) NOT NULL,
		key        VARCHAR(255) NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (scope, key)
	)
`

// querier is the part of *pgxpool.Pool the store uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// KVStore implements storage.Store on a Postgres table.
type KVStore struct {
	pool   *pgxpool.Pool
	db     querier
	config *apt.Config
	logger apt.Logger
}

func NewKVStore(config *apt.Config, logger apt.Logger) *KVStore {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &KVStore{
		config: config,
		logger: logger,
	}
}

// Start opens the pool and initialises the schema.
func (s *KVStore) Start(ctx context.Context) error {
	var dsn string
	if s.config != nil {
		dsn, _ = s.config.GetString("db.postgres.dsn")
	}
	if dsn == "" {
		return fmt.Errorf("db.postgres.dsn not set")
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("invalid postgres dsn: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("cannot connect to Postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("cannot ping Postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return fmt.Errorf("cannot initialise schema: %w", err)
	}

	s.pool = pool
	s.db = pool
	s.logger.Info("Connected to Postgres")
	return nil
}

func (s *KVStore) Stop(ctx context.Context) error {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("Disconnected from Postgres")
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx,
		`SELECT value FROM client_state WHERE scope = $1 AND key = $2`,
		scope, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("cannot get %s/%s: %w", scope, key, err)
	}
	return value, true, nil
}

func (s *KVStore) Set(ctx context.Context, scope, key, value string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO client_state (scope, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (scope, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, scope, key, value)
	if err != nil {
		return fmt.Errorf("cannot save %s/%s: %w", scope, key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, scope, key string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM client_state WHERE scope = $1 AND key = $2`,
		scope, key,
	)
	if err != nil {
		return fmt.Errorf("cannot delete %s/%s: %w", scope, key, err)
	}
	return nil
}

// Reset removes every stored entry for every user.
func (s *KVStore) Reset(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM client_state`)
	if err != nil {
		return 0, fmt.Errorf("cannot reset client state: %w", err)
	}
	return tag.RowsAffected(), nil
}
