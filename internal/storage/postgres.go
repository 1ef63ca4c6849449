package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palemoky/paint-n-pass/internal/game/state"
	"github.com/palemoky/paint-n-pass/internal/logger"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL
);`

// PostgresStore 基于 pgx 连接池的 Postgres 存储
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore 连接 dsn 并按需建表，调用方负责 Close
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create pool: %w", err)
	}

	var username, database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to query database: %w", err)
	}
	logger.Info("Connected to %s as %s", database, username)

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create games table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (r *PostgresStore) Get(ctx context.Context, gameID string) (*state.GameState, error) {
	rec, err := r.Record(ctx, gameID)
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.Decode()
}

func (r *PostgresStore) Record(ctx context.Context, gameID string) (*GameRecord, error) {
	q := `SELECT id, state, updated_at FROM games WHERE id = $1;`
	var rec GameRecord
	err := r.pool.QueryRow(ctx, q, gameID).Scan(&rec.ID, &rec.State, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query game %s: %w", gameID, err)
	}
	return &rec, nil
}

func (r *PostgresStore) Upsert(ctx context.Context, gameID string, s *state.GameState) error {
	rec, err := newRecord(gameID, s)
	if err != nil {
		return err
	}
	q := `
	INSERT INTO games (id, state, updated_at) VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET state = $2, updated_at = $3;
	`
	if _, err := r.pool.Exec(ctx, q, rec.ID, rec.State, rec.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert game %s: %w", gameID, err)
	}
	return nil
}

func (r *PostgresStore) Close() error {
	r.pool.Close()
	return nil
}
