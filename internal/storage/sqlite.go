package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/palemoky/paint-n-pass/internal/game/state"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// SQLiteStore 单文件 SQLite 存储
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore 打开 path 并按需建表
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite 本身串行写
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create games table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (r *SQLiteStore) Get(ctx context.Context, gameID string) (*state.GameState, error) {
	rec, err := r.Record(ctx, gameID)
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.Decode()
}

func (r *SQLiteStore) Record(ctx context.Context, gameID string) (*GameRecord, error) {
	q := `SELECT id, state, updated_at FROM games WHERE id = ?;`
	var rec GameRecord
	err := r.db.QueryRowContext(ctx, q, gameID).Scan(&rec.ID, &rec.State, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query game %s: %w", gameID, err)
	}
	return &rec, nil
}

func (r *SQLiteStore) Upsert(ctx context.Context, gameID string, s *state.GameState) error {
	rec, err := newRecord(gameID, s)
	if err != nil {
		return err
	}
	q := `
	INSERT OR REPLACE INTO games (id, state, updated_at)
	VALUES (?, ?, ?);
	`
	if _, err := r.db.ExecContext(ctx, q, rec.ID, rec.State, rec.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert game %s: %w", gameID, err)
	}
	return nil
}

func (r *SQLiteStore) Close() error {
	return r.db.Close()
}
