package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"comanda/backend/internal/store"
)

const schema = `
	CREATE TABLE IF NOT EXISTS collections (
		key        text PRIMARY KEY,
		payload    jsonb NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)
`

// Store keeps one row per collection key.
type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, wrapError("create schema", "collections", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload
		FROM collections
		WHERE key = $1
	`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, wrapError("get", key, err)
	}
	return payload, nil
}

func (s *Store) Put(ctx context.Context, key string, payload []byte) error {
	return s.PutAll(ctx, map[string][]byte{key: payload})
}

// PutAll upserts every payload in one transaction.
func (s *Store) PutAll(ctx context.Context, payloads map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return wrapError("begin", "collections", err)
	}
	defer func() { _ = tx.Rollback() }()

	keys := make([]string, 0, len(payloads))
	for key := range payloads {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO collections (key, payload, updated_at)
			VALUES ($1, $2::jsonb, now())
			ON CONFLICT (key)
			DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
		`, key, string(payloads[key]))
		if err != nil {
			return wrapError("put", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapError("commit", "collections", err)
	}
	return nil
}

func wrapError(op string, key string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("postgres %s %s: %s (SQLSTATE %s): %w", op, key, pgErr.Message, pgErr.Code, err)
	}
	return fmt.Errorf("postgres %s %s: %w", op, key, err)
}
