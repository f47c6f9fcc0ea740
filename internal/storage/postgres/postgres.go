package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/letsssgooo/pollbot/internal/storage"
)

// Storage хранит курсоры ботов в PostgreSQL.
type Storage struct {
	pool *pgxpool.Pool
}

// NewStorage подключается к базе по dsn.
func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &Storage{pool: pool}, nil
}

// EnsureSchema создаёт таблицу курсоров, если её ещё нет.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS poll_cursors (
		bot_id      BIGINT PRIMARY KEY,
		next_offset BIGINT NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)
	`

	_, err := s.pool.Exec(ctx, query)
	return err
}

// Close закрывает пул соединений.
func (s *Storage) Close() {
	s.pool.Close()
}

// ForBot возвращает CursorStore для бота botID.
func (s *Storage) ForBot(botID int64) *BotCursor {
	return &BotCursor{pool: s.pool, botID: botID}
}

// BotCursor реализует storage.CursorStore поверх таблицы poll_cursors.
type BotCursor struct {
	pool  *pgxpool.Pool
	botID int64
}

var _ storage.CursorStore = (*BotCursor)(nil)

// Load читает сохранённый offset. ok=false, если записи для бота нет.
func (c *BotCursor) Load(ctx context.Context) (int, bool, error) {
	query := `
		SELECT next_offset FROM poll_cursors WHERE bot_id = $1
	`

	var offset int64
	err := c.pool.QueryRow(ctx, query, c.botID).Scan(&offset)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return int(offset), true, nil
}

// Save сохраняет offset. Значение в таблице никогда не уменьшается.
func (c *BotCursor) Save(ctx context.Context, offset int) error {
	if offset < 0 {
		return storage.ErrNegativeOffset
	}

	query := `
	INSERT INTO poll_cursors (bot_id, next_offset, updated_at) VALUES ($1, $2, $3)
	ON CONFLICT (bot_id) DO UPDATE
	SET next_offset = GREATEST(poll_cursors.next_offset, EXCLUDED.next_offset),
	    updated_at = EXCLUDED.updated_at
	`

	_, err := c.pool.Exec(ctx, query, c.botID, int64(offset), time.Now().UTC())
	return err
}
