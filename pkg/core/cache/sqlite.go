package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	key       TEXT PRIMARY KEY,
	value     BLOB NOT NULL,
	stored_at INTEGER NOT NULL
)`

const sqliteOpTimeout = 5 * time.Second

func init() {
	Register("sqlite", newSQLiteCache)
}

type sqliteCache struct {
	db     *sql.DB
	ttl    time.Duration
	logger *logrus.Logger
}

func newSQLiteCache(cfg ProviderConfig) (Cache, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite cache requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()
	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		sqliteSchema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite cache (%s): %w", stmt, err)
		}
	}

	return &sqliteCache{db: db, ttl: cfg.TTL, logger: cfg.logger()}, nil
}

func (s *sqliteCache) cutoff() int64 {
	if s.ttl <= 0 {
		return 0
	}
	return time.Now().Add(-s.ttl).UnixNano()
}

func (s *sqliteCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE key = ? AND stored_at >= ?", key, s.cutoff(),
	).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.WithError(err).Error("sqlite cache Get failed")
		}
		return nil, false
	}
	return value, true
}

func (s *sqliteCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, stored_at = excluded.stored_at`,
		key, value, time.Now().UnixNano())
	if err != nil {
		s.logger.WithError(err).Error("sqlite cache Set failed")
	}
}

func (s *sqliteCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		s.logger.WithError(err).Error("sqlite cache Delete failed")
	}
}

func (s *sqliteCache) Contains(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *sqliteCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	var n int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM kv WHERE stored_at >= ?", s.cutoff(),
	).Scan(&n); err != nil {
		s.logger.WithError(err).Error("sqlite cache Len failed")
		return 0
	}
	return n
}

func (s *sqliteCache) Close() error {
	return s.db.Close()
}
