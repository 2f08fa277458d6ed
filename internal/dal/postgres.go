package dal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"
)

// PostgresDAL implements DraftDAL using PostgreSQL
type PostgresDAL struct {
	sqlStore
}

// NewPostgresDAL creates a new PostgreSQL data access layer optimized for CloudNativePG
func NewPostgresDAL(connString string) (*PostgresDAL, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	// CloudNativePG default max_connections is 100
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Retry the first ping while cluster DNS settles
	maxRetries := 5
	retryDelay := 5 * time.Second
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		lastErr = db.PingContext(ctx)
		cancel()
		if lastErr == nil {
			break
		}
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if lastErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres after %d retries: %w", maxRetries, lastErr)
	}

	dal := &PostgresDAL{sqlStore{
		db:          db,
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		isDuplicate: postgresDuplicate,
	}}

	if err := dal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return dal, nil
}

func postgresDuplicate(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

func (p *PostgresDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position TEXT NOT NULL,
		team TEXT NOT NULL,
		age INTEGER NOT NULL DEFAULT 0,
		minutes DOUBLE PRECISION NOT NULL DEFAULT 0,
		stats TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS picks (
		session_id TEXT NOT NULL,
		pick_number INTEGER NOT NULL,
		round INTEGER NOT NULL,
		team_id TEXT NOT NULL,
		player_id TEXT NOT NULL DEFAULT '',
		player_name TEXT NOT NULL DEFAULT '',
		position TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		automated BOOLEAN NOT NULL DEFAULT false,
		skipped BOOLEAN NOT NULL DEFAULT false,
		reason TEXT NOT NULL DEFAULT '',
		ts BIGINT NOT NULL,
		PRIMARY KEY (session_id, pick_number)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		seq BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL UNIQUE,
		started_at BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_picks_ts ON picks (ts);
	CREATE INDEX IF NOT EXISTS idx_players_position ON players (position);
	`
	if _, err := p.db.Exec(schema); err != nil {
		return err
	}
	return p.seedIfEmpty()
}
