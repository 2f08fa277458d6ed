package dal

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

// SQLiteDAL implements DraftDAL using SQLite
type SQLiteDAL struct {
	sqlStore
}

// NewSQLiteDAL creates a new SQLite data access layer
func NewSQLiteDAL(dbPath string) (*SQLiteDAL, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	dal := &SQLiteDAL{sqlStore{
		db:          db,
		placeholder: func(int) string { return "?" },
		isDuplicate: sqliteDuplicate,
	}}

	if err := dal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return dal, nil
}

func sqliteDuplicate(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func (s *SQLiteDAL) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position TEXT NOT NULL,
		team TEXT NOT NULL,
		age INTEGER NOT NULL DEFAULT 0,
		minutes REAL NOT NULL DEFAULT 0,
		stats TEXT NOT NULL DEFAULT '{}'
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
		automated INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		reason TEXT NOT NULL DEFAULT '',
		ts INTEGER NOT NULL,
		PRIMARY KEY (session_id, pick_number)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL UNIQUE,
		started_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_picks_ts ON picks (ts);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.seedIfEmpty()
}
