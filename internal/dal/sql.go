package dal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

// sqlStore holds the queries shared by the SQLite and Postgres drivers.
// Drivers differ only in placeholder syntax and how they report a
// primary key violation.
type sqlStore struct {
	db          *sql.DB
	placeholder func(n int) string
	isDuplicate func(err error) bool
}

func (s *sqlStore) args(n int) string {
	out := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			out += ", "
		}
		out += s.placeholder(i)
	}
	return out
}

func (s *sqlStore) countPlayers() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM players").Scan(&count)
	return count, err
}

func (s *sqlStore) seedIfEmpty() error {
	count, err := s.countPlayers()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.SavePlayers(getDefaultPlayers())
}

func (s *sqlStore) ListPlayers() ([]models.Player, error) {
	rows, err := s.db.Query(`
		SELECT id, name, position, team, age, minutes, stats
		FROM players ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		var p models.Player
		var statsJSON string
		if err := rows.Scan(&p.ID, &p.Name, &p.Position, &p.Team, &p.Age, &p.Minutes, &statsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(statsJSON), &p.Stats); err != nil {
			return nil, fmt.Errorf("decode stats for %s: %w", p.ID, err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// SavePlayers replaces the whole pool in one transaction
func (s *sqlStore) SavePlayers(players []models.Player) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM players"); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name, position, team, age, minutes, stats)
		VALUES (` + s.args(7) + `)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		statsJSON, err := json.Marshal(p.Stats)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(p.ID, p.Name, string(p.Position), p.Team, p.Age, p.Minutes, string(statsJSON)); err != nil {
			return fmt.Errorf("insert player %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// StartSession marks a session as the latest, even before it has picks
func (s *sqlStore) StartSession(sessionID string) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (session_id, started_at) VALUES (`+s.args(2)+`)
		ON CONFLICT (session_id) DO NOTHING
	`, sessionID, time.Now().UnixMilli())
	return err
}

func (s *sqlStore) RecordPick(rec models.PickRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO picks (session_id, pick_number, round, team_id, player_id, player_name, position, category, automated, skipped, reason, ts)
		VALUES (`+s.args(12)+`)
	`, rec.SessionID, rec.PickNumber, rec.Round, rec.TeamID, rec.PlayerID, rec.PlayerName,
		string(rec.Position), string(rec.Category), rec.Automated, rec.Skipped, rec.Reason, rec.TS)
	if err != nil {
		if s.isDuplicate(err) {
			return fmt.Errorf("%w: session %s pick %d", ErrDuplicatePick, rec.SessionID, rec.PickNumber)
		}
		return err
	}
	return s.StartSession(rec.SessionID)
}

func (s *sqlStore) ListPicks(sessionID string) ([]models.PickRecord, error) {
	rows, err := s.db.Query(`
		SELECT session_id, pick_number, round, team_id, player_id, player_name, position, category, automated, skipped, reason, ts
		FROM picks WHERE session_id = `+s.placeholder(1)+`
		ORDER BY pick_number ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	picks := []models.PickRecord{}
	for rows.Next() {
		var r models.PickRecord
		if err := rows.Scan(&r.SessionID, &r.PickNumber, &r.Round, &r.TeamID, &r.PlayerID, &r.PlayerName,
			&r.Position, &r.Category, &r.Automated, &r.Skipped, &r.Reason, &r.TS); err != nil {
			return nil, err
		}
		picks = append(picks, r)
	}
	return picks, rows.Err()
}

func (s *sqlStore) LatestSession() (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT session_id FROM sessions ORDER BY seq DESC LIMIT 1`).Scan(&id)
	if err == nil || !errors.Is(err, sql.ErrNoRows) {
		return id, err
	}
	// pick logs written before session markers existed
	err = s.db.QueryRow(`SELECT session_id FROM picks ORDER BY ts DESC, pick_number DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

// Reset clears the pick log and session markers and reseeds the default pool
func (s *sqlStore) Reset() error {
	if _, err := s.db.Exec("DELETE FROM picks"); err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM sessions"); err != nil {
		return err
	}
	return s.SavePlayers(getDefaultPlayers())
}

func (s *sqlStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
