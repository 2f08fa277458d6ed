package dal

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

// LoadPlayersFile reads a JSON array of players. Derived fields in the file
// are ignored by the engine, which recomputes them from stats.
func LoadPlayersFile(path string) ([]models.Player, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read players file %s: %w", path, err)
	}
	var players []models.Player
	if err := json.Unmarshal(b, &players); err != nil {
		return nil, fmt.Errorf("failed to parse players file %s: %w", path, err)
	}
	for i := range players {
		if players[i].ID == "" {
			players[i].ID = fmt.Sprintf("player-%d", i+1)
		}
	}
	return players, nil
}

// LoadFixturesFile reads a JSON array of raw fixture rows
func LoadFixturesFile(path string) ([]models.Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures file %s: %w", path, err)
	}
	var out []models.Fixture
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures file %s: %w", path, err)
	}
	return out, nil
}

// LoadPlayersIntoDatabase replaces the stored pool with the file's players
func LoadPlayersIntoDatabase(d DraftDAL, path string) (int, error) {
	players, err := LoadPlayersFile(path)
	if err != nil {
		return 0, err
	}
	if err := d.SavePlayers(players); err != nil {
		return 0, fmt.Errorf("failed to store players: %w", err)
	}
	return len(players), nil
}
