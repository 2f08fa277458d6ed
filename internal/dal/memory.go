package dal

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

// MemoryDAL implements DraftDAL using in-memory storage
type MemoryDAL struct {
	mu      sync.RWMutex
	players []models.Player
	picks   map[string][]models.PickRecord
	started map[string]bool
	latest  string
}

// NewMemoryDAL creates a new in-memory data access layer
func NewMemoryDAL() *MemoryDAL {
	return &MemoryDAL{
		players: getDefaultPlayers(),
		picks:   map[string][]models.PickRecord{},
		started: map[string]bool{},
	}
}

func (m *MemoryDAL) ListPlayers() ([]models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyPlayers(m.players), nil
}

func (m *MemoryDAL) SavePlayers(players []models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = copyPlayers(players)
	return nil
}

func (m *MemoryDAL) RecordPick(rec models.PickRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.picks[rec.SessionID] {
		if existing.PickNumber == rec.PickNumber {
			return fmt.Errorf("%w: session %s pick %d", ErrDuplicatePick, rec.SessionID, rec.PickNumber)
		}
	}
	m.picks[rec.SessionID] = append(m.picks[rec.SessionID], rec)
	m.start(rec.SessionID)
	return nil
}

func (m *MemoryDAL) start(id string) {
	if m.started[id] {
		return
	}
	m.started[id] = true
	m.latest = id
}

func (m *MemoryDAL) StartSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.start(sessionID)
	return nil
}

func (m *MemoryDAL) ListPicks(sessionID string) ([]models.PickRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append([]models.PickRecord{}, m.picks[sessionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].PickNumber < out[j].PickNumber })
	return out, nil
}

func (m *MemoryDAL) LatestSession() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, nil
}

func (m *MemoryDAL) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.players = getDefaultPlayers()
	m.picks = map[string][]models.PickRecord{}
	m.started = map[string]bool{}
	m.latest = ""
	return nil
}

func (m *MemoryDAL) Close() error { return nil }
