// Package mocks holds in-process stand-ins for external collaborators used
// in development and tests.
package mocks

import (
	"context"
	"sync"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

// MockClickHouseClient keeps the pick log in memory and answers ADP queries
// from it. It satisfies clickhouse.Analytics.
type MockClickHouseClient struct {
	mu    sync.RWMutex
	picks []models.PickRecord
	// Err, when set, is returned from every call
	Err error
}

// NewMockClickHouseClient creates a mock ClickHouse client
func NewMockClickHouseClient() *MockClickHouseClient {
	logger.Info("Using MOCK ClickHouse client for local development")
	return &MockClickHouseClient{}
}

// RecordPick stores the record
func (m *MockClickHouseClient) RecordPick(_ context.Context, rec models.PickRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.picks = append(m.picks, rec)
	return nil
}

// AverageDraftPositions averages overall pick numbers per player id across
// sessions, keeping players drafted in at least minDrafts sessions
func (m *MockClickHouseClient) AverageDraftPositions(_ context.Context, minDrafts int) (map[string]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if minDrafts < 1 {
		minDrafts = 1
	}

	sum := map[string]float64{}
	sessions := map[string]map[string]bool{}
	count := map[string]int{}
	for _, rec := range m.picks {
		if rec.Skipped || rec.PlayerID == "" {
			continue
		}
		sum[rec.PlayerID] += float64(rec.PickNumber)
		count[rec.PlayerID]++
		if sessions[rec.PlayerID] == nil {
			sessions[rec.PlayerID] = map[string]bool{}
		}
		sessions[rec.PlayerID][rec.SessionID] = true
	}

	out := map[string]float64{}
	for id, total := range sum {
		if len(sessions[id]) >= minDrafts {
			out[id] = total / float64(count[id])
		}
	}
	return out, nil
}

// Picks returns every recorded pick
func (m *MockClickHouseClient) Picks() []models.PickRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.PickRecord(nil), m.picks...)
}

// Ping returns Err
func (m *MockClickHouseClient) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Err
}

// Close is a no-op for mock client
func (m *MockClickHouseClient) Close() error {
	return nil
}
