package mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

func TestMockAverageDraftPositions(t *testing.T) {
	m := NewMockClickHouseClient()
	ctx := context.Background()
	for _, rec := range []models.PickRecord{
		{SessionID: "a", PickNumber: 1, PlayerID: "p1"},
		{SessionID: "b", PickNumber: 3, PlayerID: "p1"},
		{SessionID: "a", PickNumber: 2, PlayerID: "p2"},
		{SessionID: "a", PickNumber: 4, Skipped: true},
	} {
		if err := m.RecordPick(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	adp, err := m.AverageDraftPositions(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if adp["p1"] != 2 || adp["p2"] != 2 {
		t.Errorf("unexpected adp %v", adp)
	}
	if len(adp) != 2 {
		t.Errorf("skipped picks must not count, got %v", adp)
	}

	adp, _ = m.AverageDraftPositions(ctx, 2)
	if _, ok := adp["p2"]; ok {
		t.Error("p2 was drafted in one session only")
	}
	if len(m.Picks()) != 4 {
		t.Errorf("expected 4 stored picks, got %d", len(m.Picks()))
	}
}

func TestMockError(t *testing.T) {
	m := NewMockClickHouseClient()
	m.Err = errors.New("down")
	if err := m.RecordPick(context.Background(), models.PickRecord{}); err == nil {
		t.Error("expected error")
	}
	if _, err := m.AverageDraftPositions(context.Background(), 1); err == nil {
		t.Error("expected error")
	}
}
