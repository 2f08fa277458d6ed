// Package strategy scores undrafted players against a team's evolving needs
// and picks for automated teams.
package strategy

import (
	"math"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/roster"
)

// Phase labels the stage of a team's draft
type Phase string

const (
	PhaseBuilding   Phase = "BUILDING"
	PhaseFilling    Phase = "FILLING"
	PhaseCompleting Phase = "COMPLETING"
)

// PhaseFor maps a round to its phase
func PhaseFor(round int) Phase {
	switch {
	case round <= 4:
		return PhaseBuilding
	case round <= 10:
		return PhaseFilling
	}
	return PhaseCompleting
}

// PositionNeed is the roster's standing at one position
type PositionNeed struct {
	Position  models.Position `json:"position"`
	Count     int             `json:"count"`
	MinActive int             `json:"minActive"`
	TotalMax  int             `json:"totalMax"`
	Needed    int             `json:"needed"`
	Urgency   float64         `json:"urgency"`
	IsFull    bool            `json:"isFull"`
	IsLuxury  bool            `json:"isLuxury"`
}

// RosterAnalysis summarises a roster for one round
type RosterAnalysis struct {
	Round           int                              `json:"round"`
	RoundsRemaining int                              `json:"roundsRemaining"`
	Phase           Phase                            `json:"phase"`
	Needs           map[models.Position]PositionNeed `json:"needs"`
	TotalNeeded     int                              `json:"totalNeeded"`
	TotalPlayers    int                              `json:"totalPlayers"`
	EliteCount      int                              `json:"eliteCount"`
	HighCount       int                              `json:"highCount"`
	AveragePoints   float64                          `json:"averagePoints"`
}

// Urgency scores a position's need in [0, 1]. Goalkeepers only become
// urgent in the final four rounds.
func Urgency(pos models.Position, count, needed, roundsRemaining int) float64 {
	if needed <= 0 {
		return 0
	}
	if pos == models.PositionGoalkeeper {
		if count > 0 {
			return 0
		}
		switch {
		case roundsRemaining <= 2:
			return 1.0
		case roundsRemaining <= 3:
			return 0.8
		case roundsRemaining <= 4:
			return 0.5
		}
		return 0
	}
	if roundsRemaining < 1 {
		roundsRemaining = 1
	}
	return math.Max(0, math.Min(1, float64(needed)/float64(roundsRemaining)*2))
}

// AnalyzeRosterComposition computes per-position needs and roster strength
func AnalyzeRosterComposition(team *models.Team, round, totalRounds int) RosterAnalysis {
	c := roster.RosterCounts(team)
	remaining := totalRounds - round + 1
	if remaining < 1 {
		remaining = 1
	}

	a := RosterAnalysis{
		Round:           round,
		RoundsRemaining: remaining,
		Phase:           PhaseFor(round),
		Needs:           map[models.Position]PositionNeed{},
		TotalPlayers:    c.Total,
	}
	for _, pos := range models.Positions {
		limit := team.PositionLimits[pos]
		count := c.ByPosition[pos]
		needed := limit.MinActive - count
		if needed < 0 {
			needed = 0
		}
		a.Needs[pos] = PositionNeed{
			Position:  pos,
			Count:     count,
			MinActive: limit.MinActive,
			TotalMax:  limit.TotalMax,
			Needed:    needed,
			Urgency:   Urgency(pos, count, needed, remaining),
			IsFull:    count >= limit.TotalMax,
			IsLuxury:  count >= limit.MaxActive && count < limit.TotalMax,
		}
		a.TotalNeeded += needed
	}

	var sum float64
	for _, p := range team.Picks {
		sum += p.Player.HistoricalPoints
		switch p.Player.Tier {
		case models.TierElite:
			a.EliteCount++
		case models.TierHigh:
			a.HighCount++
		}
	}
	if len(team.Picks) > 0 {
		a.AveragePoints = sum / float64(len(team.Picks))
	}
	return a
}

// NeedWeight rises linearly from 0.1 in round 1 to 1.0 in the last round
func NeedWeight(round, totalRounds int) float64 {
	return 0.1 + 0.9*progress(round, totalRounds)
}

func progress(round, totalRounds int) float64 {
	if totalRounds <= 1 {
		return 1
	}
	p := float64(round-1) / float64(totalRounds-1)
	return math.Max(0, math.Min(1, p))
}

// PicksUntilNext returns how many overall picks pass until the team in
// draft slot (1-based) picks again after this round
func PicksUntilNext(round, slot, totalTeams int) int {
	if round%2 == 1 {
		return 2*(totalTeams-slot) + 1
	}
	return 2*slot - 1
}
