// Package valuation turns raw season stats into comparable player values:
// historical points, points per 90, replacement levels, VORP and tiers.
package valuation

import (
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

// RuleWeight is a per-stat multiplier. When ByPosition is set it replaces
// Flat, and positions missing from the map score zero for that stat.
type RuleWeight struct {
	Flat       float64
	ByPosition map[models.Position]float64
}

// Weight returns the multiplier for pos
func (w RuleWeight) Weight(pos models.Position) float64 {
	if w.ByPosition != nil {
		return w.ByPosition[pos]
	}
	return w.Flat
}

// Flat builds a position-independent weight
func Flat(v float64) RuleWeight { return RuleWeight{Flat: v} }

// ByPosition builds a position-keyed weight
func ByPosition(f, m, d, g float64) RuleWeight {
	return RuleWeight{ByPosition: map[models.Position]float64{
		models.PositionForward:    f,
		models.PositionMidfield:   m,
		models.PositionDefense:    d,
		models.PositionGoalkeeper: g,
	}}
}

// UnmarshalYAML accepts either a scalar (`goals: 4`) or a position map
// (`goals: {F: 4, M: 5, D: 6, G: 6}`)
func (w *RuleWeight) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("scoring weight: %w", err)
		}
		*w = Flat(v)
		return nil
	case yaml.MappingNode:
		m := map[models.Position]float64{}
		if err := node.Decode(&m); err != nil {
			return fmt.Errorf("scoring weight: %w", err)
		}
		*w = RuleWeight{ByPosition: m}
		return nil
	}
	return fmt.Errorf("scoring weight: unsupported yaml node at line %d", node.Line)
}

// MarshalYAML writes the scalar form when no position map is set
func (w RuleWeight) MarshalYAML() (interface{}, error) {
	if w.ByPosition != nil {
		return w.ByPosition, nil
	}
	return w.Flat, nil
}

// UnmarshalJSON mirrors UnmarshalYAML for JSON payloads
func (w *RuleWeight) UnmarshalJSON(b []byte) error {
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*w = Flat(v)
		return nil
	}
	m := map[models.Position]float64{}
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("scoring weight: %w", err)
	}
	*w = RuleWeight{ByPosition: m}
	return nil
}

// MarshalJSON writes the scalar form when no position map is set
func (w RuleWeight) MarshalJSON() ([]byte, error) {
	if w.ByPosition != nil {
		return json.Marshal(w.ByPosition)
	}
	return json.Marshal(w.Flat)
}

// ScoringRules maps a stat category name to its weight
type ScoringRules map[string]RuleWeight

type statField struct {
	name string
	get  func(*models.Stats) float64
}

// statFields is the fixed, enumerated set of scored categories
var statFields = []statField{
	{"goals", func(s *models.Stats) float64 { return s.Goals }},
	{"assists", func(s *models.Stats) float64 { return s.Assists }},
	{"assistsSecond", func(s *models.Stats) float64 { return s.AssistsSecond }},
	{"shotsOnTarget", func(s *models.Stats) float64 { return s.ShotsOnTarget }},
	{"shots", func(s *models.Stats) float64 { return s.Shots }},
	{"keyPasses", func(s *models.Stats) float64 { return s.KeyPasses }},
	{"crosses", func(s *models.Stats) float64 { return s.Crosses }},
	{"dribbles", func(s *models.Stats) float64 { return s.Dribbles }},
	{"tacklesWon", func(s *models.Stats) float64 { return s.TacklesWon }},
	{"interceptions", func(s *models.Stats) float64 { return s.Interceptions }},
	{"clearances", func(s *models.Stats) float64 { return s.Clearances }},
	{"blockedShots", func(s *models.Stats) float64 { return s.BlockedShots }},
	{"aerialsWon", func(s *models.Stats) float64 { return s.AerialsWon }},
	{"recoveries", func(s *models.Stats) float64 { return s.Recoveries }},
	{"saves", func(s *models.Stats) float64 { return s.Saves }},
	{"cleanSheets", func(s *models.Stats) float64 { return s.CleanSheets }},
	{"goalsConceded", func(s *models.Stats) float64 { return s.GoalsConceded }},
	{"pkSaves", func(s *models.Stats) float64 { return s.PKSaves }},
	{"pkMissed", func(s *models.Stats) float64 { return s.PKMissed }},
	{"pkDrawn", func(s *models.Stats) float64 { return s.PKDrawn }},
	{"pkConceded", func(s *models.Stats) float64 { return s.PKConceded }},
	{"ownGoals", func(s *models.Stats) float64 { return s.OwnGoals }},
	{"yellowCards", func(s *models.Stats) float64 { return s.YellowCards }},
	{"redCards", func(s *models.Stats) float64 { return s.RedCards }},
	{"errorsLeadingToGoal", func(s *models.Stats) float64 { return s.ErrorsLeadingToGoal }},
}

// StatCategories lists every scored stat name in evaluation order
func StatCategories() []string {
	out := make([]string, len(statFields))
	for i, f := range statFields {
		out[i] = f.name
	}
	return out
}

// DefaultScoringRules returns the documented league scoring
func DefaultScoringRules() ScoringRules {
	return ScoringRules{
		"goals":               ByPosition(4, 5, 6, 6),
		"assists":             Flat(3),
		"assistsSecond":       Flat(1),
		"shotsOnTarget":       Flat(0.5),
		"shots":               Flat(0.1),
		"keyPasses":           Flat(0.5),
		"crosses":             Flat(0.1),
		"dribbles":            Flat(0.25),
		"tacklesWon":          Flat(0.5),
		"interceptions":       Flat(0.5),
		"clearances":          Flat(0.25),
		"blockedShots":        Flat(0.5),
		"aerialsWon":          Flat(0.25),
		"recoveries":          Flat(0.1),
		"saves":               ByPosition(0, 0, 0, 1),
		"cleanSheets":         ByPosition(0, 1, 4, 5),
		"goalsConceded":       ByPosition(0, 0, -1, -1),
		"pkSaves":             Flat(5),
		"pkMissed":            Flat(-3),
		"pkDrawn":             Flat(2),
		"pkConceded":          Flat(-2),
		"ownGoals":            Flat(-3),
		"yellowCards":         Flat(-1),
		"redCards":            Flat(-3),
		"errorsLeadingToGoal": Flat(-2),
	}
}

// CalculateHistoricalPoints sums stat x weight over every scored category.
// NaN or infinite stats and weights contribute zero.
func CalculateHistoricalPoints(player *models.Player, rules ScoringRules) float64 {
	var total float64
	for _, f := range statFields {
		w, ok := rules[f.name]
		if !ok {
			continue
		}
		v := f.get(&player.Stats) * w.Weight(player.Position)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		total += v
	}
	return total
}

// PointsPer90 returns points scaled to a full match, 0 without minutes
func PointsPer90(points, minutes float64) float64 {
	if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return 0
	}
	return points / minutes * 90
}
