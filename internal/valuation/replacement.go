package valuation

import (
	"math"
	"sort"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

const (
	minReplacementIndex = 12
	replacementFraction = 0.15
)

// ReplacementLevels maps a position to the points of a readily available
// replacement at that position
type ReplacementLevels map[models.Position]float64

// ReplacementIndex is the rank, 0-based, of the replacement player in a
// pool of n players sorted by points descending
func ReplacementIndex(n int) int {
	idx := int(math.Floor(float64(n) * replacementFraction))
	if idx < minReplacementIndex {
		idx = minReplacementIndex
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

// CalculateReplacementLevels computes the per-position baseline from the
// available pool. Positions with fewer than two players get 0.
func CalculateReplacementLevels(players []models.Player) ReplacementLevels {
	byPos := map[models.Position][]float64{}
	for i := range players {
		if !players[i].Position.Valid() {
			continue
		}
		byPos[players[i].Position] = append(byPos[players[i].Position], players[i].HistoricalPoints)
	}

	levels := ReplacementLevels{}
	for _, pos := range models.Positions {
		pts := byPos[pos]
		if len(pts) < 2 {
			levels[pos] = 0
			continue
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(pts)))
		levels[pos] = pts[ReplacementIndex(len(pts))]
	}
	return levels
}

// CalculateVORP returns points over the position's replacement level, 0
// for unrecognised positions
func CalculateVORP(player *models.Player, levels ReplacementLevels) float64 {
	if !player.Position.Valid() {
		return 0
	}
	return player.HistoricalPoints - levels[player.Position]
}

// Prepare recomputes every derived field on the pool in place: points,
// points per 90, VORP against the pool's own levels, and tiers. It returns
// the levels it used.
func Prepare(players []models.Player, rules ScoringRules) ReplacementLevels {
	for i := range players {
		p := &players[i]
		p.HistoricalPoints = CalculateHistoricalPoints(p, rules)
		p.FP90 = PointsPer90(p.HistoricalPoints, p.Minutes)
	}
	levels := CalculateReplacementLevels(players)
	Revalue(players, levels)
	return levels
}

// Revalue refreshes VORP and tier on the pool against the given levels
func Revalue(players []models.Player, levels ReplacementLevels) {
	for i := range players {
		players[i].VORP = CalculateVORP(&players[i], levels)
	}
	tiers := CreatePlayerTiers(players, levels)
	byID := map[string]models.Tier{}
	for _, list := range tiers {
		for _, p := range list {
			byID[p.ID] = p.Tier
		}
	}
	for i := range players {
		players[i].Tier = byID[players[i].ID]
	}
}
