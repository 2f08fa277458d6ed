package valuation

import (
	"sort"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

var tierOrder = []models.Tier{models.TierElite, models.TierHigh, models.TierMedium, models.TierLow}

// SortByVORP orders players by VORP descending, then name, then id
func SortByVORP(players []models.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].VORP != players[j].VORP {
			return players[i].VORP > players[j].VORP
		}
		if players[i].Name != players[j].Name {
			return players[i].Name < players[j].Name
		}
		return players[i].ID < players[j].ID
	})
}

// TierFor returns the band for the 0-based rank within a position of n players
func TierFor(rank, n int) models.Tier {
	band := n / len(tierOrder)
	if band < 1 {
		band = 1
	}
	idx := rank / band
	if idx >= len(tierOrder) {
		idx = len(tierOrder) - 1
	}
	return tierOrder[idx]
}

// CreatePlayerTiers groups copies of the players by position, ordered by
// VORP descending, each carrying its VORP and tier. The last band absorbs
// any remainder.
func CreatePlayerTiers(players []models.Player, levels ReplacementLevels) map[models.Position][]models.Player {
	out := map[models.Position][]models.Player{}
	for _, p := range players {
		if !p.Position.Valid() {
			continue
		}
		p.VORP = CalculateVORP(&p, levels)
		out[p.Position] = append(out[p.Position], p)
	}
	for pos, list := range out {
		SortByVORP(list)
		for i := range list {
			list[i].Tier = TierFor(i, len(list))
		}
		out[pos] = list
	}
	return out
}
