package draft

import (
	"sort"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

// TeamResult is one team's standing once the draft ends
type TeamResult struct {
	Rank        int                     `json:"rank"`
	TeamID      string                  `json:"teamId"`
	TeamName    string                  `json:"teamName"`
	IsHuman     bool                    `json:"isHuman"`
	Picks       int                     `json:"picks"`
	TotalPoints float64                 `json:"totalPoints"`
	TotalVORP   float64                 `json:"totalVorp"`
	Positions   map[models.Position]int `json:"positions"`
}

// Results summarises a finished, or partially finished, draft
type Results struct {
	SessionID string       `json:"sessionId"`
	Complete  bool         `json:"complete"`
	Picks     int          `json:"picks"`
	DeadPicks int          `json:"deadPicks"`
	Rankings  []TeamResult `json:"rankings"`
	UserRank  int          `json:"userRank,omitempty"`
	BestPick  *models.Pick `json:"bestPick,omitempty"`
	WorstPick *models.Pick `json:"worstPick,omitempty"`
}

// Results ranks teams by summed historical points and picks out the
// human team's best and worst picks by VORP at draft time
func (s *Session) Results() Results {
	out := Results{
		SessionID: s.ID,
		Complete:  s.state == StateComplete,
		Picks:     len(s.order),
		Rankings:  make([]TeamResult, 0, len(s.teams)),
	}
	for _, rec := range s.history {
		if rec.Skipped {
			out.DeadPicks++
		}
	}

	for _, t := range s.teams {
		r := TeamResult{
			TeamID:    t.ID,
			TeamName:  t.Name,
			IsHuman:   t.IsHuman,
			Picks:     len(t.Picks),
			Positions: map[models.Position]int{},
		}
		for _, pos := range models.Positions {
			r.Positions[pos] = 0
		}
		for _, p := range t.Picks {
			r.TotalPoints += p.Player.HistoricalPoints
			r.TotalVORP += p.Player.VORP
			r.Positions[p.Player.Position]++
		}
		out.Rankings = append(out.Rankings, r)
	}
	sort.SliceStable(out.Rankings, func(i, j int) bool {
		if out.Rankings[i].TotalPoints != out.Rankings[j].TotalPoints {
			return out.Rankings[i].TotalPoints > out.Rankings[j].TotalPoints
		}
		return out.Rankings[i].TeamID < out.Rankings[j].TeamID
	})
	for i := range out.Rankings {
		out.Rankings[i].Rank = i + 1
		if out.Rankings[i].IsHuman {
			out.UserRank = i + 1
		}
	}

	if s.HumanIndex >= 0 && s.HumanIndex < len(s.teams) {
		picks := s.teams[s.HumanIndex].Picks
		for i := range picks {
			p := picks[i]
			if out.BestPick == nil || p.Player.VORP > out.BestPick.Player.VORP {
				out.BestPick = &p
			}
			if out.WorstPick == nil || p.Player.VORP < out.WorstPick.Player.VORP {
				out.WorstPick = &p
			}
		}
	}
	return out
}
