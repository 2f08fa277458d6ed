package dal

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/fixtures"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

var positionNames = map[models.Position]string{
	models.PositionForward:    "Forward",
	models.PositionMidfield:   "Midfielder",
	models.PositionDefense:    "Defender",
	models.PositionGoalkeeper: "Goalkeeper",
}

// squad depth seeded per club
var squadShape = []struct {
	pos   models.Position
	count int
}{
	{models.PositionForward, 2},
	{models.PositionMidfield, 3},
	{models.PositionDefense, 3},
	{models.PositionGoalkeeper, 2},
}

func r1(v float64) float64 { return math.Round(v*10) / 10 }

// getDefaultPlayers builds a deterministic development pool: a small squad for
// every rated club with stats scaled by club strength and squad depth.
func getDefaultPlayers() []models.Player {
	codes := fixtures.Codes()
	sort.Strings(codes)

	var out []models.Player
	for ci, code := range codes {
		str, _ := fixtures.TeamStrength(code)
		for _, shape := range squadShape {
			for n := 1; n <= shape.count; n++ {
				d := 1 - 0.18*float64(n-1)
				p := models.Player{
					ID:       fmt.Sprintf("%s-%s%d", strings.ToLower(code), strings.ToLower(string(shape.pos)), n),
					Name:     fmt.Sprintf("%s %s %d", code, positionNames[shape.pos], n),
					Position: shape.pos,
					Team:     code,
					Age:      21 + (ci*7+n*3)%13,
					Minutes:  r1(3100 * d * d),
				}
				seedStats(&p.Stats, shape.pos, str, d)
				out = append(out, p)
			}
		}
	}
	return out
}

func seedStats(s *models.Stats, pos models.Position, str fixtures.Strength, d float64) {
	off, def := str.Offensive, str.Defensive
	switch pos {
	case models.PositionForward:
		s.Goals = r1(off * 3.2 * d)
		s.Assists = r1(off * 1.3 * d)
		s.ShotsOnTarget = r1(off * 8 * d)
		s.Shots = r1(off * 16 * d)
		s.KeyPasses = r1(off * 6 * d)
		s.Dribbles = r1(off * 7 * d)
		s.AerialsWon = r1(20 * d)
		s.PKMissed = r1(0.6 * d)
		s.YellowCards = 3
	case models.PositionMidfield:
		s.Goals = r1(off * 1.4 * d)
		s.Assists = r1(off * 1.8 * d)
		s.AssistsSecond = r1(off * 1.1 * d)
		s.KeyPasses = r1(off * 12 * d)
		s.Crosses = r1(20 * d)
		s.Dribbles = r1(off * 5 * d)
		s.TacklesWon = r1(25 * d)
		s.Interceptions = r1(18 * d)
		s.Recoveries = r1(90 * d)
		s.YellowCards = 5
	case models.PositionDefense:
		s.Goals = r1(1.2 * d)
		s.Assists = r1(off * 0.6 * d)
		s.CleanSheets = r1(def * 2.4 * d)
		s.TacklesWon = r1(40 * d)
		s.Interceptions = r1(35 * d)
		s.Clearances = r1(80 * d)
		s.AerialsWon = r1(50 * d)
		s.BlockedShots = r1(15 * d)
		s.GoalsConceded = r1((6 - def) * 9 * d)
		s.YellowCards = 6
	case models.PositionGoalkeeper:
		s.Saves = r1((6 - def) * 18 * d)
		s.CleanSheets = r1(def * 2.6 * d)
		s.GoalsConceded = r1((6 - def) * 9 * d)
		s.PKSaves = r1(1 * d)
		s.ErrorsLeadingToGoal = r1(0.5 * d)
	}
}

func copyPlayers(players []models.Player) []models.Player {
	return append([]models.Player(nil), players...)
}
