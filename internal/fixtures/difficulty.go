// Package fixtures rates upcoming schedule difficulty per position from a
// static club strength table. Unknown clubs degrade to neutral values.
package fixtures

import (
	"math"
	"sort"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

const (
	neutralDifficulty = 3.0
	neutralConfidence = 0.5
	venueAdjustment   = 0.25
)

// PositionWeight describes how much a fixture's attacking and defensive
// sides matter to one position
type PositionWeight struct {
	Offense          float64 `json:"offense"`
	Defense          float64 `json:"defense"`
	CleanSheetImpact float64 `json:"cleanSheetImpact"`
	GoalMultiplier   float64 `json:"goalMultiplier"`
}

var positionWeights = map[models.Position]PositionWeight{
	models.PositionForward:    {Offense: 0.85, Defense: 0.15, CleanSheetImpact: 0, GoalMultiplier: 1.3},
	models.PositionMidfield:   {Offense: 0.65, Defense: 0.35, CleanSheetImpact: 0.25, GoalMultiplier: 1.0},
	models.PositionDefense:    {Offense: 0.3, Defense: 0.7, CleanSheetImpact: 1.0, GoalMultiplier: 0.5},
	models.PositionGoalkeeper: {Offense: 0.1, Defense: 0.9, CleanSheetImpact: 1.2, GoalMultiplier: 0.1},
}

// WeightFor returns the position weights, midfield for unknown positions
func WeightFor(pos models.Position) PositionWeight {
	if w, ok := positionWeights[pos]; ok {
		return w
	}
	return positionWeights[models.PositionMidfield]
}

// Difficulty is the rating of a single fixture for one position
type Difficulty struct {
	Difficulty            float64 `json:"difficulty"`
	CleanSheetProbability float64 `json:"cleanSheetProbability"`
	GoalScoringProb       float64 `json:"goalScoringProbability"`
	AttackingReturn       float64 `json:"attackingReturn"`
	DefensiveReturn       float64 `json:"defensiveReturn"`
	Confidence            float64 `json:"confidence"`
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Neutral is returned for fixtures involving an unrated club
func Neutral(pos models.Position) Difficulty {
	w := WeightFor(pos)
	return Difficulty{
		Difficulty:            neutralDifficulty,
		CleanSheetProbability: 0.25,
		GoalScoringProb:       0.35,
		AttackingReturn:       0.35 * w.GoalMultiplier,
		DefensiveReturn:       0.25 * w.CleanSheetImpact,
		Confidence:            neutralConfidence,
	}
}

// CalculateEnhancedFixtureDifficulty rates team against opponent for pos
func CalculateEnhancedFixtureDifficulty(team, opponent string, isHome bool, pos models.Position) Difficulty {
	ts, ok := TeamStrength(team)
	if !ok {
		return Neutral(pos)
	}
	opp, ok := TeamStrength(opponent)
	if !ok {
		return Neutral(pos)
	}
	w := WeightFor(pos)

	oppVenue := opp.Home
	venue := -venueAdjustment
	if isHome {
		oppVenue = opp.Away
		venue = venueAdjustment
	}

	teamRel := w.Offense*ts.Offensive + w.Defense*ts.Defensive + venue
	oppRel := w.Offense*opp.Defensive + w.Defense*opp.Offensive - venue
	diff := teamRel - oppRel

	cs := clamp(0.25+(ts.Defensive+venue-opp.Offensive)*0.12, 0.05, 0.65)
	gs := clamp(0.35+(ts.Offensive+venue-opp.Defensive)*0.12, 0.05, 0.85)

	return Difficulty{
		Difficulty:            clamp(round1(oppVenue), 1, 5),
		CleanSheetProbability: cs,
		GoalScoringProb:       gs,
		AttackingReturn:       gs * w.GoalMultiplier,
		DefensiveReturn:       cs * w.CleanSheetImpact,
		Confidence:            clamp(neutralConfidence+math.Abs(diff)*0.15, 0.5, 0.95),
	}
}

// Upcoming is one fixture from a club's point of view
type Upcoming struct {
	Matchweek int    `json:"matchweek"`
	Opponent  string `json:"opponent"`
	IsHome    bool   `json:"isHome"`
}

// ForTeam builds the club's schedule from raw fixture rows at or after
// fromWeek, skipping rows whose names cannot be mapped
func ForTeam(raw []models.Fixture, code string, fromWeek int) []Upcoming {
	out := []Upcoming{}
	for _, f := range raw {
		if f.Matchweek < fromWeek {
			continue
		}
		home, okH := TeamCode(f.HomeTeam)
		away, okA := TeamCode(f.AwayTeam)
		if !okH || !okA {
			continue
		}
		switch code {
		case home:
			out = append(out, Upcoming{Matchweek: f.Matchweek, Opponent: away, IsHome: true})
		case away:
			out = append(out, Upcoming{Matchweek: f.Matchweek, Opponent: home, IsHome: false})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Matchweek < out[j].Matchweek })
	return out
}

// Outlook aggregates difficulty over a run of fixtures
type Outlook struct {
	Team                  string       `json:"team"`
	Position              string       `json:"position"`
	Fixtures              int          `json:"fixtures"`
	AverageDifficulty     float64      `json:"averageDifficulty"`
	CleanSheetProbability float64      `json:"cleanSheetProbability"`
	GoalScoringProb       float64      `json:"goalScoringProbability"`
	AttackingReturn       float64      `json:"attackingReturn"`
	DefensiveReturn       float64      `json:"defensiveReturn"`
	Confidence            float64      `json:"confidence"`
	FixtureScore          float64      `json:"fixtureScore"`
	Details               []Difficulty `json:"details"`
}

// AnalyzeUpcomingFixtures averages the next gameweeks fixtures. FixtureScore
// is (3 - average difficulty) * 4 clamped to [-8, 8], negative for a hard run.
func AnalyzeUpcomingFixtures(team string, upcoming []Upcoming, pos models.Position, gameweeks int) Outlook {
	out := Outlook{
		Team:              team,
		Position:          string(pos),
		AverageDifficulty: neutralDifficulty,
		Confidence:        neutralConfidence,
		Details:           []Difficulty{},
	}
	if gameweeks <= 0 {
		gameweeks = 5
	}

	var sum Difficulty
	for _, u := range upcoming {
		if len(out.Details) >= gameweeks {
			break
		}
		if u.Opponent == "" || u.Opponent == team {
			continue
		}
		d := CalculateEnhancedFixtureDifficulty(team, u.Opponent, u.IsHome, pos)
		out.Details = append(out.Details, d)
		sum.Difficulty += d.Difficulty
		sum.CleanSheetProbability += d.CleanSheetProbability
		sum.GoalScoringProb += d.GoalScoringProb
		sum.AttackingReturn += d.AttackingReturn
		sum.DefensiveReturn += d.DefensiveReturn
		sum.Confidence += d.Confidence
	}

	n := float64(len(out.Details))
	if n == 0 {
		neutral := Neutral(pos)
		out.CleanSheetProbability = neutral.CleanSheetProbability
		out.GoalScoringProb = neutral.GoalScoringProb
		out.AttackingReturn = neutral.AttackingReturn
		out.DefensiveReturn = neutral.DefensiveReturn
		return out
	}

	out.Fixtures = len(out.Details)
	out.AverageDifficulty = sum.Difficulty / n
	out.CleanSheetProbability = sum.CleanSheetProbability / n
	out.GoalScoringProb = sum.GoalScoringProb / n
	out.AttackingReturn = sum.AttackingReturn / n
	out.DefensiveReturn = sum.DefensiveReturn / n
	out.Confidence = sum.Confidence / n
	out.FixtureScore = clamp((neutralDifficulty-out.AverageDifficulty)*4, -8, 8)
	return out
}

// PlayerOutlook builds the schedule for a player's club and analyses it
func PlayerOutlook(p *models.Player, raw []models.Fixture, fromWeek, gameweeks int) Outlook {
	code, ok := TeamCode(p.Team)
	if !ok {
		return AnalyzeUpcomingFixtures(p.Team, nil, p.Position, gameweeks)
	}
	return AnalyzeUpcomingFixtures(code, ForTeam(raw, code, fromWeek), p.Position, gameweeks)
}
