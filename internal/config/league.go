package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/valuation"
)

// League size bounds
const (
	MaxTeams  = 32
	MaxRounds = 50
)

// RosterCaps are the per-team category capacities
type RosterCaps struct {
	MaxTotal          int `yaml:"maxTotal" json:"maxTotal"`
	MaxActive         int `yaml:"maxActive" json:"maxActive"`
	MaxReserve        int `yaml:"maxReserve" json:"maxReserve"`
	MaxInjuredReserve int `yaml:"maxInjuredReserve" json:"maxInjuredReserve"`
}

// League describes one league's draft: size, roster rules and scoring.
// HumanIndex is the 0-based draft slot of the human team, -1 for none.
type League struct {
	Name           string                                   `yaml:"name" json:"name"`
	Teams          int                                      `yaml:"teams" json:"teams"`
	Rounds         int                                      `yaml:"rounds" json:"rounds"`
	HumanIndex     int                                      `yaml:"humanIndex" json:"humanIndex"`
	TeamNames      []string                                 `yaml:"teamNames" json:"teamNames,omitempty"`
	PositionLimits map[models.Position]models.PositionLimit `yaml:"positionLimits" json:"positionLimits"`
	Roster         RosterCaps                               `yaml:"roster" json:"roster"`
	Scoring        valuation.ScoringRules                   `yaml:"scoring" json:"scoring"`
	Simulation     bool                                     `yaml:"simulation" json:"simulation"`
	FromWeek       int                                      `yaml:"fromWeek" json:"fromWeek"`
}

// DefaultLeague is a ten-team, fifteen-round league
func DefaultLeague() League {
	return League{
		Name:       "Default League",
		Teams:      10,
		Rounds:     15,
		HumanIndex: 0,
		PositionLimits: map[models.Position]models.PositionLimit{
			models.PositionGoalkeeper: {MinActive: 1, MaxActive: 1, TotalMax: 2},
			models.PositionDefense:    {MinActive: 3, MaxActive: 5, TotalMax: 6},
			models.PositionMidfield:   {MinActive: 3, MaxActive: 5, TotalMax: 6},
			models.PositionForward:    {MinActive: 1, MaxActive: 3, TotalMax: 4},
		},
		Roster:   RosterCaps{MaxTotal: 15, MaxActive: 11, MaxReserve: 4, MaxInjuredReserve: 1},
		Scoring:  valuation.DefaultScoringRules(),
		FromWeek: 1,
	}
}

// LoadLeague reads league settings from a YAML file over the defaults.
// An empty path yields DefaultLeague. Scoring entries override the default
// weight of the same category and leave the rest in place.
func LoadLeague(path string) (League, error) {
	if path == "" {
		return DefaultLeague(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return League{}, fmt.Errorf("read league file: %w", err)
	}
	l, err := ParseLeague(b)
	if err != nil {
		return League{}, fmt.Errorf("league file %s: %w", path, err)
	}
	return l, nil
}

// ParseLeague decodes YAML league settings over the defaults and validates them
func ParseLeague(b []byte) (League, error) {
	l := DefaultLeague()
	if err := yaml.Unmarshal(b, &l); err != nil {
		return League{}, fmt.Errorf("parse league: %w", err)
	}
	if err := l.Validate(); err != nil {
		return League{}, err
	}
	return l, nil
}

// Validate checks the league is internally consistent
func (l League) Validate() error {
	if l.Teams <= 0 || l.Teams > MaxTeams {
		return fmt.Errorf("teams must be between 1 and %d, got %d", MaxTeams, l.Teams)
	}
	if l.Rounds <= 0 || l.Rounds > MaxRounds {
		return fmt.Errorf("rounds must be between 1 and %d, got %d", MaxRounds, l.Rounds)
	}
	if l.HumanIndex < -1 || l.HumanIndex >= l.Teams {
		return fmt.Errorf("humanIndex %d out of range for %d teams", l.HumanIndex, l.Teams)
	}
	for pos, lim := range l.PositionLimits {
		if !pos.Valid() {
			return fmt.Errorf("unknown position %q", pos)
		}
		if lim.MinActive < 0 || lim.MinActive > lim.MaxActive || lim.MaxActive > lim.TotalMax {
			return fmt.Errorf("position %s limits must satisfy 0 <= minActive <= maxActive <= totalMax", pos)
		}
	}
	for _, pos := range models.Positions {
		if _, ok := l.PositionLimits[pos]; !ok {
			return fmt.Errorf("missing limits for position %s", pos)
		}
	}
	r := l.Roster
	if r.MaxTotal <= 0 || r.MaxActive < 0 || r.MaxReserve < 0 || r.MaxInjuredReserve < 0 {
		return fmt.Errorf("roster caps must be non-negative with a positive maxTotal")
	}
	known := map[string]bool{}
	for _, cat := range valuation.StatCategories() {
		known[cat] = true
	}
	for cat := range l.Scoring {
		if !known[cat] {
			return fmt.Errorf("unknown scoring category %q", cat)
		}
	}
	return nil
}

// BuildTeams creates the league's teams in draft-slot order
func (l League) BuildTeams() []models.Team {
	teams := make([]models.Team, l.Teams)
	for i := range teams {
		name := fmt.Sprintf("Team %d", i+1)
		if i < len(l.TeamNames) && l.TeamNames[i] != "" {
			name = l.TeamNames[i]
		}
		limits := make(map[models.Position]models.PositionLimit, len(l.PositionLimits))
		for k, v := range l.PositionLimits {
			limits[k] = v
		}
		teams[i] = models.Team{
			ID:                       fmt.Sprintf("team-%d", i+1),
			Name:                     name,
			IsHuman:                  i == l.HumanIndex,
			PositionLimits:           limits,
			MaxTotalPlayers:          l.Roster.MaxTotal,
			MaxActivePlayers:         l.Roster.MaxActive,
			MaxReservePlayers:        l.Roster.MaxReserve,
			MaxInjuredReservePlayers: l.Roster.MaxInjuredReserve,
		}
	}
	return teams
}
