package models

import "time"

// Position is one of the four recognised roster positions
type Position string

const (
	PositionForward    Position = "F"
	PositionMidfield   Position = "M"
	PositionDefense    Position = "D"
	PositionGoalkeeper Position = "G"
)

// Positions lists every recognised position in display order
var Positions = []Position{PositionForward, PositionMidfield, PositionDefense, PositionGoalkeeper}

// Valid reports whether p is one of the four recognised codes
func (p Position) Valid() bool {
	switch p {
	case PositionForward, PositionMidfield, PositionDefense, PositionGoalkeeper:
		return true
	}
	return false
}

// Outfield reports whether p is anything other than goalkeeper
func (p Position) Outfield() bool {
	return p.Valid() && p != PositionGoalkeeper
}

// RosterCategory governs which players count toward starting-lineup limits
type RosterCategory string

const (
	CategoryActive         RosterCategory = "active"
	CategoryReserve        RosterCategory = "reserve"
	CategoryInjuredReserve RosterCategory = "injured_reserve"
)

// Categories lists roster categories in placement order
var Categories = []RosterCategory{CategoryActive, CategoryReserve, CategoryInjuredReserve}

// Valid reports whether c is a known category
func (c RosterCategory) Valid() bool {
	switch c {
	case CategoryActive, CategoryReserve, CategoryInjuredReserve:
		return true
	}
	return false
}

// Tier represents the player tier band within a position
type Tier string

const (
	TierElite  Tier = "ELITE"
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

// Stats holds the raw per-season counters. Missing fields decode as zero.
type Stats struct {
	Goals               float64 `json:"goals" yaml:"goals"`
	Assists             float64 `json:"assists" yaml:"assists"`
	AssistsSecond       float64 `json:"assistsSecond" yaml:"assistsSecond"`
	ShotsOnTarget       float64 `json:"shotsOnTarget" yaml:"shotsOnTarget"`
	Shots               float64 `json:"shots" yaml:"shots"`
	KeyPasses           float64 `json:"keyPasses" yaml:"keyPasses"`
	Crosses             float64 `json:"crosses" yaml:"crosses"`
	Dribbles            float64 `json:"dribbles" yaml:"dribbles"`
	TacklesWon          float64 `json:"tacklesWon" yaml:"tacklesWon"`
	Interceptions       float64 `json:"interceptions" yaml:"interceptions"`
	Clearances          float64 `json:"clearances" yaml:"clearances"`
	BlockedShots        float64 `json:"blockedShots" yaml:"blockedShots"`
	AerialsWon          float64 `json:"aerialsWon" yaml:"aerialsWon"`
	Recoveries          float64 `json:"recoveries" yaml:"recoveries"`
	Saves               float64 `json:"saves" yaml:"saves"`
	CleanSheets         float64 `json:"cleanSheets" yaml:"cleanSheets"`
	GoalsConceded       float64 `json:"goalsConceded" yaml:"goalsConceded"`
	PKSaves             float64 `json:"pkSaves" yaml:"pkSaves"`
	PKMissed            float64 `json:"pkMissed" yaml:"pkMissed"`
	PKDrawn             float64 `json:"pkDrawn" yaml:"pkDrawn"`
	PKConceded          float64 `json:"pkConceded" yaml:"pkConceded"`
	OwnGoals            float64 `json:"ownGoals" yaml:"ownGoals"`
	YellowCards         float64 `json:"yellowCards" yaml:"yellowCards"`
	RedCards            float64 `json:"redCards" yaml:"redCards"`
	ErrorsLeadingToGoal float64 `json:"errorsLeadingToGoal" yaml:"errorsLeadingToGoal"`
}

// Player represents a draftable athlete. Stats are the source of truth;
// HistoricalPoints, FP90, VORP and Tier are derived and recomputed on load.
type Player struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
	Team     string   `json:"team"`
	Age      int      `json:"age"`
	Minutes  float64  `json:"minutes"`
	Stats

	HistoricalPoints float64        `json:"historicalPoints"`
	FP90             float64        `json:"fp90"`
	VORP             float64        `json:"vorp"`
	Tier             Tier           `json:"tier,omitempty"`
	Round            int            `json:"round,omitempty"`
	RosterCategory   RosterCategory `json:"rosterCategory,omitempty"`
}

// PositionLimit bounds how many players of one position a team may hold
type PositionLimit struct {
	MinActive int `json:"minActive" yaml:"minActive"`
	MaxActive int `json:"maxActive" yaml:"maxActive"`
	TotalMax  int `json:"totalMax" yaml:"totalMax"`
}

// Pick is one rostered player together with where it was drafted
type Pick struct {
	Player     Player         `json:"player"`
	Round      int            `json:"round"`
	PickNumber int            `json:"pickNumber"`
	Category   RosterCategory `json:"rosterCategory"`
}

// Team represents a draft team and its roster rules
type Team struct {
	ID                       string                     `json:"id"`
	Name                     string                     `json:"name"`
	Owner                    string                     `json:"owner"`
	IsHuman                  bool                       `json:"isHuman"`
	Picks                    []Pick                     `json:"picks"`
	PositionLimits           map[Position]PositionLimit `json:"positionLimits"`
	MaxTotalPlayers          int                        `json:"maxTotalPlayers"`
	MaxActivePlayers         int                        `json:"maxActivePlayers"`
	MaxReservePlayers        int                        `json:"maxReservePlayers"`
	MaxInjuredReservePlayers int                        `json:"maxInjuredReservePlayers"`
}

// Clone returns a deep copy of the team so callers can mutate picks safely
func (t *Team) Clone() *Team {
	c := *t
	c.Picks = append([]Pick(nil), t.Picks...)
	c.PositionLimits = make(map[Position]PositionLimit, len(t.PositionLimits))
	for k, v := range t.PositionLimits {
		c.PositionLimits[k] = v
	}
	return &c
}

// Fixture is one raw fixture row with free-form display names
type Fixture struct {
	Matchweek int       `json:"matchweek"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	Kickoff   time.Time `json:"kickoff"`
}

// PickRecord is one entry in the append-only pick log
type PickRecord struct {
	SessionID  string         `json:"sessionId"`
	PickNumber int            `json:"pickNumber"`
	Round      int            `json:"round"`
	TeamID     string         `json:"teamId"`
	PlayerID   string         `json:"playerId"`
	PlayerName string         `json:"playerName"`
	Position   Position       `json:"position"`
	Category   RosterCategory `json:"rosterCategory"`
	Automated  bool           `json:"automated"`
	Skipped    bool           `json:"skipped"`
	Reason     string         `json:"reason,omitempty"`
	TS         int64          `json:"ts"`
}

// DraftState is the externally visible snapshot of a draft session
type DraftState struct {
	SessionID       string   `json:"sessionId"`
	Status          string   `json:"status"`
	CurrentPick     int      `json:"currentPick"`
	CurrentRound    int      `json:"currentRound"`
	CurrentTeamID   string   `json:"currentTeamId,omitempty"`
	CurrentTeamName string   `json:"currentTeamName,omitempty"`
	TotalRounds     int      `json:"totalRounds"`
	DraftedPlayers  []string `json:"draftedPlayers"`
	Teams           []Team   `json:"teams"`
	Available       int      `json:"available"`
}
