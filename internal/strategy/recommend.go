package strategy

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/fixtures"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/minutes"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/roster"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/valuation"
)

const (
	// MaxRecommendations is the size of a recommendation list
	MaxRecommendations = 15
	// SimulationSpread is how far below the best score a simulated AI
	// will still consider a candidate
	SimulationSpread = 10.0
	outlookGameweeks = 5
)

// Input is everything needed to rank the pool for one team's turn
type Input struct {
	Team          *models.Team
	Round         int
	TotalRounds   int
	DraftPosition int
	PickNumber    int
	TotalTeams    int
	Available     []models.Player
	Levels        valuation.ReplacementLevels
	Drafted       map[string]bool
	Fixtures      []models.Fixture
	FromWeek      int
	ADP           map[string]float64
	Simulation    bool
}

// Candidate is one scored, legally draftable player
type Candidate struct {
	Player      models.Player         `json:"player"`
	Score       float64               `json:"score"`
	Breakdown   Breakdown             `json:"breakdown"`
	Mode        Mode                  `json:"mode"`
	Category    models.RosterCategory `json:"rosterCategory"`
	Prediction  minutes.Prediction    `json:"prediction"`
	Outlook     fixtures.Outlook      `json:"fixtureOutlook"`
	Tags        []string              `json:"tags"`
	Explanation string                `json:"explanation"`
	deferred    bool
}

// Recommendations is the ranked output for one turn
type Recommendations struct {
	Recommendations []Candidate    `json:"recommendations"`
	Insights        []string       `json:"insights"`
	RosterAnalysis  RosterAnalysis `json:"rosterAnalysis"`
	Strategy        string         `json:"strategy"`
	NextPickIn      int            `json:"nextPickIn"`
}

var errNilPlayer = errors.New("nil player")

func strategyFor(phase Phase) string {
	switch phase {
	case PhaseBuilding:
		return "Best player available: prioritise elite attackers"
	case PhaseFilling:
		return "Balance value with positional needs"
	}
	return "Fill remaining slots and secure a goalkeeper"
}

func (in *Input) normalise() {
	if in.TotalRounds <= 0 {
		in.TotalRounds = 15
	}
	if in.TotalTeams <= 0 {
		in.TotalTeams = 10
	}
	if in.Round <= 0 {
		in.Round = 1
	}
	if in.Levels == nil {
		in.Levels = valuation.CalculateReplacementLevels(in.Available)
	}
	if in.FromWeek <= 0 {
		in.FromWeek = 1
	}
}

type outlookKey struct {
	team string
	pos  models.Position
}

type scorer struct {
	in       *Input
	analysis RosterAnalysis
	outlooks map[outlookKey]fixtures.Outlook
	// fixture source; nil uses the cached club outlook
	fixtureOutlook func(p *models.Player) fixtures.Outlook
}

func newScorer(in *Input, a RosterAnalysis) *scorer {
	return &scorer{in: in, analysis: a, outlooks: map[outlookKey]fixtures.Outlook{}}
}

func (s *scorer) outlook(p *models.Player) fixtures.Outlook {
	if s.fixtureOutlook != nil {
		return s.fixtureOutlook(p)
	}
	key := outlookKey{team: p.Team, pos: p.Position}
	if o, ok := s.outlooks[key]; ok {
		return o
	}
	o := fixtures.PlayerOutlook(p, s.in.Fixtures, s.in.FromWeek, outlookGameweeks)
	s.outlooks[key] = o
	return o
}

// score evaluates one player. A panic in any component is turned into an
// error so the rest of the ranking pass survives.
func (s *scorer) score(p *models.Player) (c Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring %s: %v", p.ID, r)
		}
	}()
	if p == nil {
		return Candidate{}, errNilPlayer
	}

	pred := minutes.PredictPlayerMinutes(p, minutes.Options{})
	in := Inputs{
		Prediction: pred,
		Outlook:    s.outlook(p),
		VORP:       valuation.CalculateVORP(p, s.in.Levels),
	}
	b, mode := CalculateAdvancedPlayerScore(p, in, s.analysis, s.in.Available, s.in.TotalRounds)

	c = Candidate{
		Player:     *p,
		Score:      b.Total(),
		Breakdown:  b,
		Mode:       mode,
		Prediction: pred,
		Outlook:    in.Outlook,
		deferred:   p.Position == models.PositionGoalkeeper && s.analysis.Round < gkWindowOpens,
	}
	c.Player.VORP = in.VORP
	c.Tags = explain(&c, s.in)
	c.Explanation = "Best available"
	if len(c.Tags) > 0 {
		c.Explanation = strings.Join(c.Tags, ", ")
	}
	return c, nil
}

func explain(c *Candidate, in *Input) []string {
	b := c.Breakdown
	tags := []string{}

	switch c.Mode {
	case ModeGoalkeeper:
		switch b.Override {
		case gkDeferred:
			tags = append(tags, "Goalkeeper can wait")
		case gkBackup:
			tags = append(tags, "Backup goalkeeper")
		case gkWindow:
			tags = append(tags, "Goalkeeper window")
		case gkUrgent:
			tags = append(tags, "Goalkeeper needed now")
		}
	case ModeFirstPick:
		if b.Override > 0 {
			tags = append(tags, "Franchise attacker")
		}
	}

	switch {
	case b.Talent >= 60:
		tags = append(tags, "Elite talent")
	case b.Talent >= 30:
		tags = append(tags, "Strong value")
	}
	if b.PositionNeed >= 20 {
		tags = append(tags, "Fills urgent need")
	}
	if b.PositionNeed <= -20 {
		tags = append(tags, "Position already covered")
	}
	if b.Scarcity >= 10 {
		tags = append(tags, "Scarce position")
	}
	if b.Round >= 15 {
		tags = append(tags, "Round value")
	}
	if b.Round <= -20 && c.Mode == ModeGeneral {
		tags = append(tags, "Early for position")
	}
	if b.Minutes > 0 && c.Prediction.PlayingStatus == minutes.StatusStarter {
		tags = append(tags, "Guaranteed starter")
	}
	if b.Minutes <= -10 {
		tags = append(tags, "Minutes risk")
	}
	if b.Fixture >= 5 {
		tags = append(tags, "Favourable fixtures")
	}
	if b.Fixture <= -5 {
		tags = append(tags, "Difficult fixtures ahead")
	}
	if adp, ok := in.ADP[c.Player.ID]; ok && adp > 0 && in.PickNumber > 0 &&
		float64(in.PickNumber)-adp >= float64(in.TotalTeams) {
		tags = append(tags, "Value vs ADP")
	}
	return tags
}

func sortCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.deferred != b.deferred {
			return !a.deferred
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Player.VORP != b.Player.VORP {
			return a.Player.VORP > b.Player.VORP
		}
		if a.Player.Name != b.Player.Name {
			return a.Player.Name < b.Player.Name
		}
		return a.Player.ID < b.Player.ID
	})
}

// rank scores every legally draftable player, best first
func rank(in *Input) ([]Candidate, RosterAnalysis) {
	in.normalise()
	a := AnalyzeRosterComposition(in.Team, in.Round, in.TotalRounds)
	return rankWith(newScorer(in, a)), a
}

func rankWith(s *scorer) []Candidate {
	in := s.in
	out := make([]Candidate, 0, len(in.Available))
	for i := range in.Available {
		p := &in.Available[i]
		if in.Drafted[p.Name] || in.Drafted[p.ID] {
			continue
		}
		if !roster.ValidateDraftMove(in.Team, p).IsValid {
			continue
		}
		cat, ok := roster.DetermineRosterCategory(in.Team, p)
		if !ok {
			continue
		}
		c, err := s.score(p)
		if err != nil {
			logger.Warn("Excluding player from ranking", "player_id", p.ID, "error", err)
			continue
		}
		c.Category = cat
		out = append(out, c)
	}
	sortCandidates(out)
	return out
}

// GetStrategicRecommendations ranks the pool for the team's turn and
// returns the top candidates with roster insights
func GetStrategicRecommendations(in Input) Recommendations {
	ranked, a := rank(&in)
	if len(ranked) > MaxRecommendations {
		ranked = ranked[:MaxRecommendations]
	}
	return Recommendations{
		Recommendations: ranked,
		Insights:        insights(a, in.Team),
		RosterAnalysis:  a,
		Strategy:        strategyFor(a.Phase),
		NextPickIn:      PicksUntilNext(in.Round, in.DraftPosition, in.TotalTeams),
	}
}

func insights(a RosterAnalysis, team *models.Team) []string {
	out := []string{}
	for _, pos := range models.Positions {
		need := a.Needs[pos]
		if need.Urgency >= 0.7 {
			out = append(out, fmt.Sprintf("Urgent: need %d more %s in %d rounds", need.Needed, pos, a.RoundsRemaining))
		}
		if need.IsFull {
			out = append(out, fmt.Sprintf("%s is full (%d/%d)", pos, need.Count, need.TotalMax))
		}
	}
	if a.Round > 6 && a.EliteCount+a.HighCount < a.TotalPlayers/3 {
		out = append(out, fmt.Sprintf("Roster strength is weak: %d elite or high tier players in %d picks", a.EliteCount+a.HighCount, a.TotalPlayers))
	}
	if gk := a.Needs[models.PositionGoalkeeper]; gk.Count == 0 && a.RoundsRemaining <= 4 {
		out = append(out, "No goalkeeper yet: draft one in the next few rounds")
	}
	if len(team.Picks) >= team.MaxTotalPlayers {
		out = append(out, "Roster complete")
	}
	return out
}

// AIDraftPlayer selects a pick for an automated team. Outside simulation it
// takes the best legal candidate; in simulation rng picks among the legal
// candidates within SimulationSpread of the best. ok is false when no
// candidate is legal.
func AIDraftPlayer(in Input, rng *rand.Rand) (Candidate, bool) {
	ranked, _ := rank(&in)
	if len(ranked) == 0 {
		return Candidate{}, false
	}
	best := ranked[0]
	if !in.Simulation || rng == nil {
		return best, true
	}

	pool := ranked[:1]
	for i := 1; i < len(ranked); i++ {
		c := ranked[i]
		if c.deferred != best.deferred || best.Score-c.Score > SimulationSpread {
			break
		}
		pool = ranked[:i+1]
	}
	return pool[rng.IntN(len(pool))], true
}
