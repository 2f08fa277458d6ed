// Package draft runs a multi-team snake draft as an explicit, resumable
// session. A Session is not safe for concurrent use; callers serialise
// access so that validating and applying a pick is atomic.
package draft

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/roster"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/strategy"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/valuation"
)

var (
	ErrNotHumanTurn      = errors.New("not the human team's turn")
	ErrDraftComplete     = errors.New("draft complete")
	ErrDraftNotStarted   = errors.New("draft not started")
	ErrPlayerUnavailable = errors.New("player unavailable")
	ErrIllegalPick       = errors.New("illegal pick")
	ErrTeamNotFound      = errors.New("team not found")
	ErrReplayMismatch    = errors.New("pick log does not match draft order")
)

// Event types emitted through Config.Notify
const (
	EventStart       = "draft:start"
	EventPick        = "draft:pick"
	EventSkip        = "draft:skip"
	EventAwaitHuman  = "draft:await_human"
	EventComplete    = "draft:complete"
	EventReset       = "draft:reset"
	EventRosterMove  = "roster:move"
	SkipRosterFull   = "roster_full"
	SkipNoCandidate  = "no_legal_candidate"
	NoHuman          = -1
	defaultSeedSplit = 0x9e3779b97f4a7c15
)

// State is the session lifecycle
type State string

const (
	StateIdle          State = "idle"
	StateRunning       State = "running"
	StateAwaitingHuman State = "awaiting_human"
	StateComplete      State = "complete"
)

// StepKind is the outcome of one Step call
type StepKind string

const (
	StepAdvanced      StepKind = "advanced"
	StepAwaitingHuman StepKind = "awaiting_human"
	StepComplete      StepKind = "complete"
)

// StepResult reports what a Step call did
type StepResult struct {
	Kind    StepKind            `json:"kind"`
	Picks   int                 `json:"picks"`
	Skipped int                 `json:"skipped"`
	Records []models.PickRecord `json:"records"`
}

// Notifier receives session events
type Notifier func(eventType string, payload map[string]interface{})

// Config describes a new session
type Config struct {
	Teams       []models.Team
	Pool        []models.Player
	Rules       valuation.ScoringRules
	TotalRounds int
	HumanIndex  int
	Seed        uint64
	Simulation  bool
	Fixtures    []models.Fixture
	FromWeek    int
	ADP         map[string]float64
	Notify      Notifier
}

// Session is one draft from start to completion
type Session struct {
	ID          string
	CurrentPick int
	TotalRounds int
	HumanIndex  int

	cfg       Config
	teams     []*models.Team
	available []models.Player
	levels    valuation.ReplacementLevels
	drafted   map[string]bool
	order     []string
	history   []models.PickRecord
	state     State
	rng       *rand.Rand
}

// New validates the config and builds an idle session. Derived player
// values are recomputed from stats with cfg.Rules.
func New(cfg Config) (*Session, error) {
	if len(cfg.Teams) == 0 {
		return nil, errors.New("draft needs at least one team")
	}
	if cfg.TotalRounds <= 0 {
		return nil, errors.New("draft needs at least one round")
	}
	if cfg.HumanIndex < NoHuman || cfg.HumanIndex >= len(cfg.Teams) {
		return nil, fmt.Errorf("human index %d out of range for %d teams", cfg.HumanIndex, len(cfg.Teams))
	}
	if cfg.Rules == nil {
		cfg.Rules = valuation.DefaultScoringRules()
	}
	if cfg.FromWeek <= 0 {
		cfg.FromWeek = 1
	}
	s := &Session{cfg: cfg}
	s.reset()
	return s, nil
}

func (s *Session) reset() {
	s.ID = uuid.NewString()
	s.CurrentPick = 1
	s.TotalRounds = s.cfg.TotalRounds
	s.HumanIndex = s.cfg.HumanIndex
	s.teams = make([]*models.Team, len(s.cfg.Teams))
	for i := range s.cfg.Teams {
		t := s.cfg.Teams[i].Clone()
		t.Picks = nil
		t.IsHuman = i == s.cfg.HumanIndex
		s.teams[i] = t
	}
	s.available = append([]models.Player(nil), s.cfg.Pool...)
	s.levels = valuation.Prepare(s.available, s.cfg.Rules)
	s.drafted = map[string]bool{}
	s.order = nil
	s.history = nil
	s.state = StateIdle
	s.rng = rand.New(rand.NewPCG(s.cfg.Seed, s.cfg.Seed^defaultSeedSplit))
}

func (s *Session) notify(eventType string, payload map[string]interface{}) {
	if s.cfg.Notify == nil {
		return
	}
	payload["sessionId"] = s.ID
	s.cfg.Notify(eventType, payload)
}

func (s *Session) log() []any {
	return []any{"session_id", s.ID, "pick", s.CurrentPick}
}

// Start moves an idle session to running
func (s *Session) Start() error {
	switch s.state {
	case StateIdle:
	case StateComplete:
		return ErrDraftComplete
	default:
		return nil
	}
	s.state = StateRunning
	logger.Info("Draft started", "session_id", s.ID, "teams", len(s.teams), "rounds", s.TotalRounds)
	s.notify(EventStart, map[string]interface{}{"teams": len(s.teams), "rounds": s.TotalRounds})
	return nil
}

// Reset discards every pick and returns the session to idle with a new id
func (s *Session) Reset() {
	old := s.ID
	s.reset()
	logger.Info("Draft reset", "previous_session_id", old, "session_id", s.ID)
	s.notify(EventReset, map[string]interface{}{"previousSessionId": old})
}

// State returns the lifecycle state
func (s *Session) State() State { return s.state }

// MaxPicks bounds the number of pick steps a session can take
func (s *Session) MaxPicks() int { return len(s.teams) * s.TotalRounds }

// Round is the round of the current pick
func (s *Session) Round() int { return RoundFor(s.CurrentPick, len(s.teams)) }

// CurrentTeamIndex is the 0-based index of the team due to pick
func (s *Session) CurrentTeamIndex() int {
	return CalculateDraftPosition(s.CurrentPick, len(s.teams)) - 1
}

// Teams returns deep copies of every team in draft-slot order
func (s *Session) Teams() []models.Team {
	out := make([]models.Team, len(s.teams))
	for i, t := range s.teams {
		out[i] = *t.Clone()
	}
	return out
}

// Team returns a copy of one team by id
func (s *Session) Team(id string) (models.Team, bool) {
	idx := s.teamIndex(id)
	if idx < 0 {
		return models.Team{}, false
	}
	return *s.teams[idx].Clone(), true
}

func (s *Session) teamIndex(id string) int {
	for i, t := range s.teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Available returns a copy of the undrafted pool
func (s *Session) Available() []models.Player {
	return append([]models.Player(nil), s.available...)
}

// Levels returns the replacement levels of the current pool
func (s *Session) Levels() valuation.ReplacementLevels {
	out := valuation.ReplacementLevels{}
	for k, v := range s.levels {
		out[k] = v
	}
	return out
}

// History returns the pick log so far
func (s *Session) History() []models.PickRecord {
	return append([]models.PickRecord(nil), s.history...)
}

// IsComplete reports whether every roster is full or the pick bound is hit
func (s *Session) IsComplete() bool {
	if s.CurrentPick > s.MaxPicks() {
		return true
	}
	for _, t := range s.teams {
		if len(t.Picks) < t.MaxTotalPlayers {
			return false
		}
	}
	return true
}

// Snapshot is the externally visible draft state
func (s *Session) Snapshot() models.DraftState {
	st := models.DraftState{
		SessionID:      s.ID,
		Status:         string(s.state),
		CurrentPick:    s.CurrentPick,
		CurrentRound:   s.Round(),
		TotalRounds:    s.TotalRounds,
		DraftedPlayers: append([]string{}, s.order...),
		Teams:          s.Teams(),
		Available:      len(s.available),
	}
	if s.state != StateComplete {
		if idx := s.CurrentTeamIndex(); idx >= 0 && idx < len(s.teams) {
			st.CurrentTeamID = s.teams[idx].ID
			st.CurrentTeamName = s.teams[idx].Name
		}
	}
	return st
}

func (s *Session) input(teamIdx int) strategy.Input {
	return strategy.Input{
		Team:          s.teams[teamIdx],
		Round:         s.Round(),
		TotalRounds:   s.TotalRounds,
		DraftPosition: teamIdx + 1,
		PickNumber:    s.CurrentPick,
		TotalTeams:    len(s.teams),
		Available:     s.available,
		Levels:        s.levels,
		Drafted:       s.drafted,
		Fixtures:      s.cfg.Fixtures,
		FromWeek:      s.cfg.FromWeek,
		ADP:           s.cfg.ADP,
		Simulation:    s.cfg.Simulation,
	}
}

// Recommendations ranks the pool for a team as if it were picking now
func (s *Session) Recommendations(teamID string) (strategy.Recommendations, error) {
	idx := s.teamIndex(teamID)
	if idx < 0 {
		return strategy.Recommendations{}, ErrTeamNotFound
	}
	return strategy.GetStrategicRecommendations(s.input(idx)), nil
}

// SetADP replaces the average draft position table used for explanations
func (s *Session) SetADP(adp map[string]float64) {
	s.cfg.ADP = adp
}

func (s *Session) complete() {
	if s.state == StateComplete {
		return
	}
	s.state = StateComplete
	logger.Info("Draft complete", "session_id", s.ID, "picks", len(s.order))
	s.notify(EventComplete, map[string]interface{}{"picks": len(s.order)})
}

func (s *Session) skip(teamIdx int, reason string) models.PickRecord {
	t := s.teams[teamIdx]
	rec := models.PickRecord{
		SessionID:  s.ID,
		PickNumber: s.CurrentPick,
		Round:      s.Round(),
		TeamID:     t.ID,
		Automated:  true,
		Skipped:    true,
		Reason:     reason,
		TS:         time.Now().UnixMilli(),
	}
	logger.Info("Dead pick skipped", append(s.log(), "team_id", t.ID, "reason", reason)...)
	s.history = append(s.history, rec)
	s.CurrentPick++
	s.notify(EventSkip, map[string]interface{}{"teamId": t.ID, "pickNumber": rec.PickNumber, "reason": reason})
	return rec
}

// apply validates and commits one pick for the team at teamIdx
func (s *Session) apply(teamIdx int, playerID string, automated bool) (models.PickRecord, error) {
	pi := -1
	for i := range s.available {
		if s.available[i].ID == playerID {
			pi = i
			break
		}
	}
	if pi < 0 {
		return models.PickRecord{}, fmt.Errorf("%w: %s", ErrPlayerUnavailable, playerID)
	}
	p := s.available[pi]
	if s.drafted[p.Name] {
		return models.PickRecord{}, fmt.Errorf("%w: %s already drafted", ErrPlayerUnavailable, p.Name)
	}

	team := s.teams[teamIdx]
	if res := roster.ValidateDraftMove(team, &p); !res.IsValid {
		return models.PickRecord{}, fmt.Errorf("%w: %w", ErrIllegalPick, res.Err())
	}
	cat, ok := roster.DetermineRosterCategory(team, &p)
	if !ok {
		return models.PickRecord{}, fmt.Errorf("%w: %w", ErrIllegalPick, roster.ErrNoCategoryCapacity)
	}

	round := s.Round()
	p.Round = round
	p.RosterCategory = cat
	team.Picks = append(team.Picks, models.Pick{Player: p, Round: round, PickNumber: s.CurrentPick, Category: cat})

	s.drafted[p.Name] = true
	s.order = append(s.order, p.Name)
	s.available = append(s.available[:pi], s.available[pi+1:]...)
	s.levels = valuation.CalculateReplacementLevels(s.available)
	valuation.Revalue(s.available, s.levels)

	rec := models.PickRecord{
		SessionID:  s.ID,
		PickNumber: s.CurrentPick,
		Round:      round,
		TeamID:     team.ID,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Position:   p.Position,
		Category:   cat,
		Automated:  automated,
		TS:         time.Now().UnixMilli(),
	}
	s.history = append(s.history, rec)
	logger.Info("Pick applied", append(s.log(), "team_id", team.ID, "player_id", p.ID, "category", cat, "automated", automated)...)
	s.CurrentPick++
	s.notify(EventPick, map[string]interface{}{
		"teamId":     team.ID,
		"playerId":   p.ID,
		"playerName": p.Name,
		"position":   string(p.Position),
		"round":      round,
		"pickNumber": rec.PickNumber,
		"category":   string(cat),
		"automated":  automated,
	})
	return rec, nil
}

// autoPick drafts for the current team with the strategy engine, or
// records a dead pick when nothing is legal
func (s *Session) autoPick(idx int) (models.PickRecord, error) {
	c, ok := strategy.AIDraftPlayer(s.input(idx), s.rng)
	if !ok {
		return s.skip(idx, SkipNoCandidate), nil
	}
	return s.apply(idx, c.Player.ID, true)
}

// Step advances automated teams until the human is due, the draft
// completes, or batch steps have run. batch <= 0 means no limit.
func (s *Session) Step(batch int) (StepResult, error) {
	res := StepResult{Kind: StepAdvanced, Records: []models.PickRecord{}}
	switch s.state {
	case StateIdle:
		return res, ErrDraftNotStarted
	case StateComplete:
		res.Kind = StepComplete
		return res, nil
	}

	for steps := 0; batch <= 0 || steps < batch; steps++ {
		if s.IsComplete() {
			s.complete()
			res.Kind = StepComplete
			return res, nil
		}
		idx := s.CurrentTeamIndex()
		team := s.teams[idx]

		if len(team.Picks) >= team.MaxTotalPlayers {
			res.Records = append(res.Records, s.skip(idx, SkipRosterFull))
			res.Skipped++
			continue
		}
		if idx == s.HumanIndex {
			s.awaitHuman(team)
			res.Kind = StepAwaitingHuman
			return res, nil
		}

		rec, err := s.autoPick(idx)
		if err != nil {
			return res, err
		}
		res.Records = append(res.Records, rec)
		if rec.Skipped {
			res.Skipped++
		} else {
			res.Picks++
		}
	}

	if s.IsComplete() {
		s.complete()
		res.Kind = StepComplete
	}
	return res, nil
}

func (s *Session) awaitHuman(team *models.Team) {
	if s.state == StateAwaitingHuman {
		return
	}
	s.state = StateAwaitingHuman
	logger.Debug("Awaiting human pick", append(s.log(), "team_id", team.ID)...)
	s.notify(EventAwaitHuman, map[string]interface{}{"teamId": team.ID, "pickNumber": s.CurrentPick, "round": s.Round()})
}

// SubmitHumanPick applies the human team's choice when it is their turn
func (s *Session) SubmitHumanPick(playerID string) (models.PickRecord, error) {
	switch s.state {
	case StateIdle:
		return models.PickRecord{}, ErrDraftNotStarted
	case StateComplete:
		return models.PickRecord{}, ErrDraftComplete
	}
	if s.IsComplete() {
		s.complete()
		return models.PickRecord{}, ErrDraftComplete
	}
	idx := s.CurrentTeamIndex()
	if idx != s.HumanIndex {
		return models.PickRecord{}, ErrNotHumanTurn
	}
	rec, err := s.apply(idx, playerID, false)
	if err != nil {
		return rec, err
	}
	s.state = StateRunning
	return rec, nil
}

// AutoPick drafts for whichever team is due, the human included
func (s *Session) AutoPick() (models.PickRecord, error) {
	switch s.state {
	case StateIdle:
		return models.PickRecord{}, ErrDraftNotStarted
	case StateComplete:
		return models.PickRecord{}, ErrDraftComplete
	}
	if s.IsComplete() {
		s.complete()
		return models.PickRecord{}, ErrDraftComplete
	}
	idx := s.CurrentTeamIndex()
	if len(s.teams[idx].Picks) >= s.teams[idx].MaxTotalPlayers {
		rec := s.skip(idx, SkipRosterFull)
		s.state = StateRunning
		return rec, nil
	}
	rec, err := s.autoPick(idx)
	if err != nil {
		return rec, err
	}
	s.state = StateRunning
	return rec, nil
}

// CompleteSimulation runs the draft to the end, auto-drafting for the human
// slot, and returns the results
func (s *Session) CompleteSimulation() (Results, error) {
	if err := s.Start(); err != nil && !errors.Is(err, ErrDraftComplete) {
		return Results{}, err
	}
	for guard := 0; guard <= s.MaxPicks(); guard++ {
		res, err := s.Step(0)
		if err != nil {
			return Results{}, err
		}
		switch res.Kind {
		case StepComplete:
			return s.Results(), nil
		case StepAwaitingHuman:
			if _, err := s.AutoPick(); err != nil {
				return Results{}, err
			}
		}
	}
	s.complete()
	return s.Results(), nil
}

// MoveRoster changes a rostered player's category after validating it
func (s *Session) MoveRoster(teamID, playerID string, category models.RosterCategory) (roster.ValidationResult, error) {
	idx := s.teamIndex(teamID)
	if idx < 0 {
		return roster.ValidationResult{}, ErrTeamNotFound
	}
	team := s.teams[idx]
	target := models.Player{ID: playerID}
	for _, p := range team.Picks {
		if p.Player.ID == playerID {
			target = p.Player
			break
		}
	}
	res := roster.ApplyRosterMove(team, &target, category)
	if res.IsValid {
		logger.Info("Roster move applied", "session_id", s.ID, "team_id", teamID, "player_id", playerID, "category", category)
		s.notify(EventRosterMove, map[string]interface{}{"teamId": teamID, "playerId": playerID, "category": string(category)})
	}
	return res, nil
}

// Restore rebuilds a session by replaying a stored pick log. Every pick is
// validated again, and automated picks must be the engine's own choice, so
// a log that no longer matches the order or the seed is rejected.
func Restore(cfg Config, records []models.PickRecord) (*Session, error) {
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return s, nil
	}
	notify := s.cfg.Notify
	s.cfg.Notify = nil
	defer func() { s.cfg.Notify = notify }()

	if records[0].SessionID != "" {
		s.ID = records[0].SessionID
	}
	s.state = StateRunning
	for _, rec := range records {
		if rec.PickNumber != s.CurrentPick {
			return nil, fmt.Errorf("%w: pick %d, expected %d", ErrReplayMismatch, rec.PickNumber, s.CurrentPick)
		}
		idx := s.CurrentTeamIndex()
		if s.teams[idx].ID != rec.TeamID {
			return nil, fmt.Errorf("%w: pick %d belongs to %s, not %s", ErrReplayMismatch, rec.PickNumber, s.teams[idx].ID, rec.TeamID)
		}
		if rec.Skipped {
			s.history = append(s.history, rec)
			s.CurrentPick++
			continue
		}
		if rec.Automated {
			// replaying the engine's choice keeps the seeded rng in step
			c, ok := strategy.AIDraftPlayer(s.input(idx), s.rng)
			if !ok || c.Player.ID != rec.PlayerID {
				return nil, fmt.Errorf("%w: pick %d was %s, engine now chooses %s", ErrReplayMismatch, rec.PickNumber, rec.PlayerID, c.Player.ID)
			}
		}
		before := len(s.history)
		if _, err := s.apply(idx, rec.PlayerID, rec.Automated); err != nil {
			return nil, fmt.Errorf("replay pick %d: %w", rec.PickNumber, err)
		}
		s.history[before].TS = rec.TS
	}
	if s.IsComplete() {
		s.state = StateComplete
	}
	return s, nil
}
