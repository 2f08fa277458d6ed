// Package service owns the live draft session. It serialises every call so
// that validating and applying a pick is atomic, appends each pick to the
// store, publishes events, and mirrors picks to analytics.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/clickhouse"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/config"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/dal"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/draft"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/fixtures"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/metrics"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/minutes"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/roster"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/strategy"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/valuation"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPersist        = errors.New("failed to persist pick")
)

const (
	analyticsTimeout   = 5 * time.Second
	defaultGameweeks   = 5
	defaultADPMinDraft = 1
)

// Publisher receives draft events; *pubsub.PubSub satisfies it
type Publisher interface {
	Notify(eventType string, payload map[string]interface{})
}

// Options wires a Service
type Options struct {
	League   config.League
	Store    dal.DraftDAL
	Players  []models.Player // nil loads the pool from Store
	Fixtures []models.Fixture
	Seed     uint64

	Events    Publisher
	Analytics clickhouse.Analytics
	Metrics   *metrics.Registry

	// ADPMinDrafts is how many sessions a player must appear in before
	// their average draft position is used
	ADPMinDrafts int
	// Restore replays the latest stored session on start-up
	Restore bool
}

// Service coordinates one draft session with its collaborators
type Service struct {
	mu        sync.Mutex
	opts      Options
	session   *draft.Session
	pool      map[string]models.Player
	persisted int
	wg        sync.WaitGroup
}

// PlayerOutlook combines a player's fixture run and playing-time projection
type PlayerOutlook struct {
	Player   models.Player      `json:"player"`
	Fixtures fixtures.Outlook   `json:"fixtures"`
	Minutes  minutes.Prediction `json:"minutes"`
}

// New builds the service and, when asked, resumes the latest stored draft
func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("service needs a store")
	}
	if err := opts.League.Validate(); err != nil {
		return nil, fmt.Errorf("invalid league: %w", err)
	}
	if opts.ADPMinDrafts <= 0 {
		opts.ADPMinDrafts = defaultADPMinDraft
	}
	if opts.Players == nil {
		players, err := opts.Store.ListPlayers()
		if err != nil {
			return nil, fmt.Errorf("load players: %w", err)
		}
		opts.Players = players
	}

	s := &Service{opts: opts}
	s.indexPool()

	cfg := s.sessionConfig()
	if opts.Restore {
		if sess, err := s.restore(cfg); err != nil {
			logger.Warn("Could not restore stored draft, starting fresh", "error", err)
		} else if sess != nil {
			s.session = sess
			s.persisted = len(sess.History())
		}
	}
	if s.session == nil {
		sess, err := draft.New(cfg)
		if err != nil {
			return nil, err
		}
		s.session = sess
		if err := opts.Store.StartSession(sess.ID); err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
	}
	return s, nil
}

func (s *Service) indexPool() {
	pool := append([]models.Player(nil), s.opts.Players...)
	valuation.Prepare(pool, s.opts.League.Scoring)
	s.pool = make(map[string]models.Player, len(pool))
	for _, p := range pool {
		s.pool[p.ID] = p
	}
}

func (s *Service) sessionConfig() draft.Config {
	l := s.opts.League
	return draft.Config{
		Teams:       l.BuildTeams(),
		Pool:        s.opts.Players,
		Rules:       l.Scoring,
		TotalRounds: l.Rounds,
		HumanIndex:  l.HumanIndex,
		Seed:        s.opts.Seed,
		Simulation:  l.Simulation,
		Fixtures:    s.opts.Fixtures,
		FromWeek:    l.FromWeek,
		Notify:      s.notify,
	}
}

func (s *Service) restore(cfg draft.Config) (*draft.Session, error) {
	id, err := s.opts.Store.LatestSession()
	if err != nil || id == "" {
		return nil, err
	}
	picks, err := s.opts.Store.ListPicks(id)
	if err != nil {
		return nil, err
	}
	if len(picks) == 0 {
		// started, or reset, with nothing drafted yet
		sess, err := draft.New(cfg)
		if err != nil {
			return nil, err
		}
		sess.ID = id
		logger.Info("Resumed empty draft session", "session_id", id)
		return sess, nil
	}
	sess, err := draft.Restore(cfg, picks)
	if err != nil {
		return nil, err
	}
	logger.Info("Restored draft session", "session_id", sess.ID, "picks", len(picks), "state", sess.State())
	return sess, nil
}

func (s *Service) notify(eventType string, payload map[string]interface{}) {
	if eventType == draft.EventComplete && s.opts.Metrics != nil {
		s.opts.Metrics.DraftsCompleted.Inc()
	}
	if s.opts.Events != nil {
		s.opts.Events.Notify(eventType, payload)
	}
}

// flush appends every pick the store has not seen yet. Records that fail
// stay pending and are retried on the next call.
func (s *Service) flush() error {
	history := s.session.History()
	for s.persisted < len(history) {
		rec := history[s.persisted]
		if err := s.opts.Store.RecordPick(rec); err != nil && !errors.Is(err, dal.ErrDuplicatePick) {
			logger.Error("Failed to persist pick", "session_id", rec.SessionID, "pick", rec.PickNumber, "error", err)
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
		s.persisted++
		if s.opts.Metrics != nil {
			s.opts.Metrics.ObservePick(rec)
		}
		s.mirror(rec)
	}
	return nil
}

// mirror sends a pick to analytics without holding up the draft
func (s *Service) mirror(rec models.PickRecord) {
	if s.opts.Analytics == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), analyticsTimeout)
		defer cancel()
		if err := s.opts.Analytics.RecordPick(ctx, rec); err != nil {
			logger.Warn("Analytics pick record failed", "session_id", rec.SessionID, "pick", rec.PickNumber, "error", err)
			if s.opts.Metrics != nil {
				s.opts.Metrics.AnalyticsErrors.WithLabelValues("record_pick").Inc()
			}
		}
	}()
}

// State returns the current snapshot
func (s *Service) State() models.DraftState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Snapshot()
}

// SessionID returns the live session id
func (s *Service) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.ID
}

// Start begins the draft
func (s *Service) Start() (models.DraftState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.Start(); err != nil {
		return s.session.Snapshot(), err
	}
	return s.session.Snapshot(), nil
}

// Step advances automated teams. The draft is started first if idle.
func (s *Service) Step(batch int) (draft.StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if s.session.State() == draft.StateIdle {
		if err := s.session.Start(); err != nil {
			return draft.StepResult{}, err
		}
	}
	res, err := s.session.Step(batch)
	if s.opts.Metrics != nil {
		result := string(res.Kind)
		if err != nil {
			result = "error"
		}
		s.opts.Metrics.ObserveStep(result, time.Since(start))
	}
	if ferr := s.flush(); ferr != nil && err == nil {
		err = ferr
	}
	return res, err
}

// Submit applies the human team's pick
func (s *Service) Submit(playerID string) (models.PickRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.session.SubmitHumanPick(playerID)
	if err != nil {
		return rec, err
	}
	return rec, s.flush()
}

// AutoPick drafts for whichever team is due
func (s *Service) AutoPick() (models.PickRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.session.AutoPick()
	if err != nil {
		return rec, err
	}
	return rec, s.flush()
}

// Simulate runs the draft to completion, the human slot included
func (s *Service) Simulate() (draft.Results, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.session.CompleteSimulation()
	if ferr := s.flush(); ferr != nil && err == nil {
		err = ferr
	}
	return res, err
}

// Reset discards the live draft and starts a new idle session. The old
// session's picks stay in the store and the new session is recorded as the
// latest, so a restart resumes it.
func (s *Service) Reset() (models.DraftState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flush(); err != nil {
		logger.Warn("Reset dropped unpersisted picks", "session_id", s.session.ID,
			"pending", len(s.session.History())-s.persisted, "error", err)
	}
	s.session.Reset()
	s.persisted = 0
	if err := s.opts.Store.StartSession(s.session.ID); err != nil {
		logger.Error("Failed to record reset session", "session_id", s.session.ID, "error", err)
		return s.session.Snapshot(), fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return s.session.Snapshot(), nil
}

// Move changes a rostered player's category
func (s *Service) Move(teamID, playerID string, category models.RosterCategory) (roster.ValidationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.MoveRoster(teamID, playerID, category)
}

// Recommendations ranks the pool for a team. An empty id means the team
// currently on the clock.
func (s *Service) Recommendations(teamID string) (strategy.Recommendations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if teamID == "" {
		teamID = s.session.Snapshot().CurrentTeamID
	}
	start := time.Now()
	recs, err := s.session.Recommendations(teamID)
	if err == nil && s.opts.Metrics != nil {
		s.opts.Metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	}
	return recs, err
}

// Compliance reports a team's lineup legality
func (s *Service) Compliance(teamID string) (roster.ComplianceReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.session.Team(teamID)
	if !ok {
		return roster.ComplianceReport{}, draft.ErrTeamNotFound
	}
	return roster.ValidateLeagueCompliance(&team), nil
}

// Teams returns every team in draft-slot order
func (s *Service) Teams() []models.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Teams()
}

// Team returns one team
func (s *Service) Team(id string) (models.Team, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Team(id)
}

// Players lists undrafted players by VORP, optionally for one position.
// limit <= 0 returns all of them.
func (s *Service) Players(pos models.Position, limit int) []models.Player {
	s.mu.Lock()
	available := s.session.Available()
	s.mu.Unlock()

	out := available[:0]
	for _, p := range available {
		if pos == "" || p.Position == pos {
			out = append(out, p)
		}
	}
	valuation.SortByVORP(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Player returns a player from the full pool, drafted or not
func (s *Service) Player(id string) (models.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.session.Available() {
		if p.ID == id {
			return p, true
		}
	}
	p, ok := s.pool[id]
	return p, ok
}

// Outlook projects a player's next gameweeks of fixtures and minutes
func (s *Service) Outlook(playerID string, gameweeks int) (PlayerOutlook, error) {
	if gameweeks <= 0 {
		gameweeks = defaultGameweeks
	}
	p, ok := s.Player(playerID)
	if !ok {
		return PlayerOutlook{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	return PlayerOutlook{
		Player:   p,
		Fixtures: fixtures.PlayerOutlook(&p, s.opts.Fixtures, s.opts.League.FromWeek, gameweeks),
		Minutes:  minutes.PredictPlayerMinutes(&p, minutes.Options{}),
	}, nil
}

// Results summarises the live draft
func (s *Service) Results() draft.Results {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Results()
}

// History returns the live session's pick log
func (s *Service) History() []models.PickRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.History()
}

// League returns the league settings in use
func (s *Service) League() config.League {
	return s.opts.League
}

// RefreshADP pulls average draft positions from analytics into the session
func (s *Service) RefreshADP(ctx context.Context) error {
	if s.opts.Analytics == nil {
		return nil
	}
	adp, err := s.opts.Analytics.AverageDraftPositions(ctx, s.opts.ADPMinDrafts)
	if err != nil {
		if s.opts.Metrics != nil {
			s.opts.Metrics.AnalyticsErrors.WithLabelValues("adp").Inc()
		}
		return err
	}
	s.mu.Lock()
	s.session.SetADP(adp)
	s.mu.Unlock()
	if s.opts.Metrics != nil {
		s.opts.Metrics.ADPPlayers.Set(float64(len(adp)))
	}
	logger.Debug("ADP refreshed", "players", len(adp))
	return nil
}

// RunADPRefresh refreshes ADP every interval until ctx is done
func (s *Service) RunADPRefresh(ctx context.Context, interval time.Duration) {
	if s.opts.Analytics == nil || interval <= 0 {
		return
	}
	if err := s.RefreshADP(ctx); err != nil {
		logger.Warn("ADP refresh failed", "error", err)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RefreshADP(ctx); err != nil {
				logger.Warn("ADP refresh failed", "error", err)
			}
		}
	}
}

// Wait blocks until pending analytics writes finish
func (s *Service) Wait() {
	s.wg.Wait()
}
