package roster

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

func newTeam() *models.Team {
	return &models.Team{
		ID:   "t1",
		Name: "Team One",
		PositionLimits: map[models.Position]models.PositionLimit{
			models.PositionGoalkeeper: {MinActive: 1, MaxActive: 1, TotalMax: 2},
			models.PositionDefense:    {MinActive: 3, MaxActive: 5, TotalMax: 6},
			models.PositionMidfield:   {MinActive: 3, MaxActive: 5, TotalMax: 6},
			models.PositionForward:    {MinActive: 1, MaxActive: 3, TotalMax: 4},
		},
		MaxTotalPlayers:          15,
		MaxActivePlayers:         11,
		MaxReservePlayers:        4,
		MaxInjuredReservePlayers: 1,
	}
}

func player(id string, pos models.Position) models.Player {
	return models.Player{ID: id, Name: "Player " + id, Position: pos}
}

func addPick(t *testing.T, team *models.Team, p models.Player) {
	t.Helper()
	cat, ok := DetermineRosterCategory(team, &p)
	require.True(t, ok, "no category for %s", p.ID)
	p.RosterCategory = cat
	team.Picks = append(team.Picks, models.Pick{Player: p, Round: len(team.Picks) + 1, Category: cat})
}

func TestRosterCounts(t *testing.T) {
	team := newTeam()
	for i := 0; i < 4; i++ {
		addPick(t, team, player(fmt.Sprintf("f%d", i), models.PositionForward))
	}

	c := RosterCounts(team)
	assert.Equal(t, 4, c.Total)
	assert.Equal(t, 4, c.ByPosition[models.PositionForward])
	assert.Equal(t, 3, c.ByCategory[models.CategoryActive][models.PositionForward])
	assert.Equal(t, 1, c.ByCategory[models.CategoryReserve][models.PositionForward])
	assert.Equal(t, 3, c.Active)
	assert.Equal(t, 1, c.Reserve)
}

func TestDetermineRosterCategoryOrder(t *testing.T) {
	team := newTeam()
	g1 := player("g1", models.PositionGoalkeeper)
	cat, ok := DetermineRosterCategory(team, &g1)
	require.True(t, ok)
	assert.Equal(t, models.CategoryActive, cat)
	addPick(t, team, g1)

	g2 := player("g2", models.PositionGoalkeeper)
	cat, ok = DetermineRosterCategory(team, &g2)
	require.True(t, ok)
	assert.Equal(t, models.CategoryReserve, cat)
}

func TestDetermineRosterCategoryNoCapacity(t *testing.T) {
	team := newTeam()
	team.MaxActivePlayers = 0
	team.MaxReservePlayers = 0
	team.MaxInjuredReservePlayers = 0

	p := player("m1", models.PositionMidfield)
	_, ok := DetermineRosterCategory(team, &p)
	assert.False(t, ok)
}

func TestCanAddToCategoryRespectsActiveCap(t *testing.T) {
	team := newTeam()
	team.MaxActivePlayers = 1
	addPick(t, team, player("m1", models.PositionMidfield))

	assert.False(t, CanAddToCategory(team, models.CategoryActive, models.PositionDefense))
	assert.True(t, CanAddToCategory(team, models.CategoryReserve, models.PositionDefense))
	assert.False(t, CanAddToCategory(team, models.RosterCategory("bench"), models.PositionDefense))
}

func TestValidateDraftMovePositionFull(t *testing.T) {
	team := newTeam()
	for i := 0; i < 4; i++ {
		addPick(t, team, player(fmt.Sprintf("f%d", i), models.PositionForward))
	}

	fifth := player("f5", models.PositionForward)
	res := ValidateDraftMove(team, &fifth)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Err(), ErrPositionFull))
	assert.Equal(t, "PositionFull", res.Errors[0].Code)

	mid := player("m1", models.PositionMidfield)
	res = ValidateDraftMove(team, &mid)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.NoError(t, res.Err())
}

func TestValidateDraftMoveRosterFullShortCircuits(t *testing.T) {
	team := newTeam()
	team.MaxTotalPlayers = 1
	addPick(t, team, player("f1", models.PositionForward))

	dup := player("f1", models.PositionForward)
	res := ValidateDraftMove(team, &dup)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Err(), ErrRosterFull)
}

func TestValidateDraftMoveCollectsErrors(t *testing.T) {
	team := newTeam()
	addPick(t, team, player("x", models.PositionForward))

	bad := models.Player{ID: "x", Name: "Player x", Position: "Q"}
	res := ValidateDraftMove(team, &bad)
	assert.False(t, res.IsValid)
	assert.ErrorIs(t, res.Err(), ErrDuplicatePlayer)
	assert.ErrorIs(t, res.Err(), ErrInvalidPosition)
}

func TestValidateDraftMoveDuplicateByName(t *testing.T) {
	team := newTeam()
	addPick(t, team, player("a", models.PositionForward))

	renamed := models.Player{ID: "different", Name: "Player a", Position: models.PositionForward}
	res := ValidateDraftMove(team, &renamed)
	assert.ErrorIs(t, res.Err(), ErrDuplicatePlayer)
}

func TestValidateDraftMoveIdempotent(t *testing.T) {
	team := newTeam()
	for i := 0; i < 4; i++ {
		addPick(t, team, player(fmt.Sprintf("f%d", i), models.PositionForward))
	}
	p := player("f9", models.PositionForward)
	assert.Equal(t, ValidateDraftMove(team, &p), ValidateDraftMove(team, &p))
}

func TestValidateRosterMove(t *testing.T) {
	team := newTeam()
	addPick(t, team, player("g1", models.PositionGoalkeeper))
	addPick(t, team, player("g2", models.PositionGoalkeeper))

	g1 := team.Picks[0].Player
	g2 := team.Picks[1].Player

	tests := []struct {
		name    string
		player  models.Player
		target  models.RosterCategory
		wantErr error
	}{
		{"not on roster", player("zz", models.PositionForward), models.CategoryReserve, ErrPlayerNotFound},
		{"same category", g1, models.CategoryActive, ErrSameCategory},
		{"active goalkeeper slot taken", g2, models.CategoryActive, ErrCategoryFull},
		{"to injured reserve", g1, models.CategoryInjuredReserve, nil},
		{"to reserve", g1, models.CategoryReserve, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateRosterMove(team, &tt.player, tt.target)
			if tt.wantErr == nil {
				assert.True(t, res.IsValid, "errors: %v", res.Errors)
				return
			}
			assert.ErrorIs(t, res.Err(), tt.wantErr)
		})
	}
}

func TestApplyRosterMoveSwapsGoalkeepers(t *testing.T) {
	team := newTeam()
	addPick(t, team, player("g1", models.PositionGoalkeeper))
	addPick(t, team, player("g2", models.PositionGoalkeeper))

	g1 := team.Picks[0].Player
	g2 := team.Picks[1].Player
	require.True(t, ApplyRosterMove(team, &g1, models.CategoryInjuredReserve).IsValid)
	require.True(t, ApplyRosterMove(team, &g2, models.CategoryActive).IsValid)

	assert.Equal(t, models.CategoryInjuredReserve, team.Picks[0].Category)
	assert.Equal(t, models.CategoryActive, team.Picks[1].Category)
	assert.Equal(t, models.CategoryActive, team.Picks[1].Player.RosterCategory)
}

func TestLegalityInvariantUnderFill(t *testing.T) {
	team := newTeam()
	order := []models.Position{
		models.PositionForward, models.PositionForward, models.PositionForward, models.PositionForward, models.PositionForward,
		models.PositionMidfield, models.PositionMidfield, models.PositionMidfield, models.PositionMidfield, models.PositionMidfield,
		models.PositionMidfield, models.PositionMidfield, models.PositionDefense, models.PositionDefense, models.PositionDefense,
		models.PositionDefense, models.PositionDefense, models.PositionDefense, models.PositionDefense, models.PositionGoalkeeper,
		models.PositionGoalkeeper, models.PositionGoalkeeper,
	}
	for i, pos := range order {
		p := player(fmt.Sprintf("p%d", i), pos)
		if !ValidateDraftMove(team, &p).IsValid {
			continue
		}
		cat, ok := DetermineRosterCategory(team, &p)
		if !ok {
			continue
		}
		team.Picks = append(team.Picks, models.Pick{Player: p, Category: cat})

		c := RosterCounts(team)
		for pos, limit := range team.PositionLimits {
			assert.LessOrEqual(t, c.ByCategory[models.CategoryActive][pos], limit.MaxActive)
			assert.LessOrEqual(t, c.ByPosition[pos], limit.TotalMax)
		}
		assert.LessOrEqual(t, c.Total, team.MaxTotalPlayers)
		assert.LessOrEqual(t, c.Active, team.MaxActivePlayers)
	}
}
