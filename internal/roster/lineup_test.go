package roster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

func fullLegalTeam(t *testing.T) *models.Team {
	t.Helper()
	team := newTeam()
	seq := []struct {
		pos models.Position
		n   int
	}{
		{models.PositionGoalkeeper, 2},
		{models.PositionDefense, 4},
		{models.PositionMidfield, 4},
		{models.PositionForward, 3},
		{models.PositionDefense, 1},
		{models.PositionMidfield, 1},
	}
	i := 0
	for _, s := range seq {
		for j := 0; j < s.n; j++ {
			addPick(t, team, player(fmt.Sprintf("p%d", i), s.pos))
			i++
		}
	}
	return team
}

func TestValidateLineupLegalityEmptyTeam(t *testing.T) {
	res := ValidateLineupLegality(newTeam())
	assert.False(t, res.IsValid)
	// G, D, M, F minimums plus the missing active goalkeeper
	assert.Len(t, res.Errors, 5)
	assert.Len(t, res.Warnings, 1)
}

func TestValidateLineupLegalityFullTeam(t *testing.T) {
	team := fullLegalTeam(t)
	res := ValidateLineupLegality(team)
	require.True(t, res.IsValid, "errors: %v", res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidateLineupLegalityReserveFlaggedActive(t *testing.T) {
	team := fullLegalTeam(t)
	for i := range team.Picks {
		if team.Picks[i].Category == models.CategoryReserve {
			team.Picks[i].Player.RosterCategory = models.CategoryActive
			break
		}
	}
	res := ValidateLineupLegality(team)
	assert.False(t, res.IsValid)
	assert.ErrorIs(t, res.Errors[0], ErrLineup)
}

func TestComplianceScore(t *testing.T) {
	tests := []struct {
		errs, warns, want int
	}{
		{0, 0, 100},
		{1, 0, 80},
		{1, 2, 70},
		{5, 0, 0},
		{6, 3, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComplianceScore(tt.errs, tt.warns), "errs=%d warns=%d", tt.errs, tt.warns)
	}
}

func TestGenerateComplianceReport(t *testing.T) {
	report := GenerateComplianceReport(fullLegalTeam(t))
	assert.True(t, report.Compliant)
	assert.Equal(t, 100, report.Score)
	assert.Equal(t, 15, report.Counts.Total)

	empty := GenerateComplianceReport(newTeam())
	assert.False(t, empty.Compliant)
	assert.Equal(t, 0, empty.Score)
}

func TestValidateLeagueComplianceIncompleteRoster(t *testing.T) {
	team := fullLegalTeam(t)
	team.Picks = team.Picks[:len(team.Picks)-1]

	report := ValidateLeagueCompliance(team)
	assert.True(t, report.Compliant)
	assert.Equal(t, 95, report.Score)
	assert.Len(t, report.Warnings, 1)
}
