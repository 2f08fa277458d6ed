package roster

import (
	"fmt"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

// LineupResult is the outcome of a lineup legality check. Warnings never
// affect IsValid.
type LineupResult struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []string          `json:"warnings"`
}

// ValidateLineupLegality checks the active lineup against per-position
// bounds and the team's active cap
func ValidateLineupLegality(team *models.Team) LineupResult {
	c := RosterCounts(team)
	errs := []ValidationError{}
	warnings := []string{}

	for _, pos := range models.Positions {
		limit, ok := team.PositionLimits[pos]
		if !ok {
			continue
		}
		active := c.ByCategory[models.CategoryActive][pos]
		if active < limit.MinActive {
			errs = append(errs, newError(ErrLineup, "%s needs at least %d active %s, has %d", team.Name, limit.MinActive, pos, active))
		}
		if active > limit.MaxActive {
			errs = append(errs, newError(ErrLineup, "%s has %d active %s, max %d", team.Name, active, pos, limit.MaxActive))
		}
		if c.ByPosition[pos] > limit.TotalMax {
			errs = append(errs, newError(ErrPositionFull, "%s has %d %s players, max %d", team.Name, c.ByPosition[pos], pos, limit.TotalMax))
		}
	}

	if c.ByCategory[models.CategoryActive][models.PositionGoalkeeper] == 0 {
		errs = append(errs, newError(ErrLineup, "%s has no active goalkeeper", team.Name))
	}

	for _, p := range team.Picks {
		if p.Category == models.CategoryReserve && p.Player.RosterCategory == models.CategoryActive {
			errs = append(errs, newError(ErrLineup, "%s is a reserve but flagged active", p.Player.Name))
		}
	}

	switch {
	case c.Active > team.MaxActivePlayers:
		errs = append(errs, newError(ErrCategoryFull, "%s has %d active players, max %d", team.Name, c.Active, team.MaxActivePlayers))
	case c.Active < team.MaxActivePlayers:
		warnings = append(warnings, fmt.Sprintf("%s has %d of %d active slots filled", team.Name, c.Active, team.MaxActivePlayers))
	}
	if c.Reserve > team.MaxReservePlayers {
		errs = append(errs, newError(ErrCategoryFull, "%s has %d reserves, max %d", team.Name, c.Reserve, team.MaxReservePlayers))
	}
	if c.Injured > team.MaxInjuredReservePlayers {
		errs = append(errs, newError(ErrCategoryFull, "%s has %d injured reserves, max %d", team.Name, c.Injured, team.MaxInjuredReservePlayers))
	}
	if c.Total > team.MaxTotalPlayers {
		errs = append(errs, newError(ErrRosterFull, "%s has %d players, max %d", team.Name, c.Total, team.MaxTotalPlayers))
	}

	return LineupResult{IsValid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

// ComplianceReport aggregates lineup legality into a 0-100 score
type ComplianceReport struct {
	TeamID     string            `json:"teamId"`
	TeamName   string            `json:"teamName"`
	Compliant  bool              `json:"compliant"`
	Score      int               `json:"score"`
	Counts     Counts            `json:"counts"`
	Violations []ValidationError `json:"violations"`
	Warnings   []string          `json:"warnings"`
}

// ComplianceScore is 100 - 20 per error - 5 per warning, floored at 0
func ComplianceScore(errorCount, warningCount int) int {
	score := 100 - 20*errorCount - 5*warningCount
	if score < 0 {
		return 0
	}
	return score
}

// GenerateComplianceReport builds the itemised report for one team
func GenerateComplianceReport(team *models.Team) ComplianceReport {
	res := ValidateLineupLegality(team)
	return ComplianceReport{
		TeamID:     team.ID,
		TeamName:   team.Name,
		Compliant:  res.IsValid,
		Score:      ComplianceScore(len(res.Errors), len(res.Warnings)),
		Counts:     RosterCounts(team),
		Violations: res.Errors,
		Warnings:   res.Warnings,
	}
}

// ValidateLeagueCompliance is the league-facing name for the same report.
// An incomplete roster is reported as a warning per unfilled slot group.
func ValidateLeagueCompliance(team *models.Team) ComplianceReport {
	report := GenerateComplianceReport(team)
	if n := len(team.Picks); n < team.MaxTotalPlayers {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%s roster incomplete: %d of %d", team.Name, n, team.MaxTotalPlayers))
		report.Score = ComplianceScore(len(report.Violations), len(report.Warnings))
	}
	return report
}
