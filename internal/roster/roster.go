// Package roster holds the roster composition rules every pick must satisfy.
// Validators return structured results; a nil team or player is a caller bug
// and is allowed to panic.
package roster

import (
	"errors"
	"fmt"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

var (
	ErrRosterFull         = errors.New("roster full")
	ErrDuplicatePlayer    = errors.New("duplicate player")
	ErrInvalidPosition    = errors.New("invalid position")
	ErrPositionFull       = errors.New("position full")
	ErrCategoryFull       = errors.New("category full")
	ErrPlayerNotFound     = errors.New("player not on roster")
	ErrSameCategory       = errors.New("player already in category")
	ErrNoCategoryCapacity = errors.New("no roster category has capacity")
	ErrLineup             = errors.New("illegal lineup")
)

// ValidationError is one itemised rule violation
type ValidationError struct {
	Kind    error  `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newError(kind error, format string, args ...any) ValidationError {
	return ValidationError{Kind: kind, Code: codeFor(kind), Message: fmt.Sprintf(format, args...)}
}

func (e ValidationError) Error() string { return e.Message }

func (e ValidationError) Unwrap() error { return e.Kind }

func codeFor(kind error) string {
	switch kind {
	case ErrRosterFull:
		return "RosterFull"
	case ErrDuplicatePlayer:
		return "DuplicatePlayer"
	case ErrInvalidPosition:
		return "InvalidPosition"
	case ErrPositionFull:
		return "PositionFull"
	case ErrCategoryFull:
		return "CategoryFull"
	case ErrPlayerNotFound:
		return "PlayerNotFound"
	case ErrSameCategory:
		return "SameCategory"
	case ErrNoCategoryCapacity:
		return "NoCategoryCapacity"
	default:
		return "LineupViolation"
	}
}

// ValidationResult is the outcome of a draft or roster move check
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationError `json:"errors"`
}

// Err returns nil for a valid result, otherwise all errors joined
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

func result(errs []ValidationError) ValidationResult {
	if errs == nil {
		errs = []ValidationError{}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// Counts partitions a roster by category and position
type Counts struct {
	ByCategory map[models.RosterCategory]map[models.Position]int `json:"byCategory"`
	ByPosition map[models.Position]int                           `json:"byPosition"`
	Active     int                                               `json:"active"`
	Reserve    int                                               `json:"reserve"`
	Injured    int                                               `json:"injuredReserve"`
	Total      int                                               `json:"total"`
}

// Category returns the per-category total
func (c Counts) Category(cat models.RosterCategory) int {
	switch cat {
	case models.CategoryActive:
		return c.Active
	case models.CategoryReserve:
		return c.Reserve
	case models.CategoryInjuredReserve:
		return c.Injured
	}
	return 0
}

// RosterCounts partitions team.Picks by category and position
func RosterCounts(team *models.Team) Counts {
	c := Counts{
		ByCategory: map[models.RosterCategory]map[models.Position]int{
			models.CategoryActive:         {},
			models.CategoryReserve:        {},
			models.CategoryInjuredReserve: {},
		},
		ByPosition: map[models.Position]int{},
	}
	for _, p := range team.Picks {
		cat := p.Category
		if !cat.Valid() {
			cat = models.CategoryReserve
		}
		pos := p.Player.Position
		c.ByCategory[cat][pos]++
		c.ByPosition[pos]++
		c.Total++
		switch cat {
		case models.CategoryActive:
			c.Active++
		case models.CategoryReserve:
			c.Reserve++
		case models.CategoryInjuredReserve:
			c.Injured++
		}
	}
	return c
}

func categoryCapacity(team *models.Team, cat models.RosterCategory) int {
	switch cat {
	case models.CategoryActive:
		return team.MaxActivePlayers
	case models.CategoryReserve:
		return team.MaxReservePlayers
	case models.CategoryInjuredReserve:
		return team.MaxInjuredReservePlayers
	}
	return 0
}

// CanAddToCategory reports whether one more player of pos fits in cat
func CanAddToCategory(team *models.Team, cat models.RosterCategory, pos models.Position) bool {
	return canAdd(team, RosterCounts(team), cat, pos)
}

func canAdd(team *models.Team, c Counts, cat models.RosterCategory, pos models.Position) bool {
	if !cat.Valid() {
		return false
	}
	if c.Category(cat) >= categoryCapacity(team, cat) {
		return false
	}
	if cat == models.CategoryActive {
		limit, ok := team.PositionLimits[pos]
		if !ok || c.ByCategory[models.CategoryActive][pos] >= limit.MaxActive {
			return false
		}
	}
	return true
}

// DetermineRosterCategory places a new player active, then reserve, then
// injured reserve. ok is false when no category has capacity, which callers
// must treat as a rejected pick.
func DetermineRosterCategory(team *models.Team, player *models.Player) (models.RosterCategory, bool) {
	c := RosterCounts(team)
	for _, cat := range models.Categories {
		if canAdd(team, c, cat, player.Position) {
			return cat, true
		}
	}
	return "", false
}

// HasPlayer reports whether the player is already rostered, by id or name
func HasPlayer(team *models.Team, player *models.Player) bool {
	return indexOf(team, player) >= 0
}

func indexOf(team *models.Team, player *models.Player) int {
	for i, p := range team.Picks {
		if (player.ID != "" && p.Player.ID == player.ID) || (player.Name != "" && p.Player.Name == player.Name) {
			return i
		}
	}
	return -1
}

// ValidateDraftMove checks whether player may be drafted onto team. A full
// roster returns immediately; every other violation is collected.
func ValidateDraftMove(team *models.Team, player *models.Player) ValidationResult {
	if len(team.Picks) >= team.MaxTotalPlayers {
		return result([]ValidationError{
			newError(ErrRosterFull, "%s already has %d of %d players", team.Name, len(team.Picks), team.MaxTotalPlayers),
		})
	}

	var errs []ValidationError
	if HasPlayer(team, player) {
		errs = append(errs, newError(ErrDuplicatePlayer, "%s is already on %s", player.Name, team.Name))
	}
	if !player.Position.Valid() {
		errs = append(errs, newError(ErrInvalidPosition, "%q is not a recognised position", player.Position))
		return result(errs)
	}

	c := RosterCounts(team)
	limit := team.PositionLimits[player.Position]
	if c.ByPosition[player.Position] >= limit.TotalMax {
		errs = append(errs, newError(ErrPositionFull, "%s already has %d of %d %s players",
			team.Name, c.ByPosition[player.Position], limit.TotalMax, player.Position))
	}
	return result(errs)
}

// ValidateRosterMove checks moving an already rostered player to newCategory.
// Capacity is evaluated with the player provisionally removed.
func ValidateRosterMove(team *models.Team, player *models.Player, newCategory models.RosterCategory) ValidationResult {
	idx := indexOf(team, player)
	if idx < 0 {
		return result([]ValidationError{newError(ErrPlayerNotFound, "%s is not on %s", player.Name, team.Name)})
	}

	var errs []ValidationError
	current := team.Picks[idx]
	if current.Category == newCategory {
		errs = append(errs, newError(ErrSameCategory, "%s is already %s", player.Name, newCategory))
		return result(errs)
	}

	without := *team
	without.Picks = make([]models.Pick, 0, len(team.Picks)-1)
	without.Picks = append(without.Picks, team.Picks[:idx]...)
	without.Picks = append(without.Picks, team.Picks[idx+1:]...)
	if !CanAddToCategory(&without, newCategory, current.Player.Position) {
		errs = append(errs, newError(ErrCategoryFull, "%s has no %s capacity for %s", team.Name, newCategory, current.Player.Position))
	}
	return result(errs)
}

// ApplyRosterMove validates and then moves the player in place
func ApplyRosterMove(team *models.Team, player *models.Player, newCategory models.RosterCategory) ValidationResult {
	res := ValidateRosterMove(team, player, newCategory)
	if !res.IsValid {
		return res
	}
	idx := indexOf(team, player)
	team.Picks[idx].Category = newCategory
	team.Picks[idx].Player.RosterCategory = newCategory
	return res
}
