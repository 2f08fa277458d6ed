package dal

import (
	"errors"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

var ErrDuplicatePick = errors.New("pick already recorded")

// DraftDAL defines the interface for data access layer. It stores the
// draftable player pool and the append-only pick log of each session.
// A session counts as started by StartSession or by its first recorded
// pick; LatestSession is the most recently started one.
type DraftDAL interface {
	ListPlayers() ([]models.Player, error)
	SavePlayers(players []models.Player) error
	StartSession(sessionID string) error
	RecordPick(rec models.PickRecord) error
	ListPicks(sessionID string) ([]models.PickRecord, error)
	LatestSession() (string, error)
	Reset() error
	Close() error
}
