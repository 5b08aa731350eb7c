package services

import "github.com/Dosada05/tournament-engine/models"

// Actor is the caller of an operation, resolved by the transport layer.
type Actor struct {
	UserID    string
	Organizer bool // may create and run tournaments
	Admin     bool // may run any tournament
}

// CanManage reports whether the actor runs t.
func (a Actor) CanManage(t *models.Tournament) bool {
	if a.Admin {
		return true
	}
	return a.Organizer && a.UserID != "" && a.UserID == t.OrganizerID
}

// EventPublisher receives notifications after a mutation commits.
type EventPublisher interface {
	Publish(tournamentID string, eventType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, string, interface{}) {}

const (
	EventRoundGenerated         = "ROUND_GENERATED"
	EventRoundDeleted           = "ROUND_DELETED"
	EventMatchUpdated           = "MATCH_UPDATED"
	EventStandingsUpdated       = "STANDINGS_UPDATED"
	EventTournamentStateChanged = "TOURNAMENT_STATE_CHANGED"
)
