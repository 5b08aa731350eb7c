package models

import "time"

// TournamentState представляет состояние жизненного цикла турнира.
type TournamentState string

const (
	StatePending    TournamentState = "pending"
	StateInProgress TournamentState = "in_progress"
	StateFinished   TournamentState = "finished"
)

const (
	MinRounds = 2
	MaxRounds = 5
)

// Tournament представляет турнир и его конфигурацию раундов.
type Tournament struct {
	ID              string          `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	OrganizerID     string          `json:"organizer_id" db:"organizer_id"`
	RoundsMax       int             `json:"rounds_max" db:"rounds_max"`
	Scenarios       []string        `json:"scenarios" db:"scenarios"`
	MaxParticipants int             `json:"max_participants" db:"max_participants"`
	State           TournamentState `json:"state" db:"state"`
	CurrentRound    *int            `json:"current_round,omitempty" db:"current_round"` // nil until the first pairing
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

func (t *Tournament) IsFinished() bool {
	return t.State == StateFinished
}

// Round returns the current round number, 0 when no round has been generated yet.
func (t *Tournament) Round() int {
	if t.CurrentRound == nil {
		return 0
	}
	return *t.CurrentRound
}

// ScenarioFor returns the scenario label configured for a 1-based round.
func (t *Tournament) ScenarioFor(round int) string {
	if round < 1 || round > len(t.Scenarios) {
		return ""
	}
	return t.Scenarios[round-1]
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	c := *t
	if t.Scenarios != nil {
		c.Scenarios = append([]string(nil), t.Scenarios...)
	}
	if t.CurrentRound != nil {
		r := *t.CurrentRound
		c.CurrentRound = &r
	}
	return &c
}
