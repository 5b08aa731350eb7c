package models

import "time"

type Participant struct {
	ID           string    `json:"id" db:"id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	Faction      string    `json:"faction" db:"faction"`
	UserID       *string   `json:"user_id,omitempty" db:"user_id"` // account allowed to enter results for this player
	EnrolledAt   time.Time `json:"enrolled_at" db:"enrolled_at"`
}

// Clone returns a copy that shares nothing with p.
func (p *Participant) Clone() *Participant {
	if p == nil {
		return nil
	}
	c := *p
	if p.UserID != nil {
		u := *p.UserID
		c.UserID = &u
	}
	return &c
}
