package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MatchKind tags a table as a regular game or a bye.
type MatchKind string

const (
	MatchKindNormal MatchKind = "normal"
	MatchKindBye    MatchKind = "bye"
)

type Outcome string

const (
	OutcomeP1Wins Outcome = "p1_wins"
	OutcomeP2Wins Outcome = "p2_wins"
	OutcomeDraw   Outcome = "draw"
	OutcomeBye    Outcome = "bye"
)

// MatchState is derived from the stored fields, never persisted.
type MatchState string

const (
	MatchStateUnplayed  MatchState = "unplayed"
	MatchStateReported  MatchState = "reported"
	MatchStateConfirmed MatchState = "confirmed"
)

type PointPair struct {
	P1 int `json:"p1"`
	P2 int `json:"p2"`
}

type FlagPair struct {
	P1 bool `json:"p1"`
	P2 bool `json:"p2"`
}

// ScoreReport holds the raw inputs entered for a table.
// WarlordKilled.P1 means player 1 slew player 2's warlord (and vice versa).
type ScoreReport struct {
	MatchPoints    PointPair `json:"match_points"`
	MassacrePoints PointPair `json:"massacre_points"`
	WarlordKilled  FlagPair  `json:"warlord_killed"`
}

// ScoreResult holds the outputs derived from a ScoreReport by the score formula.
type ScoreResult struct {
	VictoryPoints    PointPair `json:"victory_points"`
	TournamentPoints PointPair `json:"tournament_points"`
}

type Match struct {
	ID            string       `json:"id" db:"id"`
	TournamentID  string       `json:"tournament_id" db:"tournament_id"`
	Round         int          `json:"round" db:"round"`
	TableNumber   int          `json:"table_number" db:"table_number"`
	Kind          MatchKind    `json:"kind" db:"kind"`
	Player1ID     string       `json:"player1_id" db:"player1_id"`
	Player2ID     *string      `json:"player2_id" db:"player2_id"` // nil for a bye
	FirstPlayerID *string      `json:"first_player_id,omitempty" db:"first_player_id"`
	Report        *ScoreReport `json:"report,omitempty" db:"report"`
	Result        *ScoreResult `json:"result,omitempty" db:"result"`
	Outcome       *Outcome     `json:"outcome,omitempty" db:"outcome"`
	Confirmed     bool         `json:"confirmed" db:"confirmed"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

func (m *Match) IsBye() bool {
	return m.Kind == MatchKindBye
}

func (m *Match) State() MatchState {
	switch {
	case m.Confirmed:
		return MatchStateConfirmed
	case m.Outcome != nil:
		return MatchStateReported
	default:
		return MatchStateUnplayed
	}
}

func (m *Match) HasPlayer(participantID string) bool {
	if m.Player1ID == participantID {
		return true
	}
	return m.Player2ID != nil && *m.Player2ID == participantID
}

// Opponent returns the other side of the table, or "" for a bye or a foreign id.
func (m *Match) Opponent(participantID string) string {
	if m.Player2ID == nil {
		return ""
	}
	switch participantID {
	case m.Player1ID:
		return *m.Player2ID
	case *m.Player2ID:
		return m.Player1ID
	}
	return ""
}

func (m *Match) Players() []string {
	if m.Player2ID == nil {
		return []string{m.Player1ID}
	}
	return []string{m.Player1ID, *m.Player2ID}
}

// Clone returns a deep copy of the match.
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	if m.Player2ID != nil {
		p2 := *m.Player2ID
		c.Player2ID = &p2
	}
	if m.FirstPlayerID != nil {
		fp := *m.FirstPlayerID
		c.FirstPlayerID = &fp
	}
	if m.Report != nil {
		r := *m.Report
		c.Report = &r
	}
	if m.Result != nil {
		r := *m.Result
		c.Result = &r
	}
	if m.Outcome != nil {
		o := *m.Outcome
		c.Outcome = &o
	}
	return &c
}

func (r ScoreReport) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *ScoreReport) Scan(src interface{}) error {
	return scanJSON(src, r)
}

func (r ScoreResult) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *ScoreResult) Scan(src interface{}) error {
	return scanJSON(src, r)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported type %T for JSON column", src)
	}
}
