package models

// StandingRow is derived from confirmed matches on every query and never stored
// as the source of truth.
type StandingRow struct {
	Rank             int    `json:"rank"`
	ParticipantID    string `json:"participant_id"`
	TournamentPoints int    `json:"tournament_points"`
	VictoryPoints    int    `json:"victory_points"`  // tie-break 1
	MassacrePoints   int    `json:"massacre_points"` // tie-break 2
	MatchesPlayed    int    `json:"matches_played"`
	Wins             int    `json:"wins"`
	Draws            int    `json:"draws"`
	Losses           int    `json:"losses"`
	Byes             int    `json:"byes"`

	Participant *Participant `json:"participant,omitempty"`
}

// RoundView groups the matches of one round. A round is complete once every
// match has an outcome; confirmation is tracked separately.
type RoundView struct {
	Number    int      `json:"number"`
	Scenario  string   `json:"scenario"`
	Matches   []*Match `json:"matches"`
	Complete  bool     `json:"complete"`
	Confirmed bool     `json:"confirmed"`
}

// NewRoundView builds the view for matches already filtered to a single round.
func NewRoundView(number int, scenario string, matches []*Match) RoundView {
	view := RoundView{
		Number:    number,
		Scenario:  scenario,
		Matches:   matches,
		Complete:  len(matches) > 0,
		Confirmed: len(matches) > 0,
	}
	for _, m := range matches {
		if m.Outcome == nil {
			view.Complete = false
		}
		if !m.Confirmed {
			view.Confirmed = false
		}
	}
	return view
}
