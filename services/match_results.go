package services

import (
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/scoring"
)

// Результат матча проходит состояния unplayed -> reported -> confirmed и обратно
// в reported только через Unconfirm. Все функции ниже работают с копией матча:
// при ошибке исходный матч не меняется.

// ResultInput is what the match-entry surface submits for one table.
type ResultInput struct {
	MatchPoints    models.PointPair `json:"match_points"`
	MassacrePoints models.PointPair `json:"massacre_points"`
	WarlordKilled  models.FlagPair  `json:"warlord_killed"`
}

func (in ResultInput) validate() error {
	if in.MatchPoints.P1 < 0 || in.MatchPoints.P2 < 0 || in.MassacrePoints.P1 < 0 || in.MassacrePoints.P2 < 0 {
		return ErrNegativeScore
	}
	if in.MatchPoints.P1 == 0 && in.MatchPoints.P2 == 0 {
		return ErrEmptyScore
	}
	return nil
}

// AssignFirstPlayer records which side plays first.
func AssignFirstPlayer(m *models.Match, playerID string) (*models.Match, error) {
	if m.IsBye() {
		return nil, ErrByeHasNoFirstPlayer
	}
	if m.Confirmed {
		return nil, ErrMatchConfirmed
	}
	if playerID == "" || !m.HasPlayer(playerID) {
		return nil, ErrPlayerNotInMatch
	}
	next := m.Clone()
	next.FirstPlayerID = &playerID
	return next, nil
}

// ReportResult stores the raw scores, derives outcome and points with formula
// and leaves the match unconfirmed. Re-reporting replaces the previous entry.
func ReportResult(m *models.Match, in ResultInput, formula scoring.ScoreFormula) (*models.Match, error) {
	if m.IsBye() {
		return nil, ErrByeNotReportable
	}
	if m.Confirmed {
		return nil, ErrMatchConfirmed
	}
	if m.FirstPlayerID == nil {
		return nil, ErrFirstPlayerNotSet
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if formula == nil {
		formula = scoring.StandardFormula{}
	}

	vp, tp := formula.Score(in.MatchPoints, in.MassacrePoints, in.WarlordKilled)
	outcome := scoring.DecideOutcome(in.MatchPoints)

	next := m.Clone()
	next.Report = &models.ScoreReport{
		MatchPoints:    in.MatchPoints,
		MassacrePoints: in.MassacrePoints,
		WarlordKilled:  in.WarlordKilled,
	}
	next.Result = &models.ScoreResult{VictoryPoints: vp, TournamentPoints: tp}
	next.Outcome = &outcome
	next.Confirmed = false
	return next, nil
}

// Confirm makes the match count in standings. Confirming twice is a no-op.
func Confirm(m *models.Match, actorIsOrganizer bool) (*models.Match, error) {
	if !actorIsOrganizer {
		return nil, ErrForbiddenOperation
	}
	if m.Outcome == nil {
		return nil, ErrMatchHasNoOutcome
	}
	next := m.Clone()
	next.Confirmed = true
	return next, nil
}

// Unconfirm returns the match to reported; its points stop counting at once.
func Unconfirm(m *models.Match, actorIsOrganizer bool) (*models.Match, error) {
	if !actorIsOrganizer {
		return nil, ErrForbiddenOperation
	}
	next := m.Clone()
	next.Confirmed = false
	return next, nil
}
