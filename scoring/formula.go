package scoring

import "github.com/Dosada05/tournament-engine/models"

// ByeTournamentPoints is awarded to the present player of a bye.
const ByeTournamentPoints = 10

const (
	winTournamentPoints  = 10
	drawTournamentPoints = 5
	lossTournamentPoints = 0
	warlordBonus         = 3
)

// ScoreFormula turns the raw inputs of a reported match into victory points
// and tournament points for both sides.
type ScoreFormula interface {
	Score(matchPoints, massacrePoints models.PointPair, warlordKilled models.FlagPair) (victoryPoints, tournamentPoints models.PointPair)
}

// FormulaFunc adapts an ordinary function to ScoreFormula.
type FormulaFunc func(matchPoints, massacrePoints models.PointPair, warlordKilled models.FlagPair) (models.PointPair, models.PointPair)

func (f FormulaFunc) Score(matchPoints, massacrePoints models.PointPair, warlordKilled models.FlagPair) (models.PointPair, models.PointPair) {
	return f(matchPoints, massacrePoints, warlordKilled)
}

// StandardFormula: win 10, draw 5, loss 0 tournament points; victory points are
// the player's own match points plus a bonus for slaying the opposing warlord.
type StandardFormula struct{}

func (StandardFormula) Score(matchPoints, _ models.PointPair, warlordKilled models.FlagPair) (models.PointPair, models.PointPair) {
	vp := models.PointPair{P1: matchPoints.P1, P2: matchPoints.P2}
	if warlordKilled.P1 {
		vp.P1 += warlordBonus
	}
	if warlordKilled.P2 {
		vp.P2 += warlordBonus
	}

	var tp models.PointPair
	switch DecideOutcome(matchPoints) {
	case models.OutcomeP1Wins:
		tp = models.PointPair{P1: winTournamentPoints, P2: lossTournamentPoints}
	case models.OutcomeP2Wins:
		tp = models.PointPair{P1: lossTournamentPoints, P2: winTournamentPoints}
	default:
		tp = models.PointPair{P1: drawTournamentPoints, P2: drawTournamentPoints}
	}
	return vp, tp
}

// DecideOutcome compares match points: higher wins, equal is a draw.
func DecideOutcome(matchPoints models.PointPair) models.Outcome {
	switch {
	case matchPoints.P1 > matchPoints.P2:
		return models.OutcomeP1Wins
	case matchPoints.P2 > matchPoints.P1:
		return models.OutcomeP2Wins
	default:
		return models.OutcomeDraw
	}
}

// ByeResult is the derived result of a bye: the present player (always player 1)
// gets ByeTournamentPoints and nothing else.
func ByeResult() models.ScoreResult {
	return models.ScoreResult{
		TournamentPoints: models.PointPair{P1: ByeTournamentPoints},
	}
}
