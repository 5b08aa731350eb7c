package brackets

import (
	"context"
	"errors"

	"github.com/Dosada05/tournament-engine/models"
)

var (
	ErrNotEnoughParticipants = errors.New("not enough participants to generate pairings (minimum 2)")
	ErrRoundAlreadyPaired    = errors.New("pairings for this round already exist")
	ErrInvalidRoundNumber    = errors.New("round number must be positive")
)

type GenerateRoundParams struct {
	Tournament   *models.Tournament
	Participants []*models.Participant
	// History holds every match already generated for the tournament.
	History []*models.Match
	// Standings is the current ranking; when nil it is computed from History.
	Standings   []models.StandingRow
	RoundNumber int
	// ShuffleSeed, when non-zero, shuffles round 1 deterministically instead of
	// pairing in enrollment order.
	ShuffleSeed int64
}

// RoundGenerator produces the unconfirmed matches of one new round.
type RoundGenerator interface {
	GenerateRound(ctx context.Context, params GenerateRoundParams) ([]*models.Match, error)

	GetName() string
}
