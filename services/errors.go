package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/repositories"
)

// Виды ошибок. Каждая конкретная ошибка ниже оборачивает ровно один вид,
// маппинг в HTTP-коды опирается только на них.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDomain             = errors.New("operation not allowed in the current state")
	ErrPairing            = errors.New("pairing conflict")
	ErrFinalized          = errors.New("tournament is finished and can no longer be changed")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrNotFound           = errors.New("requested resource not found")
)

// Ошибки валидации входных данных
var (
	ErrTournamentNameRequired   = fmt.Errorf("%w: tournament name is required", ErrValidation)
	ErrTournamentInvalidRounds  = fmt.Errorf("%w: rounds must be between 2 and 5", ErrValidation)
	ErrTournamentScenarioCount  = fmt.Errorf("%w: one scenario per round is required", ErrValidation)
	ErrTournamentInvalidCap     = fmt.Errorf("%w: max participants must be positive", ErrValidation)
	ErrTournamentInvalidState   = fmt.Errorf("%w: unknown tournament state", ErrValidation)
	ErrParticipantNameRequired  = fmt.Errorf("%w: participant display name is required", ErrValidation)
	ErrPlayerNotInMatch         = fmt.Errorf("%w: player is not part of this match", ErrValidation)
	ErrByeHasNoFirstPlayer      = fmt.Errorf("%w: a bye has no first player", ErrValidation)
	ErrFirstPlayerNotSet        = fmt.Errorf("%w: first player must be assigned before scores are accepted", ErrValidation)
	ErrEmptyScore               = fmt.Errorf("%w: at least one side must have non-zero match points", ErrValidation)
	ErrNegativeScore            = fmt.Errorf("%w: points cannot be negative", ErrValidation)
	ErrParticipantNotInTourney  = fmt.Errorf("%w: participant does not belong to this tournament", ErrValidation)
	ErrRoundNumberOutOfSequence = fmt.Errorf("%w: only the next round can be generated", ErrValidation)
)

// Ошибки бизнес-правил
var (
	ErrTournamentNotInProgress   = fmt.Errorf("%w: tournament is not in progress", ErrDomain)
	ErrTournamentPaused          = fmt.Errorf("%w: result entry is paused while the tournament is pending", ErrDomain)
	ErrRoundIncomplete           = fmt.Errorf("%w: current round still has matches without an outcome", ErrDomain)
	ErrRoundLimitReached         = fmt.Errorf("%w: all configured rounds have been generated", ErrDomain)
	ErrNoCurrentRound            = fmt.Errorf("%w: no round has been generated yet", ErrDomain)
	ErrTournamentFull            = fmt.Errorf("%w: tournament is full", ErrDomain)
	ErrCapacityBelowCount        = fmt.Errorf("%w: max participants is below the current participant count", ErrDomain)
	ErrRoundsBelowCurrent        = fmt.Errorf("%w: rounds cannot drop below the current round", ErrDomain)
	ErrTournamentHasParticipants = fmt.Errorf("%w: tournament still has participants", ErrDomain)
	ErrParticipantHasMatches     = fmt.Errorf("%w: participant already appears in generated pairings", ErrDomain)
	ErrInvalidStateTransition    = fmt.Errorf("%w: invalid tournament state transition", ErrDomain)
	ErrMatchConfirmed            = fmt.Errorf("%w: match is confirmed, unconfirm it first", ErrDomain)
	ErrMatchHasNoOutcome         = fmt.Errorf("%w: match has no reported outcome", ErrDomain)
	ErrByeNotReportable          = fmt.Errorf("%w: a bye result is fixed and cannot be reported", ErrDomain)
	ErrNameTaken                 = fmt.Errorf("%w: name is already taken", ErrDomain)
	ErrNotEnoughParticipants     = fmt.Errorf("%w: %w", ErrDomain, brackets.ErrNotEnoughParticipants)
)

// Ошибки генерации пар
var (
	ErrRoundAlreadyGenerated    = fmt.Errorf("%w: %w", ErrPairing, brackets.ErrRoundAlreadyPaired)
	ErrRoundHasConfirmedMatches = fmt.Errorf("%w: round has confirmed results and cannot be replaced", ErrPairing)
)

// Kind returns the name of the error kind err wraps, "internal" when none.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrFinalized):
		return "finalized"
	case errors.Is(err, ErrPairing):
		return "pairing"
	case errors.Is(err, ErrDomain):
		return "domain"
	case errors.Is(err, ErrForbiddenOperation):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисного слоя.
func handleRepositoryError(err error, what string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound),
		errors.Is(err, repositories.ErrParticipantNotFound),
		errors.Is(err, repositories.ErrMatchNotFound):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, what, err)
	case errors.Is(err, repositories.ErrMatchSlotConflict):
		return fmt.Errorf("%w: %s: %w", ErrRoundAlreadyGenerated, what, err)
	case errors.Is(err, repositories.ErrParticipantInUse):
		return fmt.Errorf("%w: %s: %w", ErrParticipantHasMatches, what, err)
	case errors.Is(err, repositories.ErrTournamentNameConflict),
		errors.Is(err, repositories.ErrParticipantConflict):
		return fmt.Errorf("%w: %s: %w", ErrNameTaken, what, err)
	case errors.Is(err, repositories.ErrTournamentInUse):
		return fmt.Errorf("%w: %s: %w", ErrTournamentHasParticipants, what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}
