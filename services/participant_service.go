package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type AddParticipantInput struct {
	DisplayName string  `json:"display_name"`
	Faction     string  `json:"faction"`
	UserID      *string `json:"user_id,omitempty"`
}

type ParticipantService interface {
	AddParticipant(ctx context.Context, actor Actor, tournamentID string, input AddParticipantInput) (*models.Participant, error)
	RemoveParticipant(ctx context.Context, actor Actor, participantID string) error
	ListParticipants(ctx context.Context, tournamentID string) ([]*models.Participant, error)
}

type participantService struct {
	deps Dependencies
}

func NewParticipantService(deps Dependencies) ParticipantService {
	return &participantService{deps: deps.withDefaults()}
}

// AddParticipant enrolls a player. The organizer may enroll anyone; any other
// signed-in user may only enroll themselves.
func (s *participantService) AddParticipant(ctx context.Context, actor Actor, tournamentID string, input AddParticipantInput) (*models.Participant, error) {
	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		return nil, ErrParticipantNameRequired
	}

	var created *models.Participant
	err := s.deps.mutateTournament(ctx, tournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if t.IsFinished() {
			return ErrFinalized
		}
		userID := input.UserID
		if !actor.CanManage(t) {
			if actor.UserID == "" {
				return ErrForbiddenOperation
			}
			self := actor.UserID
			userID = &self
		}

		count, err := s.deps.Participants.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return handleRepositoryError(err, "count participants")
		}
		if count >= t.MaxParticipants {
			return fmt.Errorf("%w: %d of %d places taken", ErrTournamentFull, count, t.MaxParticipants)
		}

		p := &models.Participant{
			ID:           uuid.NewString(),
			TournamentID: tournamentID,
			DisplayName:  name,
			Faction:      strings.TrimSpace(input.Faction),
			UserID:       userID,
		}
		if err := s.deps.Participants.Create(ctx, exec, p); err != nil {
			return handleRepositoryError(err, "create participant")
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("participant enrolled",
		slog.String("tournament_id", tournamentID),
		slog.String("participant_id", created.ID),
	)
	return created, nil
}

// RemoveParticipant is allowed only while no generated match references the
// participant, so existing pairings never need renumbering.
func (s *participantService) RemoveParticipant(ctx context.Context, actor Actor, participantID string) error {
	p, err := s.deps.Participants.GetByID(ctx, nil, participantID)
	if err != nil {
		return handleRepositoryError(err, "get participant "+participantID)
	}

	return s.deps.mutateTournament(ctx, p.TournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if t.IsFinished() {
			return ErrFinalized
		}
		owner := p.UserID != nil && actor.UserID != "" && *p.UserID == actor.UserID
		if !actor.CanManage(t) && !owner {
			return ErrForbiddenOperation
		}
		n, err := s.deps.Matches.CountByParticipant(ctx, exec, participantID)
		if err != nil {
			return handleRepositoryError(err, "count matches")
		}
		if n > 0 {
			return fmt.Errorf("%w: %d matches", ErrParticipantHasMatches, n)
		}
		if err := s.deps.Participants.Delete(ctx, exec, participantID); err != nil {
			return handleRepositoryError(err, "delete participant")
		}
		return nil
	})
}

func (s *participantService) ListParticipants(ctx context.Context, tournamentID string) ([]*models.Participant, error) {
	if _, err := s.deps.Tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, handleRepositoryError(err, "get tournament "+tournamentID)
	}
	ps, err := s.deps.Participants.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "list participants")
	}
	return ps, nil
}
