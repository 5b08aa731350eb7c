package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
)

type MatchService interface {
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
	AssignFirstPlayer(ctx context.Context, actor Actor, matchID, playerID string) (*models.Match, error)
	ReportResult(ctx context.Context, actor Actor, matchID string, input ResultInput) (*models.Match, error)
	Confirm(ctx context.Context, actor Actor, matchID string) (*models.Match, error)
	Unconfirm(ctx context.Context, actor Actor, matchID string) (*models.Match, error)
}

type matchService struct {
	deps Dependencies
}

func NewMatchService(deps Dependencies) MatchService {
	return &matchService{deps: deps.withDefaults()}
}

func (s *matchService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	m, err := s.deps.Matches.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, handleRepositoryError(err, "get match "+matchID)
	}
	return m, nil
}

type matchTransition func(exec repositories.SQLExecutor, t *models.Tournament, m *models.Match) (*models.Match, error)

// apply runs one state-machine step on a match under its tournament's lock.
func (s *matchService) apply(ctx context.Context, matchID string, step matchTransition) (*models.Match, error) {
	found, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	var updated *models.Match
	err = s.deps.mutateTournament(ctx, found.TournamentID, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		// the round may have been replaced while we waited for the lock
		m, err := s.deps.Matches.GetByID(ctx, exec, matchID)
		if err != nil {
			return handleRepositoryError(err, "reload match "+matchID)
		}
		if t.IsFinished() {
			return ErrFinalized
		}
		next, err := step(exec, t, m)
		if err != nil {
			return err
		}
		if err := s.deps.Matches.Update(ctx, exec, next); err != nil {
			return handleRepositoryError(err, "update match "+matchID)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.deps.Publisher.Publish(updated.TournamentID, EventMatchUpdated, updated)
	return updated, nil
}

// canEnterResults allows the organizer and the accounts linked to either player.
func (s *matchService) canEnterResults(ctx context.Context, exec repositories.SQLExecutor, actor Actor, t *models.Tournament, m *models.Match) (bool, error) {
	if actor.CanManage(t) {
		return true, nil
	}
	if actor.UserID == "" {
		return false, nil
	}
	for _, id := range m.Players() {
		p, err := s.deps.Participants.GetByID(ctx, exec, id)
		if err != nil {
			return false, handleRepositoryError(err, "get participant "+id)
		}
		if p.UserID != nil && *p.UserID == actor.UserID {
			return true, nil
		}
	}
	return false, nil
}

func (s *matchService) requireResultEntry(ctx context.Context, exec repositories.SQLExecutor, actor Actor, t *models.Tournament, m *models.Match) error {
	allowed, err := s.canEnterResults(ctx, exec, actor, t, m)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbiddenOperation
	}
	if t.State == models.StatePending {
		return ErrTournamentPaused
	}
	return nil
}

func (s *matchService) AssignFirstPlayer(ctx context.Context, actor Actor, matchID, playerID string) (*models.Match, error) {
	return s.apply(ctx, matchID, func(exec repositories.SQLExecutor, t *models.Tournament, m *models.Match) (*models.Match, error) {
		if err := s.requireResultEntry(ctx, exec, actor, t, m); err != nil {
			return nil, err
		}
		return AssignFirstPlayer(m, playerID)
	})
}

func (s *matchService) ReportResult(ctx context.Context, actor Actor, matchID string, input ResultInput) (*models.Match, error) {
	updated, err := s.apply(ctx, matchID, func(exec repositories.SQLExecutor, t *models.Tournament, m *models.Match) (*models.Match, error) {
		if err := s.requireResultEntry(ctx, exec, actor, t, m); err != nil {
			return nil, err
		}
		return ReportResult(m, input, s.deps.Formula)
	})
	if err != nil {
		return nil, err
	}
	s.deps.Logger.Info("match result reported",
		slog.String("match_id", matchID),
		slog.String("outcome", string(*updated.Outcome)),
	)
	return updated, nil
}

func (s *matchService) Confirm(ctx context.Context, actor Actor, matchID string) (*models.Match, error) {
	updated, err := s.apply(ctx, matchID, func(_ repositories.SQLExecutor, t *models.Tournament, m *models.Match) (*models.Match, error) {
		return Confirm(m, actor.CanManage(t))
	})
	if err != nil {
		return nil, err
	}
	s.deps.publishStandings(ctx, updated.TournamentID)
	return updated, nil
}

func (s *matchService) Unconfirm(ctx context.Context, actor Actor, matchID string) (*models.Match, error) {
	updated, err := s.apply(ctx, matchID, func(_ repositories.SQLExecutor, t *models.Tournament, m *models.Match) (*models.Match, error) {
		return Unconfirm(m, actor.CanManage(t))
	})
	if err != nil {
		return nil, err
	}
	s.deps.publishStandings(ctx, updated.TournamentID)
	return updated, nil
}
