package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/scoring"
	"github.com/Dosada05/tournament-engine/storage"
)

type CreateTournamentInput struct {
	Name            string   `json:"name"`
	RoundsMax       int      `json:"rounds_max"`
	Scenarios       []string `json:"scenarios"`
	MaxParticipants int      `json:"max_participants"`
}

// EditTournamentInput changes only the fields that are set.
type EditTournamentInput struct {
	Name            *string  `json:"name"`
	RoundsMax       *int     `json:"rounds_max"`
	Scenarios       []string `json:"scenarios"`
	MaxParticipants *int     `json:"max_participants"`
}

// GenerateRoundRequest asks for a round. RoundNumber 0 means the next one, or
// the current one when Replace is set.
type GenerateRoundRequest struct {
	RoundNumber int   `json:"round_number"`
	Replace     bool  `json:"replace"`
	ShuffleSeed int64 `json:"shuffle_seed"`
}

type TournamentOverview struct {
	Tournament   *models.Tournament    `json:"tournament"`
	Participants []*models.Participant `json:"participants"`
	Rounds       []models.RoundView    `json:"rounds"`
	Standings    []models.StandingRow  `json:"standings"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, actor Actor, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error)
	GetOverview(ctx context.Context, id string) (*TournamentOverview, error)
	ChangeState(ctx context.Context, actor Actor, id string, next models.TournamentState) (*models.Tournament, error)
	EditTournamentConfig(ctx context.Context, actor Actor, id string, input EditTournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, actor Actor, id string) error

	GenerateRound(ctx context.Context, actor Actor, id string, req GenerateRoundRequest) (*models.RoundView, error)
	GenerateNextRound(ctx context.Context, actor Actor, id string) (*models.RoundView, error)
	RegenerateCurrentRound(ctx context.Context, actor Actor, id string, shuffleSeed int64) (*models.RoundView, error)
	DeleteCurrentRound(ctx context.Context, actor Actor, id string) (*models.Tournament, error)

	ListRounds(ctx context.Context, id string) ([]models.RoundView, error)
	GetRound(ctx context.Context, id string, round int) (*models.RoundView, error)
	IsRoundComplete(ctx context.Context, id string, round int) (bool, error)
	Standings(ctx context.Context, id string) ([]models.StandingRow, error)
}

type tournamentService struct {
	deps Dependencies
}

func NewTournamentService(deps Dependencies) TournamentService {
	return &tournamentService{deps: deps.withDefaults()}
}

func validateRoundsConfig(roundsMax int, scenarios []string, maxParticipants int) error {
	if roundsMax < models.MinRounds || roundsMax > models.MaxRounds {
		return ErrTournamentInvalidRounds
	}
	if len(scenarios) != roundsMax {
		return fmt.Errorf("%w: got %d for %d rounds", ErrTournamentScenarioCount, len(scenarios), roundsMax)
	}
	for i, s := range scenarios {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: scenario for round %d is empty", ErrTournamentScenarioCount, i+1)
		}
	}
	if maxParticipants <= 0 {
		return ErrTournamentInvalidCap
	}
	return nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, actor Actor, input CreateTournamentInput) (*models.Tournament, error) {
	if !actor.Organizer && !actor.Admin {
		return nil, ErrForbiddenOperation
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if err := validateRoundsConfig(input.RoundsMax, input.Scenarios, input.MaxParticipants); err != nil {
		return nil, err
	}

	t := &models.Tournament{
		ID:              uuid.NewString(),
		Name:            name,
		OrganizerID:     actor.UserID,
		RoundsMax:       input.RoundsMax,
		Scenarios:       append([]string(nil), input.Scenarios...),
		MaxParticipants: input.MaxParticipants,
		State:           models.StatePending,
	}
	err := s.deps.Transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.deps.Tournaments.Create(ctx, exec, t); err != nil {
			return handleRepositoryError(err, "create tournament")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.deps.Logger.Info("tournament created", slog.String("tournament_id", t.ID), slog.String("organizer_id", t.OrganizerID))
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.deps.Tournaments.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get tournament "+id)
	}
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	list, err := s.deps.Tournaments.List(ctx, filter)
	if err != nil {
		return nil, handleRepositoryError(err, "list tournaments")
	}
	return list, nil
}

// GetOverview loads the tournament, its participants and its matches in parallel.
func (s *tournamentService) GetOverview(ctx context.Context, id string) (*TournamentOverview, error) {
	var (
		tournament   *models.Tournament
		participants []*models.Participant
		matches      []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.deps.Tournaments.GetByID(gCtx, nil, id)
		if err != nil {
			return handleRepositoryError(err, "get tournament "+id)
		}
		tournament = t
		return nil
	})

	g.Go(func() error {
		ps, err := s.deps.Participants.ListByTournament(gCtx, nil, id)
		if err != nil {
			return handleRepositoryError(err, "list participants")
		}
		participants = ps
		return nil
	})

	g.Go(func() error {
		ms, err := s.deps.Matches.ListByTournament(gCtx, nil, id)
		if err != nil {
			return handleRepositoryError(err, "list matches")
		}
		matches = ms
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &TournamentOverview{
		Tournament:   tournament,
		Participants: participants,
		Rounds:       groupRounds(tournament, matches),
		Standings:    scoring.ComputeStandings(participants, matches),
	}, nil
}

func (s *tournamentService) ChangeState(ctx context.Context, actor Actor, id string, next models.TournamentState) (*models.Tournament, error) {
	if !isKnownState(next) {
		return nil, ErrTournamentInvalidState
	}

	var updated *models.Tournament
	var changed bool
	err := s.deps.mutateTournament(ctx, id, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireManageable(actor, t); err != nil {
			return err
		}
		if !isValidStateTransition(t.State, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, t.State, next)
		}
		if t.State == next {
			updated = t
			return nil
		}
		t.State = next
		if err := s.deps.Tournaments.Update(ctx, exec, t); err != nil {
			return handleRepositoryError(err, "update tournament state")
		}
		updated = t
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.deps.Logger.Info("tournament state changed", slog.String("tournament_id", id), slog.String("state", string(next)))
		s.deps.Publisher.Publish(id, EventTournamentStateChanged, updated)
		if next == models.StateFinished {
			s.archive(ctx, updated)
		}
	}
	return updated, nil
}

// archive failures are logged: the tournament is already finished and the
// archive can be rebuilt from stored data.
func (s *tournamentService) archive(ctx context.Context, t *models.Tournament) {
	if s.deps.Archive == nil {
		return
	}
	overview, err := s.GetOverview(ctx, t.ID)
	if err != nil {
		s.deps.Logger.Error("failed to load tournament for archive", slog.String("tournament_id", t.ID), slog.Any("error", err))
		return
	}
	res, err := s.deps.Archive.Store(ctx, storage.ArchiveDocument{
		Tournament: overview.Tournament,
		Standings:  overview.Standings,
		Rounds:     overview.Rounds,
	})
	if err != nil {
		s.deps.Logger.Error("failed to archive final standings", slog.String("tournament_id", t.ID), slog.Any("error", err))
		return
	}
	s.deps.Logger.Info("final standings archived", slog.String("tournament_id", t.ID), slog.String("key", res.Key))
}

func (s *tournamentService) EditTournamentConfig(ctx context.Context, actor Actor, id string, input EditTournamentInput) (*models.Tournament, error) {
	var updated *models.Tournament
	err := s.deps.mutateTournament(ctx, id, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireManageable(actor, t); err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrTournamentNameRequired
			}
			t.Name = name
		}
		if input.RoundsMax != nil {
			t.RoundsMax = *input.RoundsMax
		}
		if input.Scenarios != nil {
			t.Scenarios = append([]string(nil), input.Scenarios...)
		}
		if input.MaxParticipants != nil {
			t.MaxParticipants = *input.MaxParticipants
		}
		if err := validateRoundsConfig(t.RoundsMax, t.Scenarios, t.MaxParticipants); err != nil {
			return err
		}
		if t.RoundsMax < t.Round() {
			return ErrRoundsBelowCurrent
		}

		count, err := s.deps.Participants.CountByTournament(ctx, exec, id)
		if err != nil {
			return handleRepositoryError(err, "count participants")
		}
		if t.MaxParticipants < count {
			return fmt.Errorf("%w: %d enrolled", ErrCapacityBelowCount, count)
		}

		if err := s.deps.Tournaments.Update(ctx, exec, t); err != nil {
			return handleRepositoryError(err, "update tournament")
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, actor Actor, id string) error {
	return s.deps.mutateTournament(ctx, id, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireManageable(actor, t); err != nil {
			return err
		}
		count, err := s.deps.Participants.CountByTournament(ctx, exec, id)
		if err != nil {
			return handleRepositoryError(err, "count participants")
		}
		if count > 0 {
			return fmt.Errorf("%w: %d enrolled", ErrTournamentHasParticipants, count)
		}
		if err := s.deps.Tournaments.Delete(ctx, exec, id); err != nil {
			return handleRepositoryError(err, "delete tournament")
		}
		return nil
	})
}

func (s *tournamentService) GenerateNextRound(ctx context.Context, actor Actor, id string) (*models.RoundView, error) {
	return s.GenerateRound(ctx, actor, id, GenerateRoundRequest{})
}

func (s *tournamentService) RegenerateCurrentRound(ctx context.Context, actor Actor, id string, shuffleSeed int64) (*models.RoundView, error) {
	return s.GenerateRound(ctx, actor, id, GenerateRoundRequest{Replace: true, ShuffleSeed: shuffleSeed})
}

// GenerateRound pairs the next round once the current one is complete, or
// replaces the current round when req.Replace is set and none of its matches
// is confirmed.
func (s *tournamentService) GenerateRound(ctx context.Context, actor Actor, id string, req GenerateRoundRequest) (*models.RoundView, error) {
	var view models.RoundView
	err := s.deps.mutateTournament(ctx, id, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireManageable(actor, t); err != nil {
			return err
		}
		if t.State != models.StateInProgress {
			return ErrTournamentNotInProgress
		}

		history, err := s.deps.Matches.ListByTournament(ctx, exec, id)
		if err != nil {
			return handleRepositoryError(err, "list matches")
		}

		current := t.Round()
		target := req.RoundNumber
		if req.Replace {
			if target == 0 {
				target = current
			}
			if err := checkReplaceable(current, target, history); err != nil {
				return err
			}
			if _, err := s.deps.Matches.DeleteByRound(ctx, exec, id, target); err != nil {
				return handleRepositoryError(err, "delete "+formatRound(target))
			}
			history = withoutRound(history, target)
		} else {
			if target == 0 {
				target = current + 1
			}
			if err := checkNextRound(t, current, target, history); err != nil {
				return err
			}
		}

		participants, err := s.deps.Participants.ListByTournament(ctx, exec, id)
		if err != nil {
			return handleRepositoryError(err, "list participants")
		}

		matches, err := s.deps.Generator.GenerateRound(ctx, brackets.GenerateRoundParams{
			Tournament:   t,
			Participants: participants,
			History:      history,
			Standings:    scoring.ComputeStandings(participants, history),
			RoundNumber:  target,
			ShuffleSeed:  req.ShuffleSeed,
		})
		if err != nil {
			return mapGeneratorError(err)
		}

		if err := s.deps.Matches.CreateBatch(ctx, exec, matches); err != nil {
			return handleRepositoryError(err, "save "+formatRound(target))
		}
		t.CurrentRound = &target
		if err := s.deps.Tournaments.Update(ctx, exec, t); err != nil {
			return handleRepositoryError(err, "advance current round")
		}
		view = models.NewRoundView(target, t.ScenarioFor(target), matches)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("round generated",
		slog.String("tournament_id", id),
		slog.Int("round", view.Number),
		slog.Int("tables", len(view.Matches)),
		slog.Bool("replaced", req.Replace),
		slog.String("generator", s.deps.Generator.GetName()),
	)
	s.deps.Publisher.Publish(id, EventRoundGenerated, view)
	return &view, nil
}

func checkNextRound(t *models.Tournament, current, target int, history []*models.Match) error {
	if target <= current {
		return fmt.Errorf("%w: %s", ErrRoundAlreadyGenerated, formatRound(target))
	}
	if target != current+1 {
		return fmt.Errorf("%w: expected %s, got %d", ErrRoundNumberOutOfSequence, formatRound(current+1), target)
	}
	if current >= t.RoundsMax {
		return ErrRoundLimitReached
	}
	if current > 0 {
		view := models.NewRoundView(current, "", roundOf(history, current))
		if !view.Complete {
			return fmt.Errorf("%w: %s", ErrRoundIncomplete, formatRound(current))
		}
	}
	return nil
}

func checkReplaceable(current, target int, history []*models.Match) error {
	if current == 0 {
		return ErrNoCurrentRound
	}
	if target != current {
		return fmt.Errorf("%w: only %s can be replaced", ErrRoundNumberOutOfSequence, formatRound(current))
	}
	for _, m := range roundOf(history, target) {
		if m.Confirmed {
			return fmt.Errorf("%w: %s table %d", ErrRoundHasConfirmedMatches, formatRound(target), m.TableNumber)
		}
	}
	return nil
}

func mapGeneratorError(err error) error {
	switch {
	case errors.Is(err, brackets.ErrNotEnoughParticipants):
		return fmt.Errorf("%w: %v", ErrNotEnoughParticipants, err)
	case errors.Is(err, brackets.ErrRoundAlreadyPaired):
		return fmt.Errorf("%w: %v", ErrRoundAlreadyGenerated, err)
	case errors.Is(err, brackets.ErrInvalidRoundNumber):
		return fmt.Errorf("%w: %v", ErrRoundNumberOutOfSequence, err)
	}
	return fmt.Errorf("generate pairings: %w", err)
}

// DeleteCurrentRound drops the current round when none of its matches is
// confirmed and steps the tournament back to the previous round.
func (s *tournamentService) DeleteCurrentRound(ctx context.Context, actor Actor, id string) (*models.Tournament, error) {
	var updated *models.Tournament
	var deleted int
	err := s.deps.mutateTournament(ctx, id, func(exec repositories.SQLExecutor, t *models.Tournament) error {
		if err := requireManageable(actor, t); err != nil {
			return err
		}
		current := t.Round()
		history, err := s.deps.Matches.ListByRound(ctx, exec, id, current)
		if err != nil {
			return handleRepositoryError(err, "list "+formatRound(current))
		}
		if err := checkReplaceable(current, current, history); err != nil {
			return err
		}
		if _, err := s.deps.Matches.DeleteByRound(ctx, exec, id, current); err != nil {
			return handleRepositoryError(err, "delete "+formatRound(current))
		}
		if current == 1 {
			t.CurrentRound = nil
		} else {
			prev := current - 1
			t.CurrentRound = &prev
		}
		if err := s.deps.Tournaments.Update(ctx, exec, t); err != nil {
			return handleRepositoryError(err, "step back current round")
		}
		updated = t
		deleted = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("round deleted", slog.String("tournament_id", id), slog.Int("round", deleted))
	s.deps.Publisher.Publish(id, EventRoundDeleted, map[string]int{"round": deleted})
	return updated, nil
}

func (s *tournamentService) ListRounds(ctx context.Context, id string) ([]models.RoundView, error) {
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	matches, err := s.deps.Matches.ListByTournament(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "list matches")
	}
	return groupRounds(t, matches), nil
}

func (s *tournamentService) GetRound(ctx context.Context, id string, round int) (*models.RoundView, error) {
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if round < 1 || round > t.Round() {
		return nil, fmt.Errorf("%w: %s of tournament %s", ErrNotFound, formatRound(round), id)
	}
	matches, err := s.deps.Matches.ListByRound(ctx, nil, id, round)
	if err != nil {
		return nil, handleRepositoryError(err, "list "+formatRound(round))
	}
	view := models.NewRoundView(round, t.ScenarioFor(round), matches)
	return &view, nil
}

func (s *tournamentService) IsRoundComplete(ctx context.Context, id string, round int) (bool, error) {
	view, err := s.GetRound(ctx, id, round)
	if err != nil {
		return false, err
	}
	return view.Complete, nil
}

func (s *tournamentService) Standings(ctx context.Context, id string) ([]models.StandingRow, error) {
	if _, err := s.GetTournament(ctx, id); err != nil {
		return nil, err
	}
	return s.deps.loadStandings(ctx, nil, id)
}
