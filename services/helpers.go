package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/scoring"
	"github.com/Dosada05/tournament-engine/storage"
)

// Dependencies are shared by the tournament, participant and match services.
// Only the transactor and the repositories are required.
type Dependencies struct {
	Transactor   repositories.Transactor
	Tournaments  repositories.TournamentRepository
	Participants repositories.ParticipantRepository
	Matches      repositories.MatchRepository

	Generator brackets.RoundGenerator
	Formula   scoring.ScoreFormula
	Locker    *TournamentLocker
	Publisher EventPublisher
	Archive   *storage.StandingsArchive // nil disables archiving
	Logger    *slog.Logger
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Generator == nil {
		d.Generator = brackets.NewSwissGenerator()
	}
	if d.Formula == nil {
		d.Formula = scoring.StandardFormula{}
	}
	if d.Locker == nil {
		d.Locker = NewTournamentLocker()
	}
	if d.Publisher == nil {
		d.Publisher = noopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// mutateTournament is the serialization boundary for every write: it holds the
// per-tournament lock, opens a transaction and hands fn the row-locked tournament.
func (d *Dependencies) mutateTournament(
	ctx context.Context,
	tournamentID string,
	fn func(exec repositories.SQLExecutor, t *models.Tournament) error,
) error {
	release, err := d.Locker.Lock(ctx, tournamentID)
	if err != nil {
		return err
	}
	defer release()

	return d.Transactor.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := d.Tournaments.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return handleRepositoryError(err, "load tournament "+tournamentID)
		}
		return fn(exec, t)
	})
}

// requireManageable checks finalization before authorization, so a finished
// tournament always answers ErrFinalized.
func requireManageable(actor Actor, t *models.Tournament) error {
	if t.IsFinished() {
		return ErrFinalized
	}
	if !actor.CanManage(t) {
		return ErrForbiddenOperation
	}
	return nil
}

func isValidStateTransition(current, next models.TournamentState) bool {
	if current == next {
		return current != models.StateFinished
	}
	allowedTransitions := map[models.TournamentState][]models.TournamentState{
		models.StatePending:    {models.StateInProgress, models.StateFinished},
		models.StateInProgress: {models.StatePending, models.StateFinished},
		models.StateFinished:   {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func isKnownState(s models.TournamentState) bool {
	switch s {
	case models.StatePending, models.StateInProgress, models.StateFinished:
		return true
	}
	return false
}

// groupRounds builds one view per round from 1 to t's current round.
func groupRounds(t *models.Tournament, matches []*models.Match) []models.RoundView {
	byRound := make(map[int][]*models.Match)
	for _, m := range matches {
		byRound[m.Round] = append(byRound[m.Round], m)
	}
	views := make([]models.RoundView, 0, t.Round())
	for n := 1; n <= t.Round(); n++ {
		round := byRound[n]
		sort.Slice(round, func(i, j int) bool { return round[i].TableNumber < round[j].TableNumber })
		views = append(views, models.NewRoundView(n, t.ScenarioFor(n), round))
	}
	return views
}

func roundOf(matches []*models.Match, round int) []*models.Match {
	out := make([]*models.Match, 0)
	for _, m := range matches {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}

func withoutRound(matches []*models.Match, round int) []*models.Match {
	out := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Round != round {
			out = append(out, m)
		}
	}
	return out
}

// loadStandings reads outside any lock; standings are a pure function of the
// stored participants and matches.
func (d *Dependencies) loadStandings(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) ([]models.StandingRow, error) {
	participants, err := d.Participants.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "list participants")
	}
	matches, err := d.Matches.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "list matches")
	}
	return scoring.ComputeStandings(participants, matches), nil
}

func (d *Dependencies) publishStandings(ctx context.Context, tournamentID string) {
	standings, err := d.loadStandings(ctx, nil, tournamentID)
	if err != nil {
		d.Logger.Warn("failed to compute standings for broadcast",
			slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	d.Publisher.Publish(tournamentID, EventStandingsUpdated, standings)
}

func formatRound(round int) string {
	return fmt.Sprintf("round %d", round)
}
