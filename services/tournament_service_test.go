package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
)

func TestCreateTournamentValidation(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		actor Actor
		input CreateTournamentInput
		want  error
	}{
		{name: "not an organizer", actor: stranger, input: CreateTournamentInput{Name: "x", RoundsMax: 2, Scenarios: scenarios(2), MaxParticipants: 4}, want: ErrForbiddenOperation},
		{name: "no name", actor: organizer, input: CreateTournamentInput{Name: "  ", RoundsMax: 2, Scenarios: scenarios(2), MaxParticipants: 4}, want: ErrTournamentNameRequired},
		{name: "one round", actor: organizer, input: CreateTournamentInput{Name: "x", RoundsMax: 1, Scenarios: scenarios(1), MaxParticipants: 4}, want: ErrTournamentInvalidRounds},
		{name: "six rounds", actor: organizer, input: CreateTournamentInput{Name: "x", RoundsMax: 6, Scenarios: scenarios(6), MaxParticipants: 4}, want: ErrTournamentInvalidRounds},
		{name: "scenario count", actor: organizer, input: CreateTournamentInput{Name: "x", RoundsMax: 3, Scenarios: scenarios(2), MaxParticipants: 4}, want: ErrTournamentScenarioCount},
		{name: "blank scenario", actor: organizer, input: CreateTournamentInput{Name: "x", RoundsMax: 2, Scenarios: []string{"a", " "}, MaxParticipants: 4}, want: ErrTournamentScenarioCount},
		{name: "capacity", actor: organizer, input: CreateTournamentInput{Name: "x", RoundsMax: 2, Scenarios: scenarios(2), MaxParticipants: 0}, want: ErrTournamentInvalidCap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.tournaments.CreateTournament(ctx, tt.actor, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	created, err := e.tournaments.CreateTournament(ctx, organizer, CreateTournamentInput{Name: "Spring Open", RoundsMax: 3, Scenarios: scenarios(3), MaxParticipants: 8})
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, created.State)
	assert.Nil(t, created.CurrentRound)
	assert.Equal(t, organizer.UserID, created.OrganizerID)

	_, err = e.tournaments.CreateTournament(ctx, organizer, CreateTournamentInput{Name: "Spring Open", RoundsMax: 3, Scenarios: scenarios(3), MaxParticipants: 8})
	assert.ErrorIs(t, err, ErrNameTaken)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestGetTournamentNotFound(t *testing.T) {
	e := newEngine(t)
	_, err := e.tournaments.GetTournament(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.tournaments.ChangeState(context.Background(), organizer, "missing", models.StateInProgress)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChangeStateTransitions(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	tour := e.createTournament(t, 3, 8)

	_, err := e.tournaments.ChangeState(ctx, stranger, tour.ID, models.StateInProgress)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	_, err = e.tournaments.ChangeState(ctx, organizer, tour.ID, "cancelled")
	assert.ErrorIs(t, err, ErrTournamentInvalidState)

	got, err := e.tournaments.ChangeState(ctx, organizer, tour.ID, models.StateInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StateInProgress, got.State)

	got, err = e.tournaments.ChangeState(ctx, organizer, tour.ID, models.StatePending)
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, got.State)

	got, err = e.tournaments.ChangeState(ctx, organizer, tour.ID, models.StateFinished)
	require.NoError(t, err)
	assert.True(t, got.IsFinished())

	_, err = e.tournaments.ChangeState(ctx, organizer, tour.ID, models.StateInProgress)
	assert.ErrorIs(t, err, ErrFinalized)
	_, err = e.tournaments.ChangeState(ctx, organizer, tour.ID, models.StateFinished)
	assert.ErrorIs(t, err, ErrFinalized)

	assert.Contains(t, e.publisher.types(), EventTournamentStateChanged)
}

func TestAdminCanManageAnyTournament(t *testing.T) {
	e := newEngine(t)
	tour := e.createTournament(t, 2, 4)
	admin := Actor{UserID: "root", Admin: true}
	_, err := e.tournaments.ChangeState(context.Background(), admin, tour.ID, models.StateInProgress)
	assert.NoError(t, err)

	otherOrganizer := Actor{UserID: "org-2", Organizer: true}
	_, err = e.tournaments.ChangeState(context.Background(), otherOrganizer, tour.ID, models.StatePending)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestGenerateNextRoundGating(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	tour := e.createTournament(t, 2, 8)

	e.enroll(t, tour.ID, "A")
	_, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	assert.ErrorIs(t, err, ErrTournamentNotInProgress)

	e.start(t, tour.ID)
	_, err = e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	assert.ErrorIs(t, err, ErrNotEnoughParticipants)
	assert.ErrorIs(t, err, ErrDomain)

	e.enroll(t, tour.ID, "B", "C", "D")
	_, err = e.tournaments.GenerateNextRound(ctx, stranger, tour.ID)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	round1, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, round1.Number)
	assert.Equal(t, "Scenario 1", round1.Scenario)
	require.Len(t, round1.Matches, 2)
	assert.False(t, round1.Complete)

	_, err = e.tournaments.GenerateRound(ctx, organizer, tour.ID, GenerateRoundRequest{RoundNumber: 1})
	assert.ErrorIs(t, err, ErrRoundAlreadyGenerated)
	assert.ErrorIs(t, err, ErrPairing)

	_, err = e.tournaments.GenerateRound(ctx, organizer, tour.ID, GenerateRoundRequest{RoundNumber: 3})
	assert.ErrorIs(t, err, ErrRoundNumberOutOfSequence)

	// one table scored, the other not: the round is incomplete
	e.report(t, round1.Matches[0], 10, 5)
	_, err = e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	assert.ErrorIs(t, err, ErrRoundIncomplete)
	assert.ErrorIs(t, err, ErrDomain)

	complete, err := e.tournaments.IsRoundComplete(ctx, tour.ID, 1)
	require.NoError(t, err)
	assert.False(t, complete)

	// every table has an outcome, none confirmed: generation is allowed
	e.report(t, round1.Matches[1], 3, 3)
	complete, err = e.tournaments.IsRoundComplete(ctx, tour.ID, 1)
	require.NoError(t, err)
	assert.True(t, complete)

	round2, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, round2.Number)

	got, err := e.tournaments.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Round())

	for _, m := range round2.Matches {
		e.report(t, m, 1, 0)
	}
	_, err = e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	assert.ErrorIs(t, err, ErrRoundLimitReached)
}

func TestGenerateRoundCoversEveryParticipantOnce(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	tour := e.createTournament(t, 5, 16)
	people := e.enroll(t, tour.ID, "A", "B", "C", "D", "E", "F", "G")
	e.start(t, tour.ID)

	for round := 1; round <= 5; round++ {
		view, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
		require.NoError(t, err)
		require.Len(t, view.Matches, 4)

		seen := make(map[string]int)
		for i, m := range view.Matches {
			assert.Equal(t, i+1, m.TableNumber)
			assert.Equal(t, round, m.Round)
			for _, id := range m.Players() {
				seen[id]++
			}
		}
		require.Len(t, seen, len(people))
		for _, p := range people {
			assert.Equal(t, 1, seen[p.ID])
		}
		e.settleRound(t, view)
	}

	rounds, err := e.tournaments.ListRounds(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, rounds, 5)
	byes := make(map[string]int)
	for _, r := range rounds {
		assert.True(t, r.Complete)
		assert.True(t, r.Confirmed)
		for _, m := range r.Matches {
			if m.IsBye() {
				byes[m.Player1ID]++
			}
		}
	}
	for id, n := range byes {
		assert.Equal(t, 1, n, "participant %s", id)
	}
}

func TestExampleScenarioEndToEnd(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	tour := e.createTournament(t, 3, 8)
	p := e.enroll(t, tour.ID, "A", "B", "C", "D", "E")
	e.start(t, tour.ID)

	round1, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	require.NoError(t, err)
	require.Len(t, round1.Matches, 3)
	ab, cd, bye := round1.Matches[0], round1.Matches[1], round1.Matches[2]
	assert.Equal(t, p["A"].ID, ab.Player1ID)
	assert.Equal(t, p["B"].ID, *ab.Player2ID)
	assert.Equal(t, p["C"].ID, cd.Player1ID)
	require.True(t, bye.IsBye())
	assert.Equal(t, p["E"].ID, bye.Player1ID)
	assert.Equal(t, models.MatchStateReported, bye.State())

	e.report(t, ab, 10, 5)
	standings, err := e.tournaments.Standings(ctx, tour.ID)
	require.NoError(t, err)
	for _, row := range standings {
		assert.Zero(t, row.TournamentPoints, "nothing confirmed yet")
	}

	_, err = e.matches.Confirm(ctx, organizer, ab.ID)
	require.NoError(t, err)
	_, err = e.matches.Confirm(ctx, organizer, bye.ID)
	require.NoError(t, err)

	standings, err = e.tournaments.Standings(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, p["A"].ID, standings[0].ParticipantID)
	assert.Equal(t, p["E"].ID, standings[1].ParticipantID)
	assert.Equal(t, 10, standingOf(standings, p["A"].ID).TournamentPoints)
	assert.Equal(t, 10, standingOf(standings, p["E"].ID).TournamentPoints)
	for _, name := range []string{"B", "C", "D"} {
		assert.Zero(t, standingOf(standings, p[name].ID).TournamentPoints, name)
	}

	e.report(t, cd, 8, 3) // completes round 1 without confirmation
	round2, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	require.NoError(t, err)
	require.Len(t, round2.Matches, 3)
	assert.Equal(t, p["A"].ID, round2.Matches[0].Player1ID)
	assert.Equal(t, p["E"].ID, *round2.Matches[0].Player2ID)
	assert.Equal(t, p["B"].ID, round2.Matches[1].Player1ID)
	bye2 := findBye(round2)
	require.NotNil(t, bye2)
	assert.NotEqual(t, p["E"].ID, bye2.Player1ID)
}

func TestConcurrentGenerationCreatesOneRound(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	tour := e.createTournament(t, 3, 8)
	e.enroll(t, tour.ID, "A", "B", "C", "D")
	e.start(t, tour.ID)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrRoundIncomplete)
	}
	assert.Equal(t, 1, succeeded)

	rounds, err := e.tournaments.ListRounds(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Len(t, rounds[0].Matches, 2)
}

func TestRegenerateCurrentRound(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	tour := e.createTournament(t, 3, 8)
	e.enroll(t, tour.ID, "A", "B", "C", "D", "E", "F")
	e.start(t, tour.ID)

	_, err := e.tournaments.RegenerateCurrentRound(ctx, organizer, tour.ID, 0)
	assert.ErrorIs(t, err, ErrNoCurrentRound)

	first, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	require.NoError(t, err)
	e.report(t, first.Matches[0], 5, 1)

	replaced, err := e.tournaments.RegenerateCurrentRound(ctx, organizer, tour.ID, 99)
	require.NoError(t, err)
	assert.Equal(t, 1, replaced.Number)
	require.Len(t, replaced.Matches, 3)
	for _, m := range replaced.Matches {
		assert.Equal(t, models.MatchStateUnplayed, m.State())
	}

	_, err = e.matches.GetMatch(ctx, first.Matches[0].ID)
	assert.ErrorIs(t, err, ErrNotFound, "replaced matches are gone")

	e.report(t, replaced.Matches[0], 5, 1)
	_, err = e.matches.Confirm(ctx, organizer, replaced.Matches[0].ID)
	require.NoError(t, err)

	_, err = e.tournaments.RegenerateCurrentRound(ctx, organizer, tour.ID, 0)
	assert.ErrorIs(t, err, ErrRoundHasConfirmedMatches)
	assert.ErrorIs(t, err, ErrPairing)

	_, err = e.tournaments.GenerateRound(ctx, organizer, tour.ID, GenerateRoundRequest{RoundNumber: 2, Replace: true})
	assert.ErrorIs(t, err, ErrRoundNumberOutOfSequence)
}

func TestDeleteCurrentRound(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	tour := e.createTournament(t, 3, 8)
	e.enroll(t, tour.ID, "A", "B", "C")
	e.start(t, tour.ID)

	_, err := e.tournaments.DeleteCurrentRound(ctx, organizer, tour.ID)
	assert.ErrorIs(t, err, ErrNoCurrentRound)

	round1, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	require.NoError(t, err)
	e.settleRound(t, round1)
	round2, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	require.NoError(t, err)

	got, err := e.tournaments.DeleteCurrentRound(ctx, organizer, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Round())
	_, err = e.tournaments.GetRound(ctx, tour.ID, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.matches.GetMatch(ctx, round2.Matches[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.tournaments.DeleteCurrentRound(ctx, organizer, tour.ID)
	assert.ErrorIs(t, err, ErrRoundHasConfirmedMatches)
	assert.Contains(t, e.publisher.types(), EventRoundDeleted)
}

func TestEditTournamentConfig(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	tour := e.createTournament(t, 3, 4)
	e.enroll(t, tour.ID, "A", "B", "C")

	two := 2
	_, err := e.tournaments.EditTournamentConfig(ctx, organizer, tour.ID, EditTournamentInput{MaxParticipants: &two})
	assert.ErrorIs(t, err, ErrCapacityBelowCount)
	assert.ErrorIs(t, err, ErrDomain)

	four := 4
	_, err = e.tournaments.EditTournamentConfig(ctx, organizer, tour.ID, EditTournamentInput{RoundsMax: &four})
	assert.ErrorIs(t, err, ErrTournamentScenarioCount)

	_, err = e.tournaments.EditTournamentConfig(ctx, stranger, tour.ID, EditTournamentInput{MaxParticipants: &four})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	name := "Renamed Open"
	six := 6
	updated, err := e.tournaments.EditTournamentConfig(ctx, organizer, tour.ID, EditTournamentInput{
		Name:            &name,
		RoundsMax:       &four,
		Scenarios:       scenarios(4),
		MaxParticipants: &six,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Open", updated.Name)
	assert.Equal(t, 4, updated.RoundsMax)
	assert.Equal(t, 6, updated.MaxParticipants)

	stored, err := e.tournaments.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, scenarios(4), stored.Scenarios)

	e.enroll(t, tour.ID, "D")
	e.start(t, tour.ID)
	for i := 0; i < 3; i++ {
		view, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
		require.NoError(t, err)
		e.settleRound(t, view)
	}

	_, err = e.tournaments.EditTournamentConfig(ctx, organizer, tour.ID, EditTournamentInput{RoundsMax: &two, Scenarios: scenarios(2)})
	assert.ErrorIs(t, err, ErrRoundsBelowCurrent)

	three := 3
	updated, err = e.tournaments.EditTournamentConfig(ctx, organizer, tour.ID, EditTournamentInput{RoundsMax: &three, Scenarios: scenarios(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.RoundsMax)

	_, err = e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	assert.ErrorIs(t, err, ErrRoundLimitReached)
}

func TestDeleteTournament(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	tour := e.createTournament(t, 2, 4)
	people := e.enroll(t, tour.ID, "A")

	err := e.tournaments.DeleteTournament(ctx, organizer, tour.ID)
	assert.ErrorIs(t, err, ErrTournamentHasParticipants)

	require.NoError(t, e.participants.RemoveParticipant(ctx, organizer, people["A"].ID))
	assert.ErrorIs(t, e.tournaments.DeleteTournament(ctx, stranger, tour.ID), ErrForbiddenOperation)
	require.NoError(t, e.tournaments.DeleteTournament(ctx, organizer, tour.ID))

	_, err = e.tournaments.GetTournament(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFinalizationImmutability(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	tour := e.createTournament(t, 3, 8)
	people := e.enroll(t, tour.ID, "A", "B", "C", "D")
	e.start(t, tour.ID)

	view, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	require.NoError(t, err)
	reported := e.report(t, view.Matches[0], 10, 5)
	_, err = e.matches.Confirm(ctx, organizer, reported.ID)
	require.NoError(t, err)
	e.report(t, view.Matches[1], 7, 2)

	_, err = e.tournaments.ChangeState(ctx, organizer, tour.ID, models.StateFinished)
	require.NoError(t, err)

	seven := 7
	checks := map[string]error{}
	_, checks["report"] = e.matches.ReportResult(ctx, organizer, view.Matches[1].ID, ResultInput{MatchPoints: models.PointPair{P1: 1}})
	_, checks["first player"] = e.matches.AssignFirstPlayer(ctx, organizer, view.Matches[1].ID, view.Matches[1].Player1ID)
	_, checks["confirm"] = e.matches.Confirm(ctx, organizer, view.Matches[1].ID)
	_, checks["unconfirm"] = e.matches.Unconfirm(ctx, organizer, reported.ID)
	_, checks["edit"] = e.tournaments.EditTournamentConfig(ctx, organizer, tour.ID, EditTournamentInput{MaxParticipants: &seven})
	_, checks["generate"] = e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	_, checks["regenerate"] = e.tournaments.RegenerateCurrentRound(ctx, organizer, tour.ID, 0)
	_, checks["delete round"] = e.tournaments.DeleteCurrentRound(ctx, organizer, tour.ID)
	_, checks["enroll"] = e.participants.AddParticipant(ctx, organizer, tour.ID, AddParticipantInput{DisplayName: "Late"})
	checks["remove"] = e.participants.RemoveParticipant(ctx, organizer, people["A"].ID)
	checks["delete"] = e.tournaments.DeleteTournament(ctx, organizer, tour.ID)
	_, checks["stranger confirm"] = e.matches.Confirm(ctx, stranger, view.Matches[1].ID)

	for name, err := range checks {
		assert.ErrorIs(t, err, ErrFinalized, name)
	}

	got, err := e.matches.GetMatch(ctx, reported.ID)
	require.NoError(t, err)
	assert.True(t, got.Confirmed)
}

func TestFinishArchivesStandings(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	tour := e.createTournament(t, 2, 4)
	e.enroll(t, tour.ID, "A", "B")
	e.start(t, tour.ID)
	view, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	require.NoError(t, err)
	e.settleRound(t, view)

	_, err = e.tournaments.ChangeState(ctx, organizer, tour.ID, models.StateFinished)
	require.NoError(t, err)

	keys := e.uploader.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], tour.ID)
	body, contentType, ok := e.uploader.Object(keys[0])
	require.True(t, ok)
	assert.Equal(t, "application/json", contentType)
	assert.Contains(t, string(body), `"state": "finished"`)
}

func TestGetOverview(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	tour := e.createTournament(t, 2, 4)
	e.enroll(t, tour.ID, "A", "B", "C")
	e.start(t, tour.ID)
	view, err := e.tournaments.GenerateNextRound(ctx, organizer, tour.ID)
	require.NoError(t, err)
	e.settleRound(t, view)

	overview, err := e.tournaments.GetOverview(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, tour.ID, overview.Tournament.ID)
	assert.Len(t, overview.Participants, 3)
	require.Len(t, overview.Rounds, 1)
	assert.True(t, overview.Rounds[0].Confirmed)
	require.Len(t, overview.Standings, 3)
	assert.Equal(t, 10, overview.Standings[0].TournamentPoints)

	_, err = e.tournaments.GetOverview(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFailedMutationsKeepConcurrentCreates(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	target := e.createTournament(t, 2, 4)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			err := e.tournaments.DeleteTournament(ctx, stranger, target.ID)
			if !assert.ErrorIs(t, err, ErrForbiddenOperation) {
				return
			}
		}
	}()

	ids := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		created, err := e.tournaments.CreateTournament(ctx, organizer, CreateTournamentInput{
			Name: fmt.Sprintf("Weekly %d", i), RoundsMax: 2, Scenarios: scenarios(2), MaxParticipants: 4,
		})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	close(stop)
	wg.Wait()

	for _, id := range ids {
		_, err := e.tournaments.GetTournament(ctx, id)
		require.NoError(t, err)
	}
	_, err := e.tournaments.GetTournament(ctx, target.ID)
	assert.NoError(t, err)
}
