package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/storage"
)

var (
	organizer = Actor{UserID: "org-1", Organizer: true}
	stranger  = Actor{UserID: "someone"}
)

type publishedEvent struct {
	tournamentID string
	eventType    string
	payload      interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(tournamentID, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{tournamentID, eventType, payload})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}

type engine struct {
	store        *repositories.MemoryStore
	uploader     *storage.MemoryUploader
	publisher    *recordingPublisher
	tournaments  TournamentService
	participants ParticipantService
	matches      MatchService
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	store := repositories.NewMemoryStore()
	tick := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
	uploader := storage.NewMemoryUploader()
	publisher := &recordingPublisher{}
	deps := Dependencies{
		Transactor:   store,
		Tournaments:  store.Tournaments(),
		Participants: store.Participants(),
		Matches:      store.Matches(),
		Locker:       NewTournamentLocker(),
		Publisher:    publisher,
		Archive:      storage.NewStandingsArchive(uploader),
	}
	return &engine{
		store:        store,
		uploader:     uploader,
		publisher:    publisher,
		tournaments:  NewTournamentService(deps),
		participants: NewParticipantService(deps),
		matches:      NewMatchService(deps),
	}
}

func scenarios(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Scenario %d", i+1)
	}
	return out
}

func (e *engine) createTournament(t *testing.T, rounds, capacity int) *models.Tournament {
	t.Helper()
	tournament, err := e.tournaments.CreateTournament(context.Background(), organizer, CreateTournamentInput{
		Name:            fmt.Sprintf("Open %d", time.Now().UnixNano()),
		RoundsMax:       rounds,
		Scenarios:       scenarios(rounds),
		MaxParticipants: capacity,
	})
	require.NoError(t, err)
	return tournament
}

// enroll adds participants in order and returns them keyed by display name.
func (e *engine) enroll(t *testing.T, tournamentID string, names ...string) map[string]*models.Participant {
	t.Helper()
	out := make(map[string]*models.Participant, len(names))
	for _, name := range names {
		p, err := e.participants.AddParticipant(context.Background(), organizer, tournamentID, AddParticipantInput{DisplayName: name, Faction: "Vikings"})
		require.NoError(t, err)
		out[name] = p
	}
	return out
}

func (e *engine) start(t *testing.T, tournamentID string) {
	t.Helper()
	_, err := e.tournaments.ChangeState(context.Background(), organizer, tournamentID, models.StateInProgress)
	require.NoError(t, err)
}

// report assigns player 1 as first player and records a result for the match.
func (e *engine) report(t *testing.T, m *models.Match, p1, p2 int) *models.Match {
	t.Helper()
	ctx := context.Background()
	_, err := e.matches.AssignFirstPlayer(ctx, organizer, m.ID, m.Player1ID)
	require.NoError(t, err)
	updated, err := e.matches.ReportResult(ctx, organizer, m.ID, ResultInput{MatchPoints: models.PointPair{P1: p1, P2: p2}})
	require.NoError(t, err)
	return updated
}

// settleRound reports every normal table as a player 1 win and confirms everything.
func (e *engine) settleRound(t *testing.T, view *models.RoundView) {
	t.Helper()
	for _, m := range view.Matches {
		if !m.IsBye() {
			e.report(t, m, 12, 6)
		}
		_, err := e.matches.Confirm(context.Background(), organizer, m.ID)
		require.NoError(t, err)
	}
}

func findBye(view *models.RoundView) *models.Match {
	for _, m := range view.Matches {
		if m.IsBye() {
			return m
		}
	}
	return nil
}

func standingOf(rows []models.StandingRow, participantID string) models.StandingRow {
	for _, r := range rows {
		if r.ParticipantID == participantID {
			return r
		}
	}
	return models.StandingRow{}
}
