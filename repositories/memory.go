package repositories

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Dosada05/tournament-engine/models"
)

// MemoryStore keeps tournaments, participants and matches in process memory.
// Values are copied on the way in and out, so callers never alias stored state.
//
// Writes are serialized: a transaction works on its own copy of the tables and
// publishes it on commit, a write made outside a transaction waits for the
// running one to finish. Readers without a transaction see committed state only.
type MemoryStore struct {
	writers *semaphore.Weighted

	mu        sync.RWMutex
	committed memoryTables

	clockMu sync.Mutex
	now     func() time.Time
}

// Stored values are replaced, never mutated in place, so copying the maps is
// enough to isolate a transaction.
type memoryTables struct {
	tournaments  map[string]*models.Tournament
	participants map[string]*models.Participant
	matches      map[string]*models.Match
}

func (t memoryTables) copy() memoryTables {
	out := memoryTables{
		tournaments:  make(map[string]*models.Tournament, len(t.tournaments)),
		participants: make(map[string]*models.Participant, len(t.participants)),
		matches:      make(map[string]*models.Match, len(t.matches)),
	}
	for k, v := range t.tournaments {
		out.tournaments[k] = v
	}
	for k, v := range t.participants {
		out.participants[k] = v
	}
	for k, v := range t.matches {
		out.matches[k] = v
	}
	return out
}

// memoryTx is the executor handed to WithinTx callbacks. It carries no SQL
// connection: only the memory repositories accept it.
type memoryTx struct {
	SQLExecutor

	store  *MemoryStore
	mu     sync.RWMutex
	tables memoryTables
	closed bool
}

var errMemoryTxClosed = errors.New("memory transaction already finished")

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		writers: semaphore.NewWeighted(1),
		committed: memoryTables{
			tournaments:  make(map[string]*models.Tournament),
			participants: make(map[string]*models.Participant),
			matches:      make(map[string]*models.Match),
		},
		now: time.Now,
	}
}

// SetClock replaces the time source used for created/enrolled timestamps.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	s.now = now
}

func (s *MemoryStore) clock() time.Time {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	return s.now()
}

func (s *MemoryStore) Tournaments() TournamentRepository   { return memoryTournaments{s} }
func (s *MemoryStore) Participants() ParticipantRepository { return memoryParticipants{s} }
func (s *MemoryStore) Matches() MatchRepository            { return memoryMatches{s} }

func (s *MemoryStore) txOf(exec SQLExecutor) *memoryTx {
	if tx, ok := exec.(*memoryTx); ok && tx.store == s {
		return tx
	}
	return nil
}

// read returns the tables visible through exec and the func releasing them.
func (s *MemoryStore) read(exec SQLExecutor) (memoryTables, func()) {
	if tx := s.txOf(exec); tx != nil {
		tx.mu.RLock()
		return tx.tables, tx.mu.RUnlock
	}
	s.mu.RLock()
	return s.committed, s.mu.RUnlock
}

// write runs fn against the transaction's tables, or against committed state
// once no transaction is running. fn validates before it mutates anything.
func (s *MemoryStore) write(ctx context.Context, exec SQLExecutor, fn func(tables memoryTables) error) error {
	if tx := s.txOf(exec); tx != nil {
		tx.mu.Lock()
		defer tx.mu.Unlock()
		if tx.closed {
			return errMemoryTxClosed
		}
		return fn(tx.tables)
	}

	if err := s.writers.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.writers.Release(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.committed)
}

// WithinTx implements Transactor. Nothing fn writes is visible to other readers
// until it returns nil; on error or panic the copy is dropped.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) (err error) {
	if err := s.writers.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.writers.Release(1)

	s.mu.RLock()
	tx := &memoryTx{store: s, tables: s.committed.copy()}
	s.mu.RUnlock()

	committed := false
	defer func() {
		tx.mu.Lock()
		tx.closed = true
		tx.mu.Unlock()
		if !committed {
			return
		}
		s.mu.Lock()
		s.committed = tx.tables
		s.mu.Unlock()
	}()

	if err = fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}

type memoryTournaments struct{ s *MemoryStore }

func (r memoryTournaments) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	return r.s.write(ctx, exec, func(tables memoryTables) error {
		if _, exists := tables.tournaments[t.ID]; exists {
			return ErrTournamentNameConflict
		}
		for _, other := range tables.tournaments {
			if other.OrganizerID == t.OrganizerID && other.Name == t.Name {
				return ErrTournamentNameConflict
			}
		}
		now := r.s.clock()
		t.CreatedAt, t.UpdatedAt = now, now
		tables.tournaments[t.ID] = t.Clone()
		return nil
	})
}

func (r memoryTournaments) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	tables, done := r.s.read(exec)
	defer done()
	t, ok := tables.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return t.Clone(), nil
}

// GetForUpdate needs no row lock: a transaction already excludes every other writer.
func (r memoryTournaments) GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memoryTournaments) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	tables, done := r.s.read(nil)
	defer done()
	out := make([]*models.Tournament, 0, len(tables.tournaments))
	for _, t := range tables.tournaments {
		if filter.OrganizerID != nil && t.OrganizerID != *filter.OrganizerID {
			continue
		}
		if filter.State != nil && t.State != *filter.State {
			continue
		}
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*models.Tournament{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r memoryTournaments) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	return r.s.write(ctx, exec, func(tables memoryTables) error {
		stored, ok := tables.tournaments[t.ID]
		if !ok {
			return ErrTournamentNotFound
		}
		for _, other := range tables.tournaments {
			if other.ID != t.ID && other.OrganizerID == t.OrganizerID && other.Name == t.Name {
				return ErrTournamentNameConflict
			}
		}
		t.CreatedAt = stored.CreatedAt
		t.UpdatedAt = r.s.clock()
		tables.tournaments[t.ID] = t.Clone()
		return nil
	})
}

func (r memoryTournaments) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	return r.s.write(ctx, exec, func(tables memoryTables) error {
		if _, ok := tables.tournaments[id]; !ok {
			return ErrTournamentNotFound
		}
		for _, p := range tables.participants {
			if p.TournamentID == id {
				return ErrTournamentInUse
			}
		}
		for mid, m := range tables.matches {
			if m.TournamentID == id {
				delete(tables.matches, mid)
			}
		}
		delete(tables.tournaments, id)
		return nil
	})
}

type memoryParticipants struct{ s *MemoryStore }

func (r memoryParticipants) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	return r.s.write(ctx, exec, func(tables memoryTables) error {
		if _, ok := tables.tournaments[p.TournamentID]; !ok {
			return ErrParticipantTournamentInvalid
		}
		for _, other := range tables.participants {
			if other.ID == p.ID || (other.TournamentID == p.TournamentID && other.DisplayName == p.DisplayName) {
				return ErrParticipantConflict
			}
		}
		p.EnrolledAt = r.s.clock()
		tables.participants[p.ID] = p.Clone()
		return nil
	})
}

func (r memoryParticipants) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Participant, error) {
	tables, done := r.s.read(exec)
	defer done()
	p, ok := tables.participants[id]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	return p.Clone(), nil
}

func (r memoryParticipants) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Participant, error) {
	tables, done := r.s.read(exec)
	defer done()
	out := make([]*models.Participant, 0)
	for _, p := range tables.participants {
		if p.TournamentID == tournamentID {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnrolledAt.Equal(out[j].EnrolledAt) {
			return out[i].EnrolledAt.Before(out[j].EnrolledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memoryParticipants) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error) {
	tables, done := r.s.read(exec)
	defer done()
	n := 0
	for _, p := range tables.participants {
		if p.TournamentID == tournamentID {
			n++
		}
	}
	return n, nil
}

func (r memoryParticipants) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	return r.s.write(ctx, exec, func(tables memoryTables) error {
		if _, ok := tables.participants[id]; !ok {
			return ErrParticipantNotFound
		}
		for _, m := range tables.matches {
			if m.HasPlayer(id) {
				return ErrParticipantInUse
			}
		}
		delete(tables.participants, id)
		return nil
	})
}

type memoryMatches struct{ s *MemoryStore }

func (r memoryMatches) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	return r.s.write(ctx, exec, func(tables memoryTables) error {
		for i, m := range matches {
			if _, ok := tables.tournaments[m.TournamentID]; !ok {
				return ErrMatchTournamentAbsent
			}
			for _, id := range m.Players() {
				if _, ok := tables.participants[id]; !ok {
					return ErrMatchParticipantGone
				}
			}
			for _, other := range tables.matches {
				if other.ID == m.ID || sameSlot(other, m) {
					return ErrMatchSlotConflict
				}
			}
			for _, earlier := range matches[:i] {
				if earlier.ID == m.ID || sameSlot(earlier, m) {
					return ErrMatchSlotConflict
				}
			}
		}
		now := r.s.clock()
		for _, m := range matches {
			m.CreatedAt, m.UpdatedAt = now, now
			tables.matches[m.ID] = m.Clone()
		}
		return nil
	})
}

func sameSlot(a, b *models.Match) bool {
	return a.TournamentID == b.TournamentID && a.Round == b.Round && a.TableNumber == b.TableNumber
}

func (r memoryMatches) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	tables, done := r.s.read(exec)
	defer done()
	m, ok := tables.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return m.Clone(), nil
}

func (r memoryMatches) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Match, error) {
	return r.filter(exec, func(m *models.Match) bool { return m.TournamentID == tournamentID }), nil
}

func (r memoryMatches) ListByRound(ctx context.Context, exec SQLExecutor, tournamentID string, round int) ([]*models.Match, error) {
	return r.filter(exec, func(m *models.Match) bool { return m.TournamentID == tournamentID && m.Round == round }), nil
}

func (r memoryMatches) filter(exec SQLExecutor, keep func(*models.Match) bool) []*models.Match {
	tables, done := r.s.read(exec)
	defer done()
	out := make([]*models.Match, 0)
	for _, m := range tables.matches {
		if keep(m) {
			out = append(out, m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].TableNumber < out[j].TableNumber
	})
	return out
}

func (r memoryMatches) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	return r.s.write(ctx, exec, func(tables memoryTables) error {
		stored, ok := tables.matches[m.ID]
		if !ok {
			return ErrMatchNotFound
		}
		in := m.Clone()
		next := stored.Clone()
		next.FirstPlayerID = in.FirstPlayerID
		next.Report = in.Report
		next.Result = in.Result
		next.Outcome = in.Outcome
		next.Confirmed = in.Confirmed
		next.UpdatedAt = r.s.clock()
		m.UpdatedAt = next.UpdatedAt
		tables.matches[m.ID] = next
		return nil
	})
}

func (r memoryMatches) DeleteByRound(ctx context.Context, exec SQLExecutor, tournamentID string, round int) (int64, error) {
	var n int64
	err := r.s.write(ctx, exec, func(tables memoryTables) error {
		for id, m := range tables.matches {
			if m.TournamentID == tournamentID && m.Round == round {
				delete(tables.matches, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r memoryMatches) CountByParticipant(ctx context.Context, exec SQLExecutor, participantID string) (int, error) {
	tables, done := r.s.read(exec)
	defer done()
	n := 0
	for _, m := range tables.matches {
		if m.HasPlayer(participantID) {
			n++
		}
	}
	return n, nil
}
