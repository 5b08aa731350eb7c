package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// TournamentLocker serializes mutations per tournament id. Waiting honours ctx.
type TournamentLocker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
	now     func() time.Time
}

type lockEntry struct {
	sem      *semaphore.Weighted
	refs     int
	lastUsed time.Time
}

func NewTournamentLocker() *TournamentLocker {
	return &TournamentLocker{
		entries: make(map[string]*lockEntry),
		now:     time.Now,
	}
}

// Lock blocks until the tournament is free and returns the release func.
func (l *TournamentLocker) Lock(ctx context.Context, tournamentID string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.entries[tournamentID]
	if !ok {
		entry = &lockEntry{sem: semaphore.NewWeighted(1)}
		l.entries[tournamentID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	if err := entry.sem.Acquire(ctx, 1); err != nil {
		l.mu.Lock()
		entry.refs--
		entry.lastUsed = l.now()
		l.mu.Unlock()
		return nil, fmt.Errorf("waiting for tournament %s: %w", tournamentID, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.sem.Release(1)
			l.mu.Lock()
			entry.refs--
			entry.lastUsed = l.now()
			l.mu.Unlock()
		})
	}, nil
}

// Sweep drops entries nobody holds or waits for that were last used more than
// idle ago, and returns how many were dropped.
func (l *TournamentLocker) Sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-idle)
	dropped := 0
	for id, entry := range l.entries {
		if entry.refs == 0 && !entry.lastUsed.After(cutoff) {
			delete(l.entries, id)
			dropped++
		}
	}
	return dropped
}

// Size returns the number of tracked tournaments.
func (l *TournamentLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
