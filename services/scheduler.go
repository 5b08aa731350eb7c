package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// LockSweeper periodically forgets idle per-tournament locks.
type LockSweeper struct {
	scheduler gocron.Scheduler
	locker    *TournamentLocker
	logger    *slog.Logger
}

func NewLockSweeper(locker *TournamentLocker, interval time.Duration, logger *slog.Logger) (*LockSweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("lock sweep interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	sweeper := &LockSweeper{scheduler: sched, locker: locker, logger: logger}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { sweeper.run(interval) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule lock sweep: %w", err)
	}
	return sweeper, nil
}

func (s *LockSweeper) run(idle time.Duration) {
	if dropped := s.locker.Sweep(idle); dropped > 0 {
		s.logger.Debug("swept idle tournament locks", slog.Int("dropped", dropped), slog.Int("remaining", s.locker.Size()))
	}
}

func (s *LockSweeper) Start() {
	s.scheduler.Start()
}

func (s *LockSweeper) Shutdown() error {
	return s.scheduler.Shutdown()
}
