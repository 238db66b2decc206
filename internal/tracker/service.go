package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/winsuspend/winsuspend/internal/config"
	"github.com/winsuspend/winsuspend/internal/database"
	"github.com/winsuspend/winsuspend/internal/engine"
	"github.com/winsuspend/winsuspend/internal/models"
)

// Service drives the engine on the configured poll interval and persists
// the transitions it reports. It owns the only goroutine that touches the
// engine; the web handlers read group state through Snapshot.
type Service struct {
	config  *config.Config
	repo    *database.Repository
	engine  *engine.Engine
	backend string
	log     *zap.SugaredLogger

	stopChan chan struct{}
	running  bool

	mu       sync.RWMutex
	snapshot []engine.GroupStatus
}

func NewService(cfg *config.Config, repo *database.Repository, eng *engine.Engine, backend string, log *zap.SugaredLogger) *Service {
	return &Service{
		config:   cfg,
		repo:     repo,
		engine:   eng,
		backend:  backend,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Start runs the polling loop until the context is cancelled or Stop is
// called. Every stopped group is resumed before Start returns.
func (s *Service) Start(ctx context.Context) error {
	if s.running {
		return errors.New("tracker is already running")
	}
	s.running = true
	s.log.Infow("tracker started",
		"poll_interval", s.config.Tracker.PollInterval,
		"debounce_cycles", s.config.Tracker.DebounceCycles,
		"backend", s.backend)

	ticker := time.NewTicker(s.config.Tracker.PollInterval)
	defer ticker.Stop()

	s.cycleOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return ctx.Err()

		case <-s.stopChan:
			s.shutdown()
			return nil

		case <-ticker.C:
			s.cycleOnce(ctx)
		}
	}
}

func (s *Service) Stop() {
	if s.running {
		close(s.stopChan)
	}
}

func (s *Service) IsRunning() bool {
	return s.running
}

// Snapshot returns the group states observed by the most recent cycle.
func (s *Service) Snapshot() []engine.GroupStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]engine.GroupStatus, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// Backend reports which window inventory backend is in use.
func (s *Service) Backend() string {
	return s.backend
}

func (s *Service) cycleOnce(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, s.config.Tracker.CycleTimeout)
	defer cancel()

	transitions, err := s.engine.Cycle(cctx)
	if err != nil {
		// A failed cycle mutates nothing; wait for the next tick.
		s.log.Warnw("cycle skipped", "error", err)
		s.storeError(err)
		return
	}

	for _, tr := range transitions {
		s.persist(tr)
	}

	s.mu.Lock()
	s.snapshot = s.engine.Snapshot()
	s.mu.Unlock()
}

// shutdown resumes everything still stopped and records the resumes, so
// no process is left suspended after the daemon exits.
func (s *Service) shutdown() {
	s.running = false
	for _, tr := range s.engine.ResumeAll() {
		s.persist(tr)
	}
	s.log.Infow("tracker stopped")
}

func (s *Service) persist(tr engine.Transition) {
	event := &models.TransitionEvent{
		Timestamp:    tr.At,
		RootPID:      tr.Root,
		AppName:      tr.Name,
		FromState:    tr.From.String(),
		ToState:      tr.To.String(),
		PidCount:     len(tr.Pids),
		SuspendedFor: int64(tr.SuspendedFor.Seconds()),
		Backend:      s.backend,
	}
	if err := s.repo.Create(event); err != nil {
		s.log.Warnw("failed to persist transition", "root", tr.Root, "error", err)
	}
}

func (s *Service) storeError(err error) {
	errorLog := &models.ErrorLog{
		Timestamp: time.Now(),
		ErrorMsg:  err.Error(),
	}
	if dbErr := s.repo.CreateErrorLog(errorLog); dbErr != nil {
		s.log.Warnw("failed to store error", "error", dbErr, "original", err)
	}
}
