package draft

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/rxdesk/sessionkeeper/internal/config"
)

// PayloadFunc produces the current form state for a snapshot. It is
// evaluated at tick time, never captured once at scheduler start, so the
// snapshot always reflects live state. Returning nil skips the tick.
type PayloadFunc func() any

// Scheduler saves a draft for one form key on a fixed interval.
// Start and Stop are symmetric and idempotent.
type Scheduler struct {
	drafts   *Store
	key      string
	interval time.Duration
	payload  PayloadFunc
	log      zerolog.Logger

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	done    chan struct{}
}

// NewScheduler creates an autosave scheduler for the given form key.
func NewScheduler(drafts *Store, key string, payload PayloadFunc, cfg config.DraftConfig, log zerolog.Logger) (*Scheduler, error) {
	if drafts == nil {
		return nil, errors.New("[draft.NewScheduler] draft store is required")
	}
	if key == "" {
		return nil, errors.New("[draft.NewScheduler] key is required")
	}
	if payload == nil {
		return nil, errors.New("[draft.NewScheduler] payload producer is required")
	}
	return &Scheduler{
		drafts:   drafts,
		key:      key,
		interval: cfg.GetAutoSaveInterval(),
		payload:  payload,
		log:      log,
	}, nil
}

// Start begins periodic saving. Starting twice without stopping is a
// no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	s.log.Debug().Str("key", s.key).Dur("interval", s.interval).Msg("autosave started")
	go s.run(stop, done)
}

// Stop cancels the pending timer so no save fires after the owning form
// is torn down. Stopping when not started is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	// Wait for the loop to wind down so no save lands after Stop
	// returns.
	<-done
	s.log.Debug().Str("key", s.key).Msg("autosave stopped")
}

// SaveNow performs a manual save with the current payload.
func (s *Scheduler) SaveNow() error {
	payload := s.payload()
	if payload == nil {
		return nil
	}
	return s.drafts.Save(s.key, payload)
}

func (s *Scheduler) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// A failed save is logged and retried implicitly on the next
			// tick; the scheduler itself must survive storage failures.
			if err := s.SaveNow(); err != nil {
				s.log.Warn().Err(err).Str("key", s.key).Msg("autosave failed")
			}
		}
	}
}
