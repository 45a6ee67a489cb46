// Package monitor polls the session tracker on a fixed interval and
// drives the Active/Warning/Critical/Expired state machine, emitting
// notices for the notification surface.
//
// Each tick recomputes purely from the tracker; the monitor never counts
// elapsed time itself, so clock changes and suspended processes
// self-correct on the next poll.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/rxdesk/sessionkeeper/events"
	"github.com/rxdesk/sessionkeeper/internal/config"
	"github.com/rxdesk/sessionkeeper/session"
)

// Refresher extends the session; satisfied by refresh.Coordinator.
type Refresher interface {
	Refresh(ctx context.Context) (*session.Session, error)
}

// Monitor is the polling session-lifetime state machine.
type Monitor struct {
	tracker    *session.Tracker
	sessions   *session.Store
	refresher  Refresher
	dispatcher events.Dispatcher
	warning    time.Duration
	critical   time.Duration
	poll       time.Duration
	log        zerolog.Logger

	mu      sync.Mutex
	state   State
	idle    bool // no token present; polling short-circuits
	started bool
	stop    chan struct{}
	done    chan struct{}
}

// New creates a monitor and wires it to the dispatcher: a token-written
// event triggers an immediate re-evaluation instead of waiting for the
// next poll tick, and a refreshed event resets severity to Active.
func New(tracker *session.Tracker, sessions *session.Store, refresher Refresher, dispatcher events.Dispatcher, cfg config.SessionConfig, log zerolog.Logger) (*Monitor, error) {
	if tracker == nil {
		return nil, errors.New("[monitor.New] tracker is required")
	}
	if sessions == nil {
		return nil, errors.New("[monitor.New] session store is required")
	}
	if dispatcher == nil {
		return nil, errors.New("[monitor.New] dispatcher is required")
	}

	m := &Monitor{
		tracker:    tracker,
		sessions:   sessions,
		refresher:  refresher,
		dispatcher: dispatcher,
		warning:    cfg.GetWarningThreshold(),
		critical:   cfg.GetCriticalThreshold(),
		poll:       cfg.GetPollInterval(),
		log:        log,
		state:      StateActive,
		idle:       true,
	}

	dispatcher.Subscribe(events.SessionTokenWritten, func(ctx context.Context, _ events.Event) error {
		m.Reevaluate(ctx)
		return nil
	})
	dispatcher.Subscribe(events.SessionRefreshed, func(ctx context.Context, _ events.Event) error {
		m.resetActive(ctx)
		return nil
	})

	return m, nil
}

// Start begins polling. Starting an already-started monitor is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	stop, done := m.stop, m.done
	m.mu.Unlock()

	m.log.Debug().Dur("poll", m.poll).Msg("session monitor started")

	// Classify the restored session before the first tick; start-up
	// counts as a fresh observation. Done synchronously so no evaluation
	// can land after an immediate Stop.
	m.evaluate(context.Background(), true)
	go m.run(stop, done)
}

// Stop halts polling and clears any shown notice. Safe to call multiple
// times and before Start.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	close(m.stop)
	done := m.done
	dismiss := m.state == StateWarning || m.state == StateCritical
	m.state = StateActive
	m.mu.Unlock()

	// No tick callback may fire once Stop has returned.
	<-done

	if dismiss {
		m.publishDismissed(context.Background())
	}
	m.log.Debug().Msg("session monitor stopped")
}

// State reports the current severity.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ExtendSession is the user-invoked "keep me signed in" action. On
// success the monitor returns to Active and dismisses any notice; on
// failure the current severity is kept and the error is returned so the
// UI can surface it distinctly from a silent no-op.
func (m *Monitor) ExtendSession(ctx context.Context) error {
	if m.refresher == nil {
		return errors.New("[Monitor.ExtendSession] no refresher configured")
	}
	if _, err := m.refresher.Refresh(ctx); err != nil {
		return errors.Wrap(err, "[Monitor.ExtendSession]")
	}

	// Re-observe the freshly written token. Skipped when the monitor was
	// stopped while the refresh was in flight: the result must not
	// resurrect a torn-down monitor's UI state.
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	if started {
		m.Reevaluate(ctx)
	}
	return nil
}

// Reevaluate recomputes the state immediately, treating the persisted
// token as freshly observed. This is the explicit-reset path: a new
// login may lower severity, where a regular poll tick never does.
func (m *Monitor) Reevaluate(ctx context.Context) {
	m.evaluate(ctx, true)
}

// Poll runs one poll step, exactly as the background ticker does.
func (m *Monitor) Poll(ctx context.Context) {
	m.evaluate(ctx, false)
}

func (m *Monitor) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.evaluate(context.Background(), false)
		}
	}
}

// evaluate runs one state-machine step. Events are published outside the
// lock: handlers are allowed to call back into the monitor.
func (m *Monitor) evaluate(ctx context.Context, freshObservation bool) {
	remaining, ok, err := m.tracker.Remaining()

	if err != nil {
		m.handleCorrupt(ctx, err)
		return
	}
	if !ok {
		m.handleAbsent(ctx)
		return
	}

	target := m.classify(remaining)

	m.mu.Lock()
	m.idle = false
	previous := m.state
	next := previous
	if freshObservation || target > previous {
		next = target
	}
	changed := next != previous
	m.state = next
	m.mu.Unlock()

	if !changed {
		return
	}

	seconds := int64(remaining / time.Second)
	switch {
	case next == StateActive:
		// Explicit reset from an elevated state; clear the notice.
		if previous > StateActive {
			m.publishDismissed(ctx)
		}
	case next == StateWarning:
		m.publishNotice(ctx, events.SessionWarning, next, seconds)
	case next == StateCritical:
		m.publishNotice(ctx, events.SessionCritical, next, seconds)
	case next == StateExpired:
		m.publishNotice(ctx, events.SessionExpired, next, seconds)
	}
}

func (m *Monitor) classify(remaining time.Duration) State {
	switch {
	case remaining <= 0:
		return StateExpired
	case remaining <= m.critical:
		return StateCritical
	case remaining <= m.warning:
		return StateWarning
	}
	return StateActive
}

// handleCorrupt forces a logout: a token whose expiry cannot be parsed
// would otherwise go unmonitored for an unbounded lifetime.
func (m *Monitor) handleCorrupt(ctx context.Context, err error) {
	m.log.Error().Err(err).Msg("corrupt session data, forcing logout")
	if clearErr := m.sessions.Clear(); clearErr != nil {
		m.log.Error().Err(clearErr).Msg("failed to clear corrupt session")
	}

	m.mu.Lock()
	alreadyExpired := m.state == StateExpired
	m.state = StateExpired
	m.idle = false
	m.mu.Unlock()

	if !alreadyExpired {
		m.publishNotice(ctx, events.SessionExpired, StateExpired, 0)
	}
}

// handleAbsent pauses the countdown while no token is persisted. Any
// lingering notice from the previous session is dismissed once.
func (m *Monitor) handleAbsent(ctx context.Context) {
	m.mu.Lock()
	dismiss := !m.idle && (m.state == StateWarning || m.state == StateCritical)
	m.idle = true
	m.state = StateActive
	m.mu.Unlock()

	if dismiss {
		m.publishDismissed(ctx)
	}
}

func (m *Monitor) resetActive(ctx context.Context) {
	m.mu.Lock()
	// A refresh that lands after Stop must not resurrect UI state.
	if !m.started {
		m.mu.Unlock()
		return
	}
	dismiss := m.state > StateActive
	m.state = StateActive
	m.idle = false
	m.mu.Unlock()

	if dismiss {
		m.publishDismissed(ctx)
	}
}

func (m *Monitor) publishNotice(ctx context.Context, eventType events.EventType, state State, seconds int64) {
	m.log.Info().Str("state", state.String()).Int64("seconds_remaining", seconds).Msg("session state changed")
	m.dispatcher.Publish(ctx, events.New(eventType, events.Notice{
		State:            state.String(),
		SecondsRemaining: seconds,
	}))
}

func (m *Monitor) publishDismissed(ctx context.Context) {
	m.dispatcher.Publish(ctx, events.New(events.SessionDismissed, events.Notice{
		State: StateActive.String(),
	}))
}
