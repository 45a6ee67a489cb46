// Package keeper assembles the session subsystem into one explicit
// instance: tracker, refresh coordinator, monitor, draft persistence and
// the event glue between them. The embedding application constructs a
// Keeper once and passes it by reference; nothing in this module keeps
// ambient singleton state, so tests can run isolated instances in
// parallel.
package keeper

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/rxdesk/sessionkeeper/draft"
	"github.com/rxdesk/sessionkeeper/events"
	"github.com/rxdesk/sessionkeeper/internal/config"
	"github.com/rxdesk/sessionkeeper/kvstore"
	"github.com/rxdesk/sessionkeeper/monitor"
	"github.com/rxdesk/sessionkeeper/refresh"
	"github.com/rxdesk/sessionkeeper/session"
)

// Keeper owns the assembled session lifecycle and draft persistence.
type Keeper struct {
	cfg config.Config
	log zerolog.Logger

	Dispatcher events.Dispatcher
	Sessions   *session.Store
	Tracker    *session.Tracker
	Refresher  *refresh.Coordinator
	Monitor    *monitor.Monitor
	Drafts     *draft.Store

	mu         sync.Mutex
	schedulers map[string]*draft.Scheduler
}

// Option modifies a Keeper at construction time.
type Option func(*options)

type options struct {
	dispatcher events.Dispatcher
}

// WithDispatcher substitutes the event dispatcher, letting the embedding
// application observe session notices on its own bus.
func WithDispatcher(d events.Dispatcher) Option {
	return func(o *options) {
		o.dispatcher = d
	}
}

// New wires the subsystem over the given persisted store.
func New(cfg config.Config, kv kvstore.Store, log zerolog.Logger, opts ...Option) (*Keeper, error) {
	if kv == nil {
		return nil, errors.New("[keeper.New] store is required")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	dispatcher := o.dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher(log)
	}

	sessions := session.NewStore(kv)
	tracker := session.NewTracker(sessions)
	refresher := refresh.New(sessions, dispatcher, cfg, log)

	mon, err := monitor.New(tracker, sessions, refresher, dispatcher, cfg, log)
	if err != nil {
		return nil, errors.Wrap(err, "[keeper.New] monitor")
	}

	k := &Keeper{
		cfg:        cfg,
		log:        log,
		Dispatcher: dispatcher,
		Sessions:   sessions,
		Tracker:    tracker,
		Refresher:  refresher,
		Monitor:    mon,
		Drafts:     draft.NewStore(kv, cfg, log),
		schedulers: make(map[string]*draft.Scheduler),
	}

	// Submission glue: a successfully submitted form clears its draft so
	// stale data cannot resurrect.
	dispatcher.Subscribe(events.FormSubmitted, func(_ context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.FormPayload)
		if !ok {
			return errors.New("[keeper] form.submitted carried an unexpected payload")
		}
		return k.Drafts.Clear(payload.Key)
	})

	return k, nil
}

// Start begins session monitoring.
func (k *Keeper) Start() {
	k.Monitor.Start()
}

// Stop halts monitoring and every autosave scheduler. Idempotent.
func (k *Keeper) Stop() {
	k.Monitor.Stop()

	k.mu.Lock()
	defer k.mu.Unlock()
	for _, s := range k.schedulers {
		s.Stop()
	}
}

// AutoSave starts periodic draft saving for a form. One scheduler exists
// per key; calling AutoSave again for the same key returns the existing
// one.
func (k *Keeper) AutoSave(key string, payload draft.PayloadFunc) (*draft.Scheduler, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if s, ok := k.schedulers[key]; ok {
		return s, nil
	}
	s, err := draft.NewScheduler(k.Drafts, key, payload, k.cfg, k.log)
	if err != nil {
		return nil, errors.Wrap(err, "[Keeper.AutoSave]")
	}
	k.schedulers[key] = s
	s.Start()
	return s, nil
}

// SessionWritten persists a fresh session (login) and nudges the monitor
// to re-evaluate immediately, so a stale notice never outlives a new
// login.
func (k *Keeper) SessionWritten(ctx context.Context, sess session.Session) error {
	if err := k.Sessions.Save(sess); err != nil {
		return errors.Wrap(err, "[Keeper.SessionWritten]")
	}
	k.Dispatcher.Publish(ctx, events.New(events.SessionTokenWritten, nil))
	return nil
}

// ExtendSession is the user-invoked refresh.
func (k *Keeper) ExtendSession(ctx context.Context) error {
	return k.Monitor.ExtendSession(ctx)
}

// FormSubmitted reports a successful submission for the given form key;
// the matching draft is cleared through the event glue.
func (k *Keeper) FormSubmitted(ctx context.Context, key string) {
	k.Dispatcher.Publish(ctx, events.New(events.FormSubmitted, events.FormPayload{Key: key}))
}

// Logout destroys the persisted session.
func (k *Keeper) Logout() error {
	return errors.Wrap(k.Sessions.Clear(), "[Keeper.Logout]")
}
