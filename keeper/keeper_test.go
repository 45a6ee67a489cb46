package keeper_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rxdesk/sessionkeeper/events"
	"github.com/rxdesk/sessionkeeper/internal/config"
	"github.com/rxdesk/sessionkeeper/keeper"
	"github.com/rxdesk/sessionkeeper/kvstore/storefake"
	"github.com/rxdesk/sessionkeeper/monitor"
	"github.com/rxdesk/sessionkeeper/session"
)

type keeperFixture struct {
	store  *storefake.FakeStore
	keeper *keeper.Keeper

	mu       sync.Mutex
	notices  []events.Event
	dispatch events.Dispatcher
}

func setupKeeper(t *testing.T) *keeperFixture {
	t.Helper()

	f := &keeperFixture{store: storefake.New()}
	f.dispatch = events.NewInMemoryDispatcher(zerolog.Nop())

	record := func(_ context.Context, event events.Event) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.notices = append(f.notices, event)
		return nil
	}
	for _, eventType := range []events.EventType{
		events.SessionWarning, events.SessionCritical, events.SessionExpired, events.SessionDismissed,
	} {
		f.dispatch.Subscribe(eventType, record)
	}

	cfg := config.NewSettings()
	cfg.PollInterval = time.Hour
	cfg.AutoSaveInterval = 20 * time.Millisecond

	k, err := keeper.New(cfg, f.store, zerolog.Nop(), keeper.WithDispatcher(f.dispatch))
	require.NoError(t, err)
	f.keeper = k
	return f
}

func (f *keeperFixture) noticeTypes() []events.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()

	types := make([]events.EventType, 0, len(f.notices))
	for _, event := range f.notices {
		types = append(types, event.Type)
	}
	return types
}

func TestNewRequiresStore(t *testing.T) {
	_, err := keeper.New(config.NewSettings(), nil, zerolog.Nop())
	require.Error(t, err)
}

func TestSessionWrittenReevaluatesImmediately(t *testing.T) {
	f := setupKeeper(t)
	f.keeper.Start()
	defer f.keeper.Stop()

	require.Equal(t, monitor.StateActive, f.keeper.Monitor.State())

	// Two minutes remaining sits inside the default five-minute warning
	// threshold. The poll interval is an hour, so only the token-written
	// event can move the state.
	err := f.keeper.SessionWritten(context.Background(), session.Session{
		AccessToken: "opaque-token",
		ExpiresAt:   time.Now().Add(2 * time.Minute),
	})
	require.NoError(t, err)

	require.Equal(t, monitor.StateWarning, f.keeper.Monitor.State())
	require.Contains(t, f.noticeTypes(), events.SessionWarning)
}

func TestFormSubmittedClearsDraft(t *testing.T) {
	f := setupKeeper(t)

	require.NoError(t, f.keeper.Drafts.Save("prescription-create", map[string]string{"patient_name": "A"}))

	f.keeper.FormSubmitted(context.Background(), "prescription-create")

	loaded, err := f.keeper.Drafts.Load("prescription-create")
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestFormSubmittedForUnknownKeyIsHarmless(t *testing.T) {
	f := setupKeeper(t)
	f.keeper.FormSubmitted(context.Background(), "never-saved")
}

func TestAutoSaveReturnsOneSchedulerPerKey(t *testing.T) {
	f := setupKeeper(t)
	defer f.keeper.Stop()

	payload := func() any { return map[string]string{"patient_name": "A"} }

	first, err := f.keeper.AutoSave("prescription-create", payload)
	require.NoError(t, err)
	again, err := f.keeper.AutoSave("prescription-create", payload)
	require.NoError(t, err)
	require.Same(t, first, again)

	other, err := f.keeper.AutoSave("prescription-edit", payload)
	require.NoError(t, err)
	require.NotSame(t, first, other)
}

func TestAutoSavePersistsDrafts(t *testing.T) {
	f := setupKeeper(t)
	defer f.keeper.Stop()

	_, err := f.keeper.AutoSave("prescription-create", func() any {
		return map[string]string{"patient_name": "A"}
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		d, loadErr := f.keeper.Drafts.Load("prescription-create")
		return loadErr == nil && d != nil
	}, time.Second, 10*time.Millisecond)
}

func TestStopHaltsSchedulers(t *testing.T) {
	f := setupKeeper(t)

	_, err := f.keeper.AutoSave("prescription-create", func() any {
		return map[string]string{"patient_name": "A"}
	})
	require.NoError(t, err)

	f.keeper.Start()
	f.keeper.Stop()
	f.keeper.Stop() // idempotent

	// No autosave lands after Stop has returned.
	require.NoError(t, f.keeper.Drafts.Clear("prescription-create"))
	time.Sleep(60 * time.Millisecond)

	loaded, err := f.keeper.Drafts.Load("prescription-create")
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestLogoutDestroysSession(t *testing.T) {
	f := setupKeeper(t)

	err := f.keeper.SessionWritten(context.Background(), session.Session{
		AccessToken: "opaque-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, f.keeper.Logout())

	sess, err := f.keeper.Sessions.Load()
	require.NoError(t, err)
	require.Nil(t, sess)
}
