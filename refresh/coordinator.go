// Package refresh exchanges the persisted refresh token for a new access
// token at the backend auth endpoint. Concurrent callers collapse into a
// single outbound request and all observe the same outcome.
package refresh

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rxdesk/sessionkeeper/events"
	"github.com/rxdesk/sessionkeeper/internal/config"
	"github.com/rxdesk/sessionkeeper/session"
)

// response bodies larger than this are malformed by definition.
const maxResponseBytes = 1 << 20

// tokenResponse is the RFC 6749 token endpoint response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Coordinator issues token-refresh requests with a single-flight
// guarantee: the periodic monitor and a manual "extend session" click
// arriving together produce one network call.
type Coordinator struct {
	sessions   *session.Store
	dispatcher events.Dispatcher
	endpoint   string
	timeout    time.Duration
	client     *http.Client
	group      singleflight.Group
	nowTime    func() time.Time
	log        zerolog.Logger
}

// Option modifies a Coordinator at construction time.
type Option func(*Coordinator)

// WithHTTPClient overrides the HTTP client (primarily for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Coordinator) {
		c.client = client
	}
}

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Coordinator) {
		c.nowTime = nowFunc
	}
}

// New creates a refresh coordinator.
func New(sessions *session.Store, dispatcher events.Dispatcher, cfg config.RefreshConfig, log zerolog.Logger, options ...Option) *Coordinator {
	c := &Coordinator{
		sessions:   sessions,
		dispatcher: dispatcher,
		endpoint:   cfg.GetRefreshEndpoint(),
		timeout:    cfg.GetRefreshTimeout(),
		client:     http.DefaultClient,
		nowTime:    time.Now,
		log:        log,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Refresh exchanges the persisted refresh token for a new session.
// Callers that arrive while a refresh is in flight await that same
// outcome rather than issuing a duplicate request. On success the
// persisted session is replaced wholesale and a refreshed event is
// published; on failure the persisted session is left untouched and a
// refresh-failed event is published. The coordinator never retries.
func (c *Coordinator) Refresh(ctx context.Context) (*session.Session, error) {
	v, err, shared := c.group.Do("refresh", func() (any, error) {
		return c.doRefresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.Debug().Msg("refresh outcome shared with concurrent caller")
	}
	return v.(*session.Session), nil
}

func (c *Coordinator) doRefresh(ctx context.Context) (*session.Session, error) {
	refreshToken, ok, err := c.sessions.RefreshToken()
	if err != nil {
		return nil, c.fail(ctx, errors.Wrap(err, "[Coordinator.doRefresh] store read"))
	}
	if !ok || refreshToken == "" {
		return nil, c.fail(ctx, ErrNoRefreshToken)
	}

	tr, err := c.requestToken(ctx, refreshToken)
	if err != nil {
		return nil, c.fail(ctx, err)
	}

	sess := session.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: refreshToken,
	}
	if tr.RefreshToken != "" { // backend rotated the refresh token
		sess.RefreshToken = tr.RefreshToken
	}
	if tr.ExpiresIn > 0 {
		sess.ExpiresAt = c.nowTime().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	if err := c.sessions.Save(sess); err != nil {
		return nil, c.fail(ctx, errors.Wrap(err, "[Coordinator.doRefresh] save session"))
	}

	c.log.Info().Int64("expires_in", tr.ExpiresIn).Msg("session refreshed")
	c.dispatcher.Publish(ctx, events.New(events.SessionRefreshed, events.Notice{
		State:            "active",
		SecondsRemaining: tr.ExpiresIn,
	}))
	return &sess, nil
}

// requestToken performs the refresh_token grant. A timed-out call is
// indistinguishable from any other failure: no partial state mutation.
func (c *Coordinator) requestToken(ctx context.Context, refreshToken string) (*tokenResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "[Coordinator.requestToken] build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrRefreshFailed, "request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(ErrRefreshFailed, "status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrapf(ErrRefreshFailed, "read body: %v", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, errors.Wrapf(ErrRefreshFailed, "malformed response: %v", err)
	}
	if tr.AccessToken == "" {
		return nil, errors.Wrap(ErrRefreshFailed, "response missing access_token")
	}
	return &tr, nil
}

// fail publishes the refresh-failed signal and passes the error through,
// so every waiter behind the single-flight boundary sees the same typed
// failure.
func (c *Coordinator) fail(ctx context.Context, err error) error {
	c.log.Warn().Err(err).Msg("session refresh failed")
	c.dispatcher.Publish(ctx, events.New(events.SessionRefreshFailed, events.Notice{State: "refresh_failed"}))
	return err
}
