package session

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Tracker projects the remaining lifetime of the persisted access token.
// It is side-effect free and re-reads the store on every call, so the
// reported expiry always reflects the token actually persisted — never a
// value cached across a token replacement.
//
// The expiry claim is read without signature verification: client-side
// expiry is UX timing only, never an access-control decision.
type Tracker struct {
	sessions *Store
	nowTime  func() time.Time
}

// TrackerOption modifies a Tracker at construction time.
type TrackerOption func(*Tracker)

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.nowTime = nowFunc
	}
}

// NewTracker creates a tracker over the given session store.
func NewTracker(sessions *Store, options ...TrackerOption) *Tracker {
	t := &Tracker{
		sessions: sessions,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// ExpiresAt resolves the persisted token's expiry instant. The boolean is
// false when no token is stored. A stored token whose expiry cannot be
// determined from either the JWT exp claim or the persisted instant is a
// data error (ErrCorruptSession), not absence.
func (t *Tracker) ExpiresAt() (time.Time, bool, error) {
	accessToken, ok, err := t.sessions.AccessToken()
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "[Tracker.ExpiresAt] store read")
	}
	if !ok {
		return time.Time{}, false, nil
	}

	if expiresAt, ok := expiryClaim(accessToken); ok {
		return expiresAt, true, nil
	}

	// Opaque token: fall back to the expiry persisted alongside it from
	// the token response's expires_in.
	if expiresAt, ok, err := t.sessions.storedExpiry(); err == nil && ok {
		return expiresAt, true, nil
	}

	return time.Time{}, false, errors.Wrap(ErrCorruptSession, "[Tracker.ExpiresAt] no usable expiry")
}

// Remaining returns the time left until expiry. Zero or negative values
// mean the token has already expired; the boolean is false when no token
// is persisted.
func (t *Tracker) Remaining() (time.Duration, bool, error) {
	expiresAt, ok, err := t.ExpiresAt()
	if err != nil || !ok {
		return 0, ok, err
	}
	return expiresAt.Sub(t.nowTime()), true, nil
}

// SecondsUntilExpiry is Remaining in whole seconds.
func (t *Tracker) SecondsUntilExpiry() (int64, bool, error) {
	remaining, ok, err := t.Remaining()
	if err != nil || !ok {
		return 0, ok, err
	}
	return int64(remaining / time.Second), true, nil
}

// expiryClaim extracts the exp claim from a JWT without verifying the
// signature.
func expiryClaim(rawToken string) (time.Time, bool) {
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	expiresAt, err := token.Claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return time.Time{}, false
	}
	return expiresAt.Time, true
}
