package session

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rxdesk/sessionkeeper/kvstore"
)

// Keys names the entries this package owns inside the shared store.
// Other application state may coexist under unrelated keys.
type Keys struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    string
}

// DefaultKeys returns the key names used by the RxDesk front end.
func DefaultKeys() Keys {
	return Keys{
		AccessToken:  "rxdesk.access_token",
		RefreshToken: "rxdesk.refresh_token",
		ExpiresAt:    "rxdesk.expires_at",
	}
}

// Store persists the Session in the shared key-value store. Only the
// refresh coordinator and login/logout write these keys, so a plain
// last-write-wins replacement is sufficient.
type Store struct {
	kv   kvstore.Store
	keys Keys
}

// StoreOption modifies a Store at construction time.
type StoreOption func(*Store)

// WithKeys overrides the store key names.
func WithKeys(keys Keys) StoreOption {
	return func(s *Store) {
		s.keys = keys
	}
}

// NewStore creates a session store over the shared key-value store.
func NewStore(kv kvstore.Store, options ...StoreOption) *Store {
	s := &Store{
		kv:   kv,
		keys: DefaultKeys(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Load reads the persisted session. Returns (nil, nil) when no access
// token is stored.
func (s *Store) Load() (*Session, error) {
	accessToken, ok, err := s.kv.Get(s.keys.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Load] access token")
	}
	if !ok {
		return nil, nil
	}

	sess := &Session{AccessToken: accessToken}

	if refreshToken, ok, err := s.kv.Get(s.keys.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "[Store.Load] refresh token")
	} else if ok {
		sess.RefreshToken = refreshToken
	}

	if expiresAt, ok, err := s.storedExpiry(); err != nil {
		return nil, errors.Wrap(err, "[Store.Load] expiry")
	} else if ok {
		sess.ExpiresAt = expiresAt
	}

	return sess, nil
}

// Save replaces the persisted session wholesale. An empty refresh token
// or zero expiry removes the corresponding key rather than storing an
// empty value.
func (s *Store) Save(sess Session) error {
	if sess.AccessToken == "" {
		return errors.New("[Store.Save] access token is required")
	}
	if err := s.kv.Set(s.keys.AccessToken, sess.AccessToken); err != nil {
		return errors.Wrap(err, "[Store.Save] access token")
	}

	if sess.RefreshToken != "" {
		if err := s.kv.Set(s.keys.RefreshToken, sess.RefreshToken); err != nil {
			return errors.Wrap(err, "[Store.Save] refresh token")
		}
	} else if err := s.kv.Delete(s.keys.RefreshToken); err != nil {
		return errors.Wrap(err, "[Store.Save] refresh token delete")
	}

	if !sess.ExpiresAt.IsZero() {
		if err := s.kv.Set(s.keys.ExpiresAt, sess.ExpiresAt.UTC().Format(time.RFC3339)); err != nil {
			return errors.Wrap(err, "[Store.Save] expiry")
		}
	} else if err := s.kv.Delete(s.keys.ExpiresAt); err != nil {
		return errors.Wrap(err, "[Store.Save] expiry delete")
	}

	return nil
}

// Clear destroys the persisted session: logout, irrecoverable refresh
// failure, or corrupt token content.
func (s *Store) Clear() error {
	if err := s.kv.Delete(s.keys.AccessToken); err != nil {
		return errors.Wrap(err, "[Store.Clear] access token")
	}
	if err := s.kv.Delete(s.keys.RefreshToken); err != nil {
		return errors.Wrap(err, "[Store.Clear] refresh token")
	}
	if err := s.kv.Delete(s.keys.ExpiresAt); err != nil {
		return errors.Wrap(err, "[Store.Clear] expiry")
	}
	return nil
}

// AccessToken reads the raw persisted access token.
func (s *Store) AccessToken() (string, bool, error) {
	return s.kv.Get(s.keys.AccessToken)
}

// RefreshToken reads the raw persisted refresh token.
func (s *Store) RefreshToken() (string, bool, error) {
	return s.kv.Get(s.keys.RefreshToken)
}

func (s *Store) storedExpiry() (time.Time, bool, error) {
	raw, ok, err := s.kv.Get(s.keys.ExpiresAt)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	expiresAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, errors.Wrap(ErrCorruptSession, "unparseable stored expiry")
	}
	return expiresAt, true, nil
}
