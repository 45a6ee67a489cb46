// Package draft snapshots in-progress form state into the shared
// key-value store so work survives an expired session or an accidental
// reload. The payload shape is the caller's business; this package only
// stores, ages, and returns it.
package draft

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/rxdesk/sessionkeeper/internal/config"
	"github.com/rxdesk/sessionkeeper/kvstore"
)

// DefaultKeyPrefix namespaces draft entries inside the shared store.
const DefaultKeyPrefix = "rxdesk.draft."

// Draft is one named, timestamped snapshot. At most one live draft
// exists per key.
type Draft struct {
	ID      string          `json:"id"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
	SavedAt time.Time       `json:"saved_at"`
}

// Decode unmarshals the snapshot payload into v.
func (d *Draft) Decode(v any) error {
	return errors.Wrap(json.Unmarshal(d.Payload, v), "[Draft.Decode]")
}

// Store persists drafts with a maximum-age policy. Reads are
// side-effect free except for evicting entries past their TTL.
type Store struct {
	kv      kvstore.Store
	maxAge  time.Duration
	prefix  string
	nowTime func() time.Time
	log     zerolog.Logger
}

// StoreOption modifies a Store at construction time.
type StoreOption func(*Store)

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithKeyPrefix overrides the store key namespace.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewStore creates a draft store over the shared key-value store.
func NewStore(kv kvstore.Store, cfg config.DraftConfig, log zerolog.Logger, options ...StoreOption) *Store {
	s := &Store{
		kv:      kv,
		maxAge:  cfg.GetDraftMaxAge(),
		prefix:  DefaultKeyPrefix,
		nowTime: time.Now,
		log:     log,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Save overwrites the draft for key with the given payload, stamped with
// the current time. Safe to call on a fixed period even when nothing
// changed; same-key saves are last-write-wins.
func (s *Store) Save(key string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "[Store.Save] marshal payload")
	}

	envelope, err := json.Marshal(Draft{
		ID:      uuid.New().String(),
		Key:     key,
		Payload: raw,
		SavedAt: s.nowTime(),
	})
	if err != nil {
		return errors.Wrap(err, "[Store.Save] marshal draft")
	}

	if err := s.kv.Set(s.storeKey(key), string(envelope)); err != nil {
		return errors.Wrap(err, "[Store.Save] store write")
	}
	return nil
}

// Load returns the stored draft for key, or nil when there is none. A
// draft older than the max-age policy is treated as absent and evicted.
// A corrupt stored draft is also treated as absent — a broken draft must
// never block normal use of the form.
func (s *Store) Load(key string) (*Draft, error) {
	raw, ok, err := s.kv.Get(s.storeKey(key))
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Load] store read")
	}
	if !ok {
		return nil, nil
	}

	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("evicting corrupt draft")
		s.evict(key)
		return nil, nil
	}

	if s.nowTime().Sub(d.SavedAt) > s.maxAge {
		s.log.Debug().Str("key", key).Time("saved_at", d.SavedAt).Msg("evicting stale draft")
		s.evict(key)
		return nil, nil
	}

	return &d, nil
}

// Clear removes the draft for key unconditionally. Called after a
// successful submission so a stale draft cannot resurrect
// already-submitted data.
func (s *Store) Clear(key string) error {
	if err := s.kv.Delete(s.storeKey(key)); err != nil {
		return errors.Wrap(err, "[Store.Clear]")
	}
	return nil
}

func (s *Store) evict(key string) {
	if err := s.kv.Delete(s.storeKey(key)); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("draft eviction failed")
	}
}

func (s *Store) storeKey(key string) string {
	return s.prefix + key
}
