// Package storefake provides an in-memory kvstore.Store for tests, with
// switchable failure injection for exercising storage-error paths.
package storefake

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rxdesk/sessionkeeper/kvstore"
)

var _ kvstore.Store = (*FakeStore)(nil)

type FakeStore struct {
	mu   sync.RWMutex
	data map[string]string

	// FailWrites makes Set and Delete return an error without mutating.
	FailWrites bool
	// FailReads makes Get return an error.
	FailReads bool
}

func New() *FakeStore {
	return &FakeStore{data: make(map[string]string)}
}

func (f *FakeStore) Get(key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.FailReads {
		return "", false, errors.New("injected read failure")
	}
	value, ok := f.data[key]
	return value, ok, nil
}

func (f *FakeStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWrites {
		return errors.New("injected write failure")
	}
	f.data[key] = value
	return nil
}

func (f *FakeStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWrites {
		return errors.New("injected write failure")
	}
	delete(f.data, key)
	return nil
}

// Len reports the number of stored keys.
func (f *FakeStore) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.data)
}

// Has reports whether a key is present, bypassing failure injection.
func (f *FakeStore) Has(key string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.data[key]
	return ok
}
