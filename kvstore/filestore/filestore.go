// Package filestore persists the key-value store as a single JSON file,
// the closest server-free analog of browser local storage.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/rxdesk/sessionkeeper/kvstore"
)

// FileStore keeps all keys in memory and rewrites the backing file on
// every mutation. Writes go through a temp file and rename so a crash
// mid-write never truncates existing state.
type FileStore struct {
	path string
	mu   sync.RWMutex
	data map[string]string
}

var _ kvstore.Store = (*FileStore)(nil)

// New loads the store from path, creating an empty store if the file
// does not exist yet.
func New(path string) (*FileStore, error) {
	fs := &FileStore{
		path: path,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[filestore.New] read")
	}
	if len(raw) == 0 {
		return fs, nil
	}
	if err := json.Unmarshal(raw, &fs.data); err != nil {
		return nil, errors.Wrap(err, "[filestore.New] unmarshal")
	}
	return fs, nil
}

func (fs *FileStore) Get(key string) (string, bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	value, ok := fs.data[key]
	return value, ok, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.data[key] = value
	return fs.flush()
}

func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.data[key]; !ok {
		return nil
	}
	delete(fs.data, key)
	return fs.flush()
}

// flush writes the full map. Callers hold the write lock.
func (fs *FileStore) flush() error {
	raw, err := json.MarshalIndent(fs.data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStore.flush] marshal")
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".sessionkeeper-*")
	if err != nil {
		return errors.Wrap(err, "[FileStore.flush] temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.flush] write")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.flush] close")
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[FileStore.flush] rename")
	}
	return nil
}
