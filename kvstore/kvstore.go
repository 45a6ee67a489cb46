// Package kvstore defines the persisted key-value store the session
// keeper runs against. The store is shared and process-wide; other parts
// of the application may keep unrelated keys in it, so implementations
// must never assume exclusive ownership of the keyspace.
package kvstore

// Store is a synchronous string key-value store surviving restarts.
// Absence is reported through the boolean, never through an error.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}
