// Package cache provides the namespaced key/value store used to persist
// session tokens and search results between runs.
package cache

// Cache is a key/value store of opaque byte values.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte)

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(key string)

	// Contains reports whether key is present without reading the value.
	Contains(key string) bool

	// Len returns the number of entries.
	Len() int

	// Close releases resources held by the store.
	Close() error
}
