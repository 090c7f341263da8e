package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/angelospk/subfetch/pkg/core/fileops"
	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
)

func init() {
	Register("file", newFileCache)
}

type fileEntry struct {
	Value    []byte    `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// fileCache keeps every entry in a single JSON document. Writers take an
// exclusive flock on a sidecar lock file and merge with the on-disk state,
// so concurrent processes sharing the file do not drop each other's keys.
type fileCache struct {
	mu      sync.RWMutex
	path    string
	lock    *flock.Flock
	ttl     time.Duration
	entries map[string]fileEntry
	logger  *logrus.Logger
}

func newFileCache(cfg ProviderConfig) (Cache, error) {
	if cfg.Path == "" {
		return nil, errors.New("file cache requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	fc := &fileCache{
		path:    cfg.Path,
		lock:    flock.New(cfg.Path + ".lock"),
		ttl:     cfg.TTL,
		entries: map[string]fileEntry{},
		logger:  cfg.logger(),
	}

	if err := fc.lock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to lock cache file %s: %w", fc.lock.Path(), err)
	}
	entries, err := fc.readLocked()
	_ = fc.lock.Unlock()
	if err != nil {
		return nil, err
	}
	fc.entries = entries
	fc.logger.WithFields(logrus.Fields{"path": cfg.Path, "entries": len(entries)}).Debug("file cache loaded")
	return fc, nil
}

// readLocked loads the document from disk. The caller holds the flock.
func (fc *fileCache) readLocked() (map[string]fileEntry, error) {
	entries := map[string]fileEntry{}
	data, err := os.ReadFile(fc.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to read cache file %s: %w", fc.path, err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt cache is discarded rather than blocking the client.
		fc.logger.WithError(err).WithField("path", fc.path).Warn("discarding unreadable cache file")
		return map[string]fileEntry{}, nil
	}
	return entries, nil
}

// update applies fn to the merged on-disk state and persists it.
func (fc *fileCache) update(fn func(map[string]fileEntry)) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if err := fc.lock.Lock(); err != nil {
		fc.logger.WithError(err).Error("file cache lock failed")
		return
	}
	defer func() { _ = fc.lock.Unlock() }()

	entries, err := fc.readLocked()
	if err != nil {
		fc.logger.WithError(err).Error("file cache reload failed")
		entries = fc.entries
	}
	fn(entries)
	fc.entries = entries

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		fc.logger.WithError(err).Error("file cache marshal failed")
		return
	}
	if err := fileops.WriteFileAtomic(fc.path, data, 0o600); err != nil {
		fc.logger.WithError(err).WithField("path", fc.path).Error("file cache write failed")
	}
}

func (fc *fileCache) expired(e fileEntry) bool {
	return fc.ttl > 0 && time.Since(e.StoredAt) > fc.ttl
}

func (fc *fileCache) Get(key string) ([]byte, bool) {
	fc.mu.RLock()
	e, ok := fc.entries[key]
	fc.mu.RUnlock()
	if !ok || fc.expired(e) {
		return nil, false
	}
	return e.Value, true
}

func (fc *fileCache) Set(key string, value []byte) {
	fc.update(func(m map[string]fileEntry) {
		m[key] = fileEntry{Value: value, StoredAt: time.Now()}
	})
}

func (fc *fileCache) Delete(key string) {
	fc.update(func(m map[string]fileEntry) {
		delete(m, key)
	})
}

func (fc *fileCache) Contains(key string) bool {
	_, ok := fc.Get(key)
	return ok
}

func (fc *fileCache) Len() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	n := 0
	for _, e := range fc.entries {
		if !fc.expired(e) {
			n++
		}
	}
	return n
}

func (fc *fileCache) Close() error {
	return fc.lock.Close()
}
