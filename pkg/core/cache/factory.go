package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ProviderConfig holds the settings a provider needs to build a Cache.
type ProviderConfig struct {
	// Size bounds the number of entries for the memory provider.
	Size int

	// TTL expires entries after the given duration. Zero keeps entries forever.
	TTL time.Duration

	// Path is the backing file for the file and sqlite providers.
	Path string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Group, when set, wraps the cache with Prometheus counters labelled by it.
	Group string

	// Logger receives backend errors. Nil uses the logrus standard logger.
	Logger *logrus.Logger
}

func (cfg ProviderConfig) logger() *logrus.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return logrus.StandardLogger()
}

// Provider builds a Cache from config.
type Provider func(cfg ProviderConfig) (Cache, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register makes a provider available under name.
// It panics if p is nil or name is already taken.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	providers[name] = p
}

// New creates a Cache with the named provider.
func New(name string, cfg ProviderConfig) (Cache, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, fmt.Errorf("cache: create %s provider: %w", name, err)
	}
	if cfg.Group == "" {
		return inner, nil
	}
	return newInstrumentedCache(inner, cfg.Group), nil
}

// RegisteredProviders returns the sorted provider names.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
