package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Counters carry a "cache" label holding ProviderConfig.Group.
var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "subfetch",
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits.",
		},
		[]string{"cache"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "subfetch",
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses.",
		},
		[]string{"cache"},
	)

	SetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "subfetch",
			Name:      "cache_sets_total",
			Help:      "Total number of cache writes.",
		},
		[]string{"cache"},
	)

	DeletesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "subfetch",
			Name:      "cache_deletes_total",
			Help:      "Total number of cache deletions.",
		},
		[]string{"cache"},
	)
)

func init() {
	prometheus.MustRegister(
		HitsTotal,
		MissesTotal,
		SetsTotal,
		DeletesTotal,
	)
}

// entriesCollector reports a group's entry count at scrape time.
type entriesCollector struct {
	desc    *prometheus.Desc
	lenFunc func() int
}

func (c *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.lenFunc()))
}

var (
	entriesCollectorMu sync.Mutex
	entriesCollectors  = make(map[string]*entriesCollector)
	// entriesReg is swapped by tests for an isolated registry.
	entriesReg prometheus.Registerer = prometheus.DefaultRegisterer
)

// registerEntriesCollector replaces any collector already registered for group.
func registerEntriesCollector(group string, lenFunc func() int) {
	desc := prometheus.NewDesc(
		"subfetch_cache_entries",
		"Current number of entries in the cache.",
		nil,
		prometheus.Labels{"cache": group},
	)
	c := &entriesCollector{desc: desc, lenFunc: lenFunc}

	entriesCollectorMu.Lock()
	defer entriesCollectorMu.Unlock()

	if old, ok := entriesCollectors[group]; ok {
		entriesReg.Unregister(old)
	}
	entriesCollectors[group] = c
	_ = entriesReg.Register(c)
}

func unregisterEntriesCollector(group string) {
	entriesCollectorMu.Lock()
	defer entriesCollectorMu.Unlock()

	if c, ok := entriesCollectors[group]; ok {
		entriesReg.Unregister(c)
		delete(entriesCollectors, group)
	}
}
