package cache

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, cv *prometheus.CounterVec, label string) float64 {
	t.Helper()
	c, err := cv.GetMetricWithLabelValues(label)
	require.NoError(t, err)
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func useIsolatedRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	old := entriesReg
	entriesReg = reg
	t.Cleanup(func() { entriesReg = old })
	return reg
}

func TestInstrumentedCache_Counters(t *testing.T) {
	useIsolatedRegistry(t)
	c, err := New("memory", ProviderConfig{Size: 10, Group: "test-counters"})
	require.NoError(t, err)
	defer c.Close()

	hits := counterValue(t, HitsTotal, "test-counters")
	misses := counterValue(t, MissesTotal, "test-counters")
	sets := counterValue(t, SetsTotal, "test-counters")
	deletes := counterValue(t, DeletesTotal, "test-counters")

	c.Set("k", []byte("v"))
	_, _ = c.Get("k")
	_, _ = c.Get("absent")
	c.Delete("k")

	assert.Equal(t, hits+1, counterValue(t, HitsTotal, "test-counters"))
	assert.Equal(t, misses+1, counterValue(t, MissesTotal, "test-counters"))
	assert.Equal(t, sets+1, counterValue(t, SetsTotal, "test-counters"))
	assert.Equal(t, deletes+1, counterValue(t, DeletesTotal, "test-counters"))
}

func TestInstrumentedCache_EntriesGauge(t *testing.T) {
	reg := useIsolatedRegistry(t)
	c, err := New("memory", ProviderConfig{Size: 10, Group: "test-entries"})
	require.NoError(t, err)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "subfetch_cache_entries", families[0].GetName())
	assert.Equal(t, float64(2), families[0].GetMetric()[0].GetGauge().GetValue())

	require.NoError(t, c.Close())
	families, err = reg.Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}
