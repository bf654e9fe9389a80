package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/coherentnotebook/entropy/internal/cache"
	"github.com/coherentnotebook/entropy/internal/catalog"
	"github.com/coherentnotebook/entropy/internal/notebook"
	"github.com/coherentnotebook/entropy/internal/propagation"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestMetricsRegisterAndObserve(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(firstCollector(m)))

	for _, c := range m.Collectors()[1:] {
		require.NoError(t, reg.Register(c))
	}

	worker := propagation.NewWorker(propagation.NewQueue(), propagation.NoOpCostUpdater{})
	job := propagation.NewJob(notebook.NotebookID{}, []notebook.EntryID{{}}, 0.5)
	worker.ProcessJobSync(context.Background(), job)

	m.ObserveWorker(worker)
	require.Equal(t, float64(1), gaugeValue(t, m.jobsProcessed))

	c := cache.New(cache.DefaultConfig())
	c.Set(notebook.NotebookID{}, catalog.Catalog{}, 1)
	m.ObserveCache(c)
	require.Equal(t, float64(1), gaugeValue(t, m.cacheTotal))
	require.Equal(t, float64(1), gaugeValue(t, m.cacheFresh))
}

func firstCollector(m *Metrics) prometheus.Collector {
	return m.Collectors()[0]
}
