package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.CyclesTotal.Inc()
	m.Fail(ReasonData)
	m.Verdicts.WithLabelValues("BUY").Inc()
	m.Notifications.WithLabelValues("sent").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["signalbot_cycles_total"])
	assert.True(t, names["signalbot_cycle_failures_total"])
	assert.True(t, names["signalbot_verdicts_total"])
	assert.True(t, names["signalbot_notifications_total"])
}

func TestNewMetrics_NilRegistry(t *testing.T) {
	m := NewMetrics(nil)
	m.CyclesTotal.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CyclesTotal))
}

func TestObserveCycle(t *testing.T) {
	m := NewMetrics(nil)
	start := time.Unix(1700000000, 0)
	m.ObserveCycle(start, start.Add(2*time.Second))

	assert.Equal(t, 1700000002.0, testutil.ToFloat64(m.LastCycle))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CycleDuration))
}

func TestFail_ByReason(t *testing.T) {
	m := NewMetrics(nil)
	m.Fail(ReasonData)
	m.Fail(ReasonData)
	m.Fail(ReasonPersist)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CycleFailures.WithLabelValues(ReasonData)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CycleFailures.WithLabelValues(ReasonPersist)))
}
