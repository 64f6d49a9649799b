package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveApply(ResultCreated)
	m.ObserveApply(ResultPatched)
	m.ObserveApply(ResultPatched)
	m.ObserveUserLookup(true)
	m.ObserveUserLookup(false)
	m.ObserveUserLookup(false)
	m.SetTracked(3)

	require.Equal(t, 1.0, testutil.ToFloat64(m.Applies.WithLabelValues(ResultCreated)))
	require.Equal(t, 2.0, testutil.ToFloat64(m.Applies.WithLabelValues(ResultPatched)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.UserLookups.WithLabelValues("hit")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.UserLookups.WithLabelValues("miss")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.Tracked))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 3)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveApply(ResultFailed)
		m.ObserveUserLookup(true)
		m.SetTracked(1)
	})
}

func TestMetrics_NilRegistry(t *testing.T) {
	t.Parallel()

	m := New(nil)
	m.ObserveApply(ResultRejected)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Applies.WithLabelValues(ResultRejected)))
}
