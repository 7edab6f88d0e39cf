package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusObserver(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	o, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)

	o.RecordMirror(10*time.Millisecond, 3, nil)
	o.RecordMirror(time.Millisecond, 5, errors.New("disk full"))
	o.RecordEvictions(2)
	o.RecordEvictions(0)
	o.RecordLoad("history")
	o.RecordLoad("history")
	o.RecordImport("full-fidelity", 4, nil)
	o.RecordImport("legacy", 0, errors.New("no rows"))
	o.RecordExport(time.Millisecond, nil)

	assert.Equal(t, 3.0, testutil.ToFloat64(o.mirrored), "failed mirror keeps the last size")
	assert.Equal(t, 1.0, testutil.ToFloat64(o.errors.WithLabelValues("mirror")))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.evictions))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.loads.WithLabelValues("history")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.imports.WithLabelValues("full-fidelity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.errors.WithLabelValues("import")))
	assert.Equal(t, 0.0, testutil.ToFloat64(o.errors.WithLabelValues("export")))
	assert.Equal(t, 2, testutil.CollectAndCount(o.duration))
}

func TestNewPrometheusObserver_Reregister(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusObserver("", reg)
	require.NoError(t, err)
	_, err = NewPrometheusObserver("", reg)
	assert.NoError(t, err, "already registered collectors are tolerated")
}

func TestNilAndNopObservers(t *testing.T) {
	t.Parallel()
	var o *PrometheusObserver
	assert.NotPanics(t, func() {
		o.RecordMirror(0, 1, nil)
		o.RecordEvictions(1)
		o.RecordLoad("default")
		o.RecordImport("legacy", 1, nil)
		o.RecordExport(0, nil)

		n := Nop()
		n.RecordMirror(0, 1, nil)
		n.RecordLoad("default")
	})
}
