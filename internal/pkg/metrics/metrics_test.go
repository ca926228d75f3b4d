package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.SeatOperationsTotal)
	assert.NotNil(t, m.AvailabilityAdjustmentsTotal)
	assert.NotNil(t, m.EventsPublishedTotal)
	assert.NotNil(t, m.EventHandlerFailuresTotal)
	assert.NotNil(t, m.SweepRunsTotal)
	assert.NotNil(t, m.SweepSeatsCancelledTotal)
	assert.NotNil(t, m.SweepDuration)
	assert.NotNil(t, m.DistributedLockDuration)
}

func TestNewWithRegistry_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWithRegistry(reg)

	assert.Panics(t, func() { NewWithRegistry(reg) })
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/showings", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/showings/:id/seats/:label/reserve", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/showings/:id/seats/:label/reserve", "409").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "http_requests_total metric not found")
}

func TestObserveSeatOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveSeatOperation("reserve", "success")
	m.ObserveSeatOperation("reserve", "success")
	m.ObserveSeatOperation("reserve", "conflict")
	m.ObserveSeatOperation("cancel", "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SeatOperationsTotal.WithLabelValues("reserve", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeatOperationsTotal.WithLabelValues("reserve", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SeatOperationsTotal.WithLabelValues("cancel", "success")))
}

func TestObserveSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveSweep("schedule", "success", 3, 150*time.Millisecond)
	m.ObserveSweep("manual", "success", 2, 50*time.Millisecond)
	m.ObserveSweep("manual", "locked", 0, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepRunsTotal.WithLabelValues("schedule", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepRunsTotal.WithLabelValues("manual", "locked")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.SweepSeatsCancelledTotal))
}

func TestObserveEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveEventPublished("seat.reserved")
	m.ObserveHandlerFailure("seat.reserved", "history")
	m.ObserveAvailabilityAdjustment("skipped")
	m.ObserveLock("acquire", "success", 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublishedTotal.WithLabelValues("seat.reserved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventHandlerFailuresTotal.WithLabelValues("seat.reserved", "history")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AvailabilityAdjustmentsTotal.WithLabelValues("skipped")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveSeatOperation("reserve", "success")
		m.ObserveAvailabilityAdjustment("applied")
		m.ObserveEventPublished("seat.reserved")
		m.ObserveHandlerFailure("seat.reserved", "history")
		m.ObserveSweep("manual", "success", 1, time.Second)
		m.ObserveLock("acquire", "success", time.Millisecond)
	})
}
