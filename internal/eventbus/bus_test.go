package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/events"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/metrics"
)

func newTestBus(t *testing.T) (*Bus, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	return New(WithMetrics(m), WithLogger(zap.NewNop())), m
}

func TestBus_Publish_Order(t *testing.T) {
	bus, _ := newTestBus(t)
	ctx := context.Background()
	var calls []string

	Subscribe(bus, "first", func(ctx context.Context, e events.SeatReserved) error {
		calls = append(calls, "first:"+e.SeatLabel)
		return nil
	})
	bus.SubscribeAll("audit", func(ctx context.Context, e events.Event) error {
		calls = append(calls, "audit:"+e.EventName())
		return nil
	})
	Subscribe(bus, "second", func(ctx context.Context, e events.SeatReserved) error {
		calls = append(calls, "second:"+e.SeatLabel)
		return nil
	})

	bus.Publish(ctx, events.SeatReserved{SeatLabel: "A1"})

	assert.Equal(t, []string{"first:A1", "audit:seat.reserved", "second:A1"}, calls)
	assert.Equal(t, []string{"first", "audit", "second"}, bus.Handlers())
}

func TestBus_Publish_FiltersByEventType(t *testing.T) {
	bus, _ := newTestBus(t)
	var reserved, cancelled int

	Subscribe(bus, "reserved", func(ctx context.Context, e events.SeatReserved) error {
		reserved++
		return nil
	})
	Subscribe(bus, "cancelled", func(ctx context.Context, e events.ShowingCancelled) error {
		cancelled++
		return nil
	})

	bus.Publish(context.Background(), events.SeatReserved{})
	bus.Publish(context.Background(), events.SeatReserved{})
	bus.Publish(context.Background(), events.ShowingCancelled{})
	bus.Publish(context.Background(), events.ClientRegistered{})

	assert.Equal(t, 2, reserved)
	assert.Equal(t, 1, cancelled)
}

func TestBus_Publish_HandlerErrorIsIsolated(t *testing.T) {
	bus, m := newTestBus(t)
	var after bool

	Subscribe(bus, "failing", func(ctx context.Context, e events.SeatCancelled) error {
		return errors.New("mongo unavailable")
	})
	Subscribe(bus, "after", func(ctx context.Context, e events.SeatCancelled) error {
		after = true
		return nil
	})

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), events.SeatCancelled{})
	})

	assert.True(t, after)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventHandlerFailuresTotal.WithLabelValues(events.NameSeatCancelled, "failing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublishedTotal.WithLabelValues(events.NameSeatCancelled)))
}

func TestBus_Publish_PanicIsRecovered(t *testing.T) {
	bus, m := newTestBus(t)
	var after bool

	bus.SubscribeAll("panicking", func(ctx context.Context, e events.Event) error {
		panic("boom")
	})
	bus.SubscribeAll("after", func(ctx context.Context, e events.Event) error {
		after = true
		return nil
	})

	require.NotPanics(t, func() {
		bus.Publish(context.Background(), events.ShowingCreated{})
	})

	assert.True(t, after)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventHandlerFailuresTotal.WithLabelValues(events.NameShowingCreated, "panicking")))
}

func TestBus_Publish_NoSubscribers(t *testing.T) {
	bus := New()

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), events.ClientRegistered{})
	})
}

func TestBus_Publish_NestedPublish(t *testing.T) {
	bus, _ := newTestBus(t)
	var got []string

	Subscribe(bus, "cascade", func(ctx context.Context, e events.ShowingCancelled) error {
		bus.Publish(ctx, events.SeatsGenerated{ShowingID: e.ShowingID})
		return nil
	})
	Subscribe(bus, "sink", func(ctx context.Context, e events.SeatsGenerated) error {
		got = append(got, e.ShowingID)
		return nil
	})

	bus.Publish(context.Background(), events.ShowingCancelled{ShowingID: "showing-1"})

	assert.Equal(t, []string{"showing-1"}, got)
}
