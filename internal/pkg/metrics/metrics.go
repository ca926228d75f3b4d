package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 座席操作の総数（operation: reserve/cancel, status: success/conflict/not_found/invalid/error）
	SeatOperationsTotal *prometheus.CounterVec

	// 空席数調整の総数（result: applied/skipped/error）
	AvailabilityAdjustmentsTotal *prometheus.CounterVec

	// 発行されたドメインイベントの総数（event）
	EventsPublishedTotal *prometheus.CounterVec

	// イベントハンドラの失敗数（event, handler）
	EventHandlerFailuresTotal *prometheus.CounterVec

	// スイープ実行数（trigger: schedule/manual, status: success/locked/error）
	SweepRunsTotal *prometheus.CounterVec

	// スイープでキャンセルした座席数
	SweepSeatsCancelledTotal prometheus.Counter

	// スイープの所要時間
	SweepDuration prometheus.Histogram

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		SeatOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_operations_total",
				Help: "Total number of seat reserve/cancel attempts",
			},
			[]string{"operation", "status"},
		),
		AvailabilityAdjustmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "showing_availability_adjustments_total",
				Help: "Total number of available-seat counter adjustments",
			},
			[]string{"result"},
		),
		EventsPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domain_events_published_total",
				Help: "Total number of domain events published on the in-process bus",
			},
			[]string{"event"},
		),
		EventHandlerFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domain_event_handler_failures_total",
				Help: "Total number of domain event handler failures",
			},
			[]string{"event", "handler"},
		),
		SweepRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stale_reservation_sweeps_total",
				Help: "Total number of stale reservation sweep runs",
			},
			[]string{"trigger", "status"},
		),
		SweepSeatsCancelledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stale_reservation_seats_cancelled_total",
				Help: "Total number of reserved seats cancelled by the sweeper",
			},
		),
		SweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stale_reservation_sweep_duration_seconds",
				Help:    "Duration of stale reservation sweep runs",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
			},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SeatOperationsTotal,
		m.AvailabilityAdjustmentsTotal,
		m.EventsPublishedTotal,
		m.EventHandlerFailuresTotal,
		m.SweepRunsTotal,
		m.SweepSeatsCancelledTotal,
		m.SweepDuration,
		m.DistributedLockDuration,
	)

	return m
}

// 以下の記録用メソッドは nil レシーバでも安全に呼び出せる

// ObserveSeatOperation は座席操作の結果を記録する
func (m *Metrics) ObserveSeatOperation(operation, status string) {
	if m == nil {
		return
	}
	m.SeatOperationsTotal.WithLabelValues(operation, status).Inc()
}

// ObserveAvailabilityAdjustment は空席数調整の結果を記録する
func (m *Metrics) ObserveAvailabilityAdjustment(result string) {
	if m == nil {
		return
	}
	m.AvailabilityAdjustmentsTotal.WithLabelValues(result).Inc()
}

// ObserveEventPublished はイベント発行を記録する
func (m *Metrics) ObserveEventPublished(event string) {
	if m == nil {
		return
	}
	m.EventsPublishedTotal.WithLabelValues(event).Inc()
}

// ObserveHandlerFailure はイベントハンドラの失敗を記録する
func (m *Metrics) ObserveHandlerFailure(event, handler string) {
	if m == nil {
		return
	}
	m.EventHandlerFailuresTotal.WithLabelValues(event, handler).Inc()
}

// ObserveSweep はスイープの実行結果を記録する
func (m *Metrics) ObserveSweep(trigger, status string, seatsCancelled int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SweepRunsTotal.WithLabelValues(trigger, status).Inc()
	m.SweepSeatsCancelledTotal.Add(float64(seatsCancelled))
	m.SweepDuration.Observe(elapsed.Seconds())
}

// ObserveLock は分散ロック操作の所要時間を記録する
func (m *Metrics) ObserveLock(operation, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(elapsed.Seconds())
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
