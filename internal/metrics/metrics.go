package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics содержит метрики Prometheus для цикла опроса.
// nil *Metrics допустим и ничего не записывает.
type Metrics struct {
	registry *prometheus.Registry

	FetchesTotal      prometheus.Counter
	FetchErrorsTotal  prometheus.Counter
	UpdatesTotal      prometheus.Counter
	UnclassifiedTotal prometheus.Counter
	EventsTotal       *prometheus.CounterVec
	HandlerErrors     *prometheus.CounterVec
	CursorOffset      prometheus.Gauge
	DispatchDuration  prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в новом реестре.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		FetchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pollbot",
			Subsystem: "poller",
			Name:      "fetches_total",
			Help:      "Total getUpdates calls.",
		}),
		FetchErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pollbot",
			Subsystem: "poller",
			Name:      "fetch_errors_total",
			Help:      "Total getUpdates calls that failed.",
		}),
		UpdatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pollbot",
			Subsystem: "poller",
			Name:      "updates_total",
			Help:      "Total updates received.",
		}),
		UnclassifiedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pollbot",
			Subsystem: "poller",
			Name:      "unclassified_updates_total",
			Help:      "Updates that matched no known event type.",
		}),
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pollbot",
				Subsystem: "dispatcher",
				Name:      "events_total",
				Help:      "Events dispatched, by event type.",
			},
			[]string{"event_type"},
		),
		HandlerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pollbot",
				Subsystem: "dispatcher",
				Name:      "handler_errors_total",
				Help:      "Handler invocations that returned an error or panicked.",
			},
			[]string{"event_type"},
		),
		CursorOffset: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pollbot",
			Subsystem: "poller",
			Name:      "cursor_offset",
			Help:      "Offset of the next update to request.",
		}),
		DispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pollbot",
			Subsystem: "dispatcher",
			Name:      "batch_duration_seconds",
			Help:      "Time spent dispatching one fetched batch.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		m.FetchesTotal,
		m.FetchErrorsTotal,
		m.UpdatesTotal,
		m.UnclassifiedTotal,
		m.EventsTotal,
		m.HandlerErrors,
		m.CursorOffset,
		m.DispatchDuration,
	)

	return m
}

// Registry возвращает реестр метрик.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler возвращает HTTP обработчик, отдающий метрики реестра.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordFetch учитывает вызов getUpdates и число полученных обновлений.
func (m *Metrics) RecordFetch(err error, received int) {
	if m == nil {
		return
	}
	m.FetchesTotal.Inc()
	if err != nil {
		m.FetchErrorsTotal.Inc()
		return
	}
	m.UpdatesTotal.Add(float64(received))
}

// RecordCursor запоминает текущий offset.
func (m *Metrics) RecordCursor(offset int) {
	if m == nil {
		return
	}
	m.CursorOffset.Set(float64(offset))
}

// RecordUnclassified учитывает обновление неизвестного типа.
func (m *Metrics) RecordUnclassified() {
	if m == nil {
		return
	}
	m.UnclassifiedTotal.Inc()
}

// RecordEvent учитывает отправленное обработчикам событие.
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(eventType).Inc()
}

// RecordHandlerError учитывает ошибку или панику обработчика.
func (m *Metrics) RecordHandlerError(eventType string) {
	if m == nil {
		return
	}
	m.HandlerErrors.WithLabelValues(eventType).Inc()
}

// ObserveDispatch записывает время обработки пачки в секундах.
func (m *Metrics) ObserveDispatch(seconds float64) {
	if m == nil {
		return
	}
	m.DispatchDuration.Observe(seconds)
}
