package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordFetch(nil, 3)
		m.RecordCursor(7)
		m.RecordUnclassified()
		m.RecordEvent("message")
		m.RecordHandlerError("message")
		m.ObserveDispatch(0.1)
	})
}

func TestRecordFetch(t *testing.T) {
	m := NewMetrics()

	m.RecordFetch(nil, 2)
	m.RecordFetch(errors.New("boom"), 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchErrorsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpdatesTotal))
}

func TestRecordEvent(t *testing.T) {
	m := NewMetrics()

	m.RecordEvent("message")
	m.RecordEvent("message")
	m.RecordHandlerError("callback_query")
	m.RecordCursor(42)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues("message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandlerErrors.WithLabelValues("callback_query")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.CursorOffset))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.RecordUnclassified()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pollbot_poller_unclassified_updates_total 1")
}
