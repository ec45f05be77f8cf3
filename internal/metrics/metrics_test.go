package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveBeforeInitIsNoop(t *testing.T) {
	if operationsTotal != nil {
		t.Skip("collectors already registered")
	}
	assert.NotPanics(t, func() {
		ObserveOperation("placement.upsert", ResultApplied)
		ObserveDrop("placed")
		ObserveExport("xlsx", ResultSuccess, 0.1)
		ObserveSnapshotSave(ResultSuccess)
		SetSessions(1)
		SetClients(2)
	})
}

func TestCounters(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(operationsTotal.WithLabelValues("device.drop", ResultApplied))
	ObserveOperation("device.drop", ResultApplied)
	ObserveOperation("device.drop", ResultApplied)
	assert.Equal(t, before+2, testutil.ToFloat64(operationsTotal.WithLabelValues("device.drop", ResultApplied)))

	ObserveDrop("ignored_no_room")
	assert.GreaterOrEqual(t, testutil.ToFloat64(dropOutcomes.WithLabelValues("ignored_no_room")), 1.0)

	ObserveExport("pdf", ResultSuccess, 0.02)
	assert.GreaterOrEqual(t, testutil.ToFloat64(exportsTotal.WithLabelValues("pdf", ResultSuccess)), 1.0)

	SetSessions(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(activeSessions))
}

func TestHandlerExposesMetrics(t *testing.T) {
	Init()
	ObserveSnapshotSave(ResultSuccess)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "siteplan_snapshot_saves_total")
}
