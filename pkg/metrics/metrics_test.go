package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	m := NewMetrics(nil)

	var err error
	m.ObserveOperation("reserve", time.Now(), &err)
	err = errors.New("boom")
	m.ObserveOperation("reserve", time.Now(), &err)
	m.ObserveOperation("reserve", time.Now(), &err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationCounter.WithLabelValues("reserve", OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationCounter.WithLabelValues("reserve", OutcomeFailed)))
}

func TestMiddleware_LabelsByRouteTemplate(t *testing.T) {
	m := NewMetrics(nil)

	router := mux.NewRouter()
	router.Use(m.Middleware())
	router.HandleFunc("/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}).Methods(http.MethodGet)

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("/events/{id}", http.MethodGet, "418")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestsInFlight))
}

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.SlotsMoved.WithLabelValues("reserved").Add(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "volunteer_hub_ledger_slots_moved_total")
}
