package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRPCCall("GetTransaction", "success", "mainnet", 0.1)
		m.RecordThrottleWait("mainnet", 0.1)
		m.RecordRPCSignaturesPerCall("mainnet", 10)
		m.RecordSignaturesFiltered("mint", 1, 2)
		m.RecordTransactionClassified("mint", "new_user")
		m.RecordEventReported("mint")
		m.RecordScanDuration("mint", "success", 1)
		m.RecordNATSPublish("newusers.mint", "success", 0.01)
	})
}

func TestRecordSignaturesFiltered(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordSignaturesFiltered("mint", 3, 7)
	m.RecordSignaturesFiltered("mint", 1, 0)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.signaturesFilteredTotal.WithLabelValues("mint", "kept")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.signaturesFilteredTotal.WithLabelValues("mint", "dropped")))
}

func TestRecordRPCCall(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordRPCCall("GetTransaction", "success", "mainnet", 0.2)
	m.RecordRPCCall("GetTransaction", "error", "mainnet", 0.3)
	m.RecordRPCCall("GetTransaction", "success", "mainnet", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.solanaRPCCallsTotal.WithLabelValues("GetTransaction", "success", "mainnet")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.solanaRPCCallsTotal.WithLabelValues("GetTransaction", "error", "mainnet")))
}

func TestPush(t *testing.T) {
	var hits atomic.Int32
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		path.Store(r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	m.RecordEventReported("mint")

	err := Push(context.Background(), srv.URL, "garitrack", registry, map[string]string{"instance": "abc"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.True(t, strings.HasPrefix(path.Load().(string), "/metrics/job/garitrack"))
	assert.Contains(t, path.Load().(string), "/instance/abc")
}

func TestPush_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	registry := prometheus.NewRegistry()
	NewMetrics(registry).RecordEventReported("mint")

	err := Push(context.Background(), srv.URL, "garitrack", registry, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to push metrics")
}
