package metrics

import (
	"context"
	"errors"
	"innbot/internal/core/domain"
	"innbot/internal/core/port"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ port.Metrics = (*Prometheus)(nil)

func TestPrometheus_ObserveLookup(t *testing.T) {
	p := NewPrometheus()
	company := domain.Company{ShortName: "ACME", FullName: "ACME LLC", Address: "Moscow"}

	p.ObserveLookup(domain.FoundOutcome("1", company), false, time.Second)
	p.ObserveLookup(domain.FoundOutcome("1", company), true, time.Millisecond)
	p.ObserveLookup(domain.NotFoundOutcome("2"), false, 10*time.Second)
	p.ObserveLookup(domain.NotFoundOutcome("3"), false, 10*time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(p.lookups.WithLabelValues("found", "registry")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.lookups.WithLabelValues("found", "cache")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(p.lookups.WithLabelValues("not_found", "registry")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(p.lookupDuration))
}

func TestPrometheus_CountCommand(t *testing.T) {
	p := NewPrometheus()

	p.CountCommand("/help")
	p.CountCommand("/help")
	p.CountCommand("/inn")

	assert.InDelta(t, 2, testutil.ToFloat64(p.commands.WithLabelValues("/help")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.commands.WithLabelValues("/inn")), 0)
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		checks     []HealthCheck
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthy",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
		{
			name: "unhealthy dependency",
			path: "/healthz",
			checks: []HealthCheck{
				func(context.Context) error { return nil },
				func(context.Context) error { return errors.New("redis down") },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unhealthy",
		},
		{
			name:       "metrics",
			path:       "/metrics",
			wantStatus: http.StatusOK,
			wantBody:   "innbot_commands_total",
		},
		{
			name:       "unknown path",
			path:       "/nope",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPrometheus()
			p.CountCommand("/start")

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)

			NewHandler(p.Registry(), tc.checks...).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantBody)
		})
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, addr, NewHandler(NewPrometheus().Registry()))
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_InvalidAddress(t *testing.T) {
	err := Serve(t.Context(), "invalid-address", http.NotFoundHandler())

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "metrics server failed"))
}
