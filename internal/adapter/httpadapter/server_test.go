package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-feed-publisher/internal/adapter/httpadapter"
	"github.com/couchcryptid/quake-feed-publisher/internal/pipeline"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockStatus struct {
	status pipeline.Status
}

func (m *mockStatus) Status() pipeline.Status { return m.status }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv := httpadapter.NewServer(":0", &mockReadiness{}, nil, discardLogger())

	assert.Equal(t, http.StatusOK, serve(t, srv, "/healthz").Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := httpadapter.NewServer(":0", &mockReadiness{}, nil, discardLogger())

	assert.Equal(t, http.StatusOK, serve(t, srv, "/readyz").Code)
}

func TestReadyzReturns503BeforeFirstFetch(t *testing.T) {
	srv := httpadapter.NewServer(":0", &mockReadiness{err: errors.New("feed has not been fetched yet")}, nil, discardLogger())

	assert.Equal(t, http.StatusServiceUnavailable, serve(t, srv, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := httpadapter.NewServer(":0", &mockReadiness{}, nil, discardLogger())

	rec := serve(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestStatusEndpoint(t *testing.T) {
	at := time.Date(2024, time.March, 1, 10, 0, 30, 0, time.UTC)
	status := &mockStatus{status: pipeline.Status{
		Ready:         true,
		LastTickAt:    at,
		Fetched:       50,
		Duplicates:    48,
		Published:     2,
		TrackedEvents: 50,
	}}
	srv := httpadapter.NewServer(":0", &mockReadiness{}, status, discardLogger())

	rec := serve(t, srv, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got pipeline.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, status.status, got)
}

func TestStatusEndpointAbsentWithoutReporter(t *testing.T) {
	srv := httpadapter.NewServer(":0", &mockReadiness{}, nil, discardLogger())

	assert.Equal(t, http.StatusNotFound, serve(t, srv, "/status").Code)
}
