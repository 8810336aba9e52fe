package dispatch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/safetrail/sentinel-agent/pkg/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcher(baseURL string) *dispatch.Dispatcher {
	return dispatch.NewDispatcher(baseURL, 2*time.Second, "test-device-id", []byte("service-key"), zerolog.Nop())
}

func TestDispatcher_Post_Success(t *testing.T) {
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Write([]byte(`{"safety_score": 85, "risk_level": "low"}`))
	}))
	defer server.Close()

	d := newDispatcher(server.URL)

	var out struct {
		SafetyScore float64 `json:"safety_score"`
		RiskLevel   string  `json:"risk_level"`
	}
	err := d.Post(context.Background(), "/calculate_safety", map[string]any{"lat": 20.0}, &out)

	require.NoError(t, err)
	assert.Equal(t, 85.0, out.SafetyScore)
	assert.Equal(t, "low", out.RiskLevel)

	// Every request carries the signing headers.
	assert.Equal(t, "test-device-id", gotHeaders.Get("X-Device-Id"))
	assert.NotEmpty(t, gotHeaders.Get("X-Timestamp"))
	assert.NotEmpty(t, gotHeaders.Get("X-Signature"))
}

func TestDispatcher_Post_NilOutIgnoresBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	err := newDispatcher(server.URL).Post(context.Background(), "/api/dropoff", map[string]int{"x": 1}, nil)
	assert.NoError(t, err)
}

func TestDispatcher_Post_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	err := newDispatcher(server.URL).Post(context.Background(), "/calculate_safety", nil, nil)

	var dispatchErr *dispatch.Error
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, dispatch.KindServer, dispatchErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, dispatchErr.Status)
}

func TestDispatcher_Post_NetworkError(t *testing.T) {
	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	err := newDispatcher(server.URL).Post(context.Background(), "/calculate_safety", nil, nil)

	var dispatchErr *dispatch.Error
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, dispatch.KindNetwork, dispatchErr.Kind)
}

func TestDispatcher_Post_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{truncated"))
	}))
	defer server.Close()

	var out map[string]any
	err := newDispatcher(server.URL).Post(context.Background(), "/calculate_safety", nil, &out)

	var dispatchErr *dispatch.Error
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, dispatch.KindMalformed, dispatchErr.Kind)
}

func TestDispatcher_Post_NeverPanics(t *testing.T) {
	// Unmarshalable body is reported, not raised.
	err := newDispatcher("http://127.0.0.1:0").Post(context.Background(), "/x", make(chan int), nil)

	var dispatchErr *dispatch.Error
	require.True(t, errors.As(err, &dispatchErr))
	assert.Equal(t, dispatch.KindMalformed, dispatchErr.Kind)
}
