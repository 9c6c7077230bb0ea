package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RequestIDInjector(t *testing.T) {
	testCases := []struct {
		name       string
		chain      func(http.Handler) http.Handler
		expectedID string
	}{
		{
			name:  "generates an id without chi",
			chain: RequestIDInjector,
		},
		{
			name: "reuses chi id",
			chain: func(next http.Handler) http.Handler {
				return middleware.RequestID(RequestIDInjector(next))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var seen, chiID string
			h := tc.chain(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
				chiID = middleware.GetReqID(r.Context())
			}))
			rr := httptest.NewRecorder()
			// when
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
			// then
			assert.NotEmpty(t, seen)
			assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
			if chiID != "" {
				assert.Equal(t, chiID, seen)
			}
		})
	}
}

func Test_StructuredLogger(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestIDInjector(StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	// when
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/post/1", nil))
	// then
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Request completed", entry["msg"])
	assert.Equal(t, http.MethodDelete, entry["method"])
	assert.Equal(t, "/post/1", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.NotEmpty(t, entry["request_id"])
}

func Test_Recoverer(t *testing.T) {
	// given
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := Recoverer(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	// when
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	// then
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func Test_RespondJSON(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	testCases := []struct {
		name         string
		payload      any
		expectedBody string
		expectedType string
	}{
		{name: "nil payload", payload: nil, expectedBody: "", expectedType: ""},
		{name: "integer", payload: int64(0), expectedBody: "0", expectedType: "application/json"},
		{name: "string", payload: "64b7f0c2a1b2c3d4e5f60718", expectedBody: `"64b7f0c2a1b2c3d4e5f60718"`, expectedType: "application/json"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondJSON(rr, logger, http.StatusOK, tc.payload)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.expectedBody, rr.Body.String())
			assert.Equal(t, tc.expectedType, rr.Header().Get("Content-Type"))
		})
	}
}
