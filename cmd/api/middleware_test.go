// cmd/api/middleware_test.go
package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitThrottlesPerClient(t *testing.T) {
	app := &application{
		config: config{env: "test"},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := app.rateLimit(next)

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// The bucket holds 50 tokens; a tight loop of 60 must get throttled.
	throttled := 0
	for i := 0; i < 60; i++ {
		if code := send("10.0.0.1:4321"); code == http.StatusTooManyRequests {
			throttled++
		} else {
			require.Equal(t, http.StatusOK, code)
		}
	}
	assert.Greater(t, throttled, 0)

	// Buckets are per client: a different address is not affected.
	assert.Equal(t, http.StatusOK, send("10.0.0.2:4321"))
}

func TestRecoverPanicReturns500(t *testing.T) {
	app := &application{
		config: config{env: "test"},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := app.recoverPanic(next)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}
