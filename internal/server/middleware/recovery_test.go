package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/vitrina/pkg/api"
)

func TestRecover(t *testing.T) {
	tests := []struct {
		name  string
		panic any
	}{
		{name: "string", panic: "index out of range"},
		{name: "error", panic: errors.New("nil schema")},
		{name: "struct", panic: struct{ table string }{"products"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logBuf, nil))

			h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.panic)
			}))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/rest/v1/products?id=eq.p1", nil))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, api.CodeInternal, resp.Code)
			assert.Equal(t, "internal server error", resp.Message)

			logged := logBuf.String()
			assert.Contains(t, logged, "Handler panicked")
			assert.Contains(t, logged, "PATCH")
			assert.Contains(t, logged, "/rest/v1/products")
			assert.Contains(t, logged, "goroutine")
		})
	}
}

func TestRecover_PassThrough(t *testing.T) {
	var logBuf bytes.Buffer
	h := Recover(slog.New(slog.NewTextHandler(&logBuf, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id":"c1"}]`)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rest/v1/categories", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, `[{"id":"c1"}]`, w.Body.String())
	assert.Empty(t, logBuf.String())
}

func TestRecover_AbortHandler(t *testing.T) {
	h := Recover(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithError(t, http.ErrAbortHandler.Error(), func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/rest/v1/products", nil))
	})
}

// Паника под метриками и логированием все равно учитывается как 500
func TestRecover_OutermostInChain(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := NewMetrics()

	boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("storage handle is nil")
	})
	h := Recover(logger)(metrics.Middleware(Logging(logger)(boom)))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rest/v1/attributes", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
