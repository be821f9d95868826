package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	t.Run("sets the allow headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/getcode", nil)

		CORS(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("answers preflight without hitting the handler", func(t *testing.T) {
		called := false
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/send", nil)

		CORS(inner).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, called)
	})
}

func TestBodyLimit(t *testing.T) {
	t.Run("rejects oversized declared bodies", func(t *testing.T) {
		m := NewBodyLimitMiddleware(16)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/send", strings.NewReader(strings.Repeat("x", 64)))

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("passes small bodies through", func(t *testing.T) {
		m := NewBodyLimitMiddleware(1024)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/send", strings.NewReader("tiny"))

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
