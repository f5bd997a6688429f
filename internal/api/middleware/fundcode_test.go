package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/api/middleware"
)

func serveWithCode(code string) (called bool, status int) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rctx := chi.NewRouteContext()
	if code != "" {
		rctx.URLParams.Add(middleware.FundCodeParam, code)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	middleware.ValidateFundCodeMiddleware(next).ServeHTTP(w, req)
	return called, w.Code
}

func TestValidateFundCodeMiddleware(t *testing.T) {
	t.Run("passes through a six digit code", func(t *testing.T) {
		called, status := serveWithCode("110011")

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("rejects malformed codes", func(t *testing.T) {
		for _, code := range []string{"11001", "1100111", "11001a", "abcdef"} {
			called, status := serveWithCode(code)

			assert.False(t, called, "code=%q", code)
			assert.Equal(t, http.StatusBadRequest, status, "code=%q", code)
		}
	})

	t.Run("rejects a missing code", func(t *testing.T) {
		called, status := serveWithCode("")

		assert.False(t, called)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}
