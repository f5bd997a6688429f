// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/api/response"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/validation"
)

// FundCodeParam is the URL parameter carrying a fund code.
const FundCodeParam = "code"

// ValidateFundCodeMiddleware validates that the code URL parameter is a six digit fund code.
// Returns 400 Bad Request if the code is missing or malformed.
//
// Example usage in router:
//
//	r.Route("/{code}", func(r chi.Router) {
//	    r.Use(middleware.ValidateFundCodeMiddleware)
//	    r.Get("/estimate", handler.Estimate)
//	})
func ValidateFundCodeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, FundCodeParam)

		if code == "" {
			response.RespondError(w, http.StatusBadRequest, "fund code is required", "")
			return
		}

		if err := validation.ValidateFundCode(code); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid fund code", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
