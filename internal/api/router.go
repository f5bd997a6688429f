package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Fund-NAV-Estimator/internal/api/middleware"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/config"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/service"
)

// Services bundles the services the HTTP API delegates to.
type Services struct {
	System    *service.SystemService
	Estimator *service.EstimatorService
	Modes     *service.ModeService
	History   *service.HistoryService
	Intraday  *service.IntradayService
	Board     *service.BoardService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/fund", func(r chi.Router) {
			fundHandler := handlers.NewFundHandler(svc.Estimator, svc.Modes, svc.History, svc.Intraday, cfg.Estimator.HistoryDays)
			boardHandler := handlers.NewBoardHandler(svc.Board)
			modeHandler := handlers.NewModeHandler(svc.Modes, svc.Board.Codes())

			r.Get("/estimates", fundHandler.Estimates)

			r.Get("/board", boardHandler.Board)
			r.Post("/board/refresh", boardHandler.Refresh)

			r.Get("/modes", modeHandler.Modes)
			r.Put("/modes", modeHandler.ApplyToAll)

			r.Route("/{code}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateFundCodeMiddleware)
				r.Get("/estimate", fundHandler.Estimate)
				r.Get("/holdings", fundHandler.Holdings)
				r.Get("/history", fundHandler.History)
				r.Get("/intraday", fundHandler.Intraday)
				r.Put("/mode", modeHandler.SetMode)
			})
		})
	})

	return r
}
