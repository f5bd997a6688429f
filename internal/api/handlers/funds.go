package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/api/middleware"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/api/response"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/service"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/validation"
)

// FundHandler handles HTTP requests for fund endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the services.
type FundHandler struct {
	estimatorService *service.EstimatorService
	modeService      *service.ModeService
	historyService   *service.HistoryService
	intradayService  *service.IntradayService
	defaultDays      int
}

// NewFundHandler creates a new FundHandler. defaultDays is the history window
// used when a request does not name one.
func NewFundHandler(
	estimatorService *service.EstimatorService,
	modeService *service.ModeService,
	historyService *service.HistoryService,
	intradayService *service.IntradayService,
	defaultDays int,
) *FundHandler {
	return &FundHandler{
		estimatorService: estimatorService,
		modeService:      modeService,
		historyService:   historyService,
		intradayService:  intradayService,
		defaultDays:      defaultDays,
	}
}

// Estimates handles GET requests to estimate several funds on demand, each with its stored mode.
//
// Endpoint: GET /api/fund/estimates?codes=110011,000001
// Response: 200 OK with array of model.FundSnapshot in request order
// Error: 400 Bad Request if codes are missing or malformed
// Error: 500 Internal Server Error if modes cannot be loaded
func (h *FundHandler) Estimates(w http.ResponseWriter, r *http.Request) {
	codes := service.NormalizeCodes(validation.ParseCodes(r.URL.Query().Get("codes")))
	if err := validation.ValidateFundCodes(codes); err != nil {
		respondServiceError(w, err, "invalid codes")
		return
	}

	modes, err := h.modeService.Modes(r.Context(), codes)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveEstimates.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, h.estimatorService.ProcessFunds(r.Context(), codes, modes))
}

// Estimate handles GET requests to estimate one fund.
// The mode query parameter overrides the stored mode for this request only.
//
// Endpoint: GET /api/fund/{code}/estimate?mode=holdings
// Response: 200 OK with model.FundSnapshot (failures are reported in its status)
// Error: 400 Bad Request if the mode is unknown
func (h *FundHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, middleware.FundCodeParam)

	mode := model.ValuationMode(r.URL.Query().Get("mode"))
	if mode == "" {
		stored, err := h.modeService.Mode(r.Context(), code)
		if err != nil {
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveModes.Error(), err.Error())
			return
		}
		mode = stored
	} else if err := validation.ValidateMode(string(mode)); err != nil {
		respondServiceError(w, err, "invalid mode")
		return
	}

	response.RespondJSON(w, http.StatusOK, h.estimatorService.ProcessFund(r.Context(), code, mode))
}

// Holdings handles GET requests for a fund's resolved holdings.
//
// Endpoint: GET /api/fund/{code}/holdings
// Response: 200 OK with model.HoldingsResult
// Error: 404 Not Found if no holdings could be resolved
func (h *FundHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, middleware.FundCodeParam)

	result, err := h.estimatorService.Holdings(r.Context(), code)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHoldings.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// HistoryResponse is a NAV series with its summary statistics.
type HistoryResponse struct {
	FundCode string               `json:"fundCode"`
	Days     int                  `json:"days"`
	Points   []model.HistoryPoint `json:"points"`
	Summary  model.HistorySummary `json:"summary"`
}

// History handles GET requests for a fund's NAV history.
//
// Endpoint: GET /api/fund/{code}/history?days=30
// Response: 200 OK with HistoryResponse
// Error: 400 Bad Request if days is not between 1 and 3650
// Error: 404 Not Found if the upstream has no history for the fund
// Error: 502 Bad Gateway if the upstream failed and nothing is cached
func (h *FundHandler) History(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, middleware.FundCodeParam)

	days, err := validation.ParseDays(r.URL.Query().Get("days"), h.defaultDays)
	if err != nil {
		respondServiceError(w, err, "invalid days")
		return
	}

	points, summary, err := h.historyService.GetHistoryWithSummary(r.Context(), code, days)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHistory.Error())
		return
	}
	if points == nil {
		points = []model.HistoryPoint{}
	}

	response.RespondJSON(w, http.StatusOK, HistoryResponse{
		FundCode: code,
		Days:     days,
		Points:   points,
		Summary:  summary,
	})
}

// IntradayResponse lists the estimates recorded for a fund today.
type IntradayResponse struct {
	FundCode string                `json:"fundCode"`
	Points   []model.IntradayPoint `json:"points"`
}

// Intraday handles GET requests for today's recorded estimates of a fund.
//
// Endpoint: GET /api/fund/{code}/intraday
// Response: 200 OK with IntradayResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *FundHandler) Intraday(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, middleware.FundCodeParam)

	points, err := h.intradayService.Today(r.Context(), code)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveIntraday.Error(), err.Error())
		return
	}
	if points == nil {
		points = []model.IntradayPoint{}
	}

	response.RespondJSON(w, http.StatusOK, IntradayResponse{FundCode: code, Points: points})
}
