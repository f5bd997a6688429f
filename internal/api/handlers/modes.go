package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/api/middleware"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/api/request"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/api/response"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/model"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/service"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/validation"
)

// ModeHandler handles the per-fund valuation mode endpoints.
type ModeHandler struct {
	modeService  *service.ModeService
	defaultCodes []string
}

// NewModeHandler creates a new ModeHandler. defaultCodes are listed when a
// request names no codes.
func NewModeHandler(modeService *service.ModeService, defaultCodes []string) *ModeHandler {
	return &ModeHandler{
		modeService:  modeService,
		defaultCodes: defaultCodes,
	}
}

// Modes handles GET requests for the effective mode of each fund.
//
// Endpoint: GET /api/fund/modes?codes=110011,000001
// Response: 200 OK with a map of fund code to mode
// Error: 400 Bad Request if a code is malformed
func (h *ModeHandler) Modes(w http.ResponseWriter, r *http.Request) {
	codes := service.NormalizeCodes(validation.ParseCodes(r.URL.Query().Get("codes")))
	if len(codes) == 0 {
		codes = h.defaultCodes
	}
	if len(codes) > 0 {
		if err := validation.ValidateFundCodes(codes); err != nil {
			respondServiceError(w, err, "invalid codes")
			return
		}
	}

	modes, err := h.modeService.Modes(r.Context(), codes)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveModes.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, modes)
}

// ModeResponse reports the mode stored for one fund.
type ModeResponse struct {
	FundCode string              `json:"fundCode"`
	Mode     model.ValuationMode `json:"mode"`
}

// SetMode handles PUT requests to store the mode of one fund.
//
// Endpoint: PUT /api/fund/{code}/mode
// Request: request.SetModeRequest
// Response: 200 OK with ModeResponse
// Error: 400 Bad Request if the body or mode is invalid
func (h *ModeHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, middleware.FundCodeParam)

	req, err := parseJSON[request.SetModeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateSetMode(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	mode := model.ValuationMode(req.Mode)
	if err := h.modeService.SetMode(r.Context(), code, mode); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToSaveMode.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, ModeResponse{FundCode: code, Mode: mode})
}

// ApplyToAll handles PUT requests to store one mode for several funds at once.
//
// Endpoint: PUT /api/fund/modes
// Request: request.ApplyModeRequest
// Response: 200 OK with a map of fund code to mode
// Error: 400 Bad Request if the body, codes or mode are invalid
func (h *ModeHandler) ApplyToAll(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ApplyModeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	req.Codes = service.NormalizeCodes(req.Codes)
	if len(req.Codes) == 0 {
		req.Codes = h.defaultCodes
	}
	if err := validation.ValidateApplyMode(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	mode := model.ValuationMode(req.Mode)
	if err := h.modeService.ApplyToAll(r.Context(), req.Codes, mode); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToSaveMode.Error())
		return
	}

	modes := make(map[string]model.ValuationMode, len(req.Codes))
	for _, code := range req.Codes {
		modes[code] = mode
	}
	response.RespondJSON(w, http.StatusOK, modes)
}
