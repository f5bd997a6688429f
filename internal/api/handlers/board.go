package handlers

import (
	"net/http"

	"github.com/ndewijer/Fund-NAV-Estimator/internal/api/response"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/apperrors"
	"github.com/ndewijer/Fund-NAV-Estimator/internal/service"
)

// BoardHandler serves the periodically refreshed board.
type BoardHandler struct {
	boardService *service.BoardService
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(boardService *service.BoardService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
	}
}

// Board handles GET requests for the latest board.
//
// Endpoint: GET /api/fund/board
// Response: 200 OK with model.Board
// Error: 503 Service Unavailable before the first refresh
func (h *BoardHandler) Board(w http.ResponseWriter, _ *http.Request) {
	board := h.boardService.Board()
	if board == nil {
		respondServiceError(w, apperrors.ErrBoardNotReady, "")
		return
	}

	response.RespondJSON(w, http.StatusOK, board)
}

// Refresh handles POST requests to refresh the board immediately.
//
// Endpoint: POST /api/fund/board/refresh
// Response: 200 OK with the new model.Board
// Error: 500 Internal Server Error if modes cannot be loaded
func (h *BoardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	board, err := h.boardService.Refresh(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRefreshBoard.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, board)
}
