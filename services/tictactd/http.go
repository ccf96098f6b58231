package tictactd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Zarux/tictactd/internal/logger"
	"github.com/Zarux/tictactd/pkg/tictactoe"
)

type httpHandler struct {
	svc *Service
}

func HTTPHandler(s *Service) http.Handler {
	h := &httpHandler{
		svc: s,
	}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /games/{gameID}/moves/", h.HandleNewMove)
	mux.HandleFunc("GET /games/{gameID}", h.HandleGetGame)
	mux.HandleFunc("POST /games/{$}", h.HandleNewGame)
	mux.HandleFunc("GET /stats", h.HandleStats)

	return mux
}

type moveRequest struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Hash uint64 `json:"hash,string"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *httpHandler) HandleNewMove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("gameID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad game id"})
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad move request: " + err.Error()})
		return
	}

	view, err := h.svc.NewMove(ctx, id, Move{Row: req.Row, Col: req.Col}, req.Hash)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Stringer("game", id).Msg("move rejected")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *httpHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("gameID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad game id"})
		return
	}

	view, err := h.svc.Game(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *httpHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.NewGame(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

func (h *httpHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats())
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrStaleBoard), errors.Is(err, ErrGameOver), errors.Is(err, tictactoe.ErrIllegalMove):
		status = http.StatusConflict
	case errors.Is(err, tictactoe.ErrOutOfRange):
		status = http.StatusBadRequest
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
