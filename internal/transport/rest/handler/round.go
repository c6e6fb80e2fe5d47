package handler

import (
	"classroomlive/internal/service"
	"classroomlive/internal/transport/rest/middleware"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// RoundHandler handles update-round endpoints
type RoundHandler struct {
	roundSvc *service.RoundService
}

// NewRoundHandler creates a new update-round handler
func NewRoundHandler(roundSvc *service.RoundService) *RoundHandler {
	return &RoundHandler{roundSvc: roundSvc}
}

type startRoundRequest struct {
	DurationSeconds int      `json:"duration_seconds"`
	Seats           []string `json:"seats"`
}

// Start handles POST /v1/classrooms/{classroomId}/update-rounds.
// Teacher only. An empty seats list means every occupied seat.
func (h *RoundHandler) Start(w http.ResponseWriter, r *http.Request) {
	classroomID := mux.Vars(r)["classroomId"]
	userID := middleware.GetUserID(r.Context())

	var req startRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	round, turn, err := h.roundSvc.StartRound(r.Context(), userID, classroomID, req.DurationSeconds, req.Seats)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":      true,
		"message":      "update round started",
		"round":        round,
		"current_turn": turn,
	})
}

// EndTurn handles POST /v1/update-turns/{id}/end. Allowed for the
// teacher or the student whose turn it is.
func (h *RoundHandler) EndTurn(w http.ResponseWriter, r *http.Request) {
	turnID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())

	result, err := h.roundSvc.EndTurn(r.Context(), userID, turnID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"completed": result.Completed,
		"next_turn": result.NextTurn,
		"round":     result.Round,
	})
}
