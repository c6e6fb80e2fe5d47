package handler

import (
	"classroomlive/internal/model"
	"classroomlive/internal/service"
	"classroomlive/internal/transport/rest/middleware"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// ClassroomHandler handles classroom state and seating endpoints
type ClassroomHandler struct {
	classroomSvc *service.ClassroomService
}

// NewClassroomHandler creates a new classroom handler
func NewClassroomHandler(classroomSvc *service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{classroomSvc: classroomSvc}
}

// State handles GET /v1/classrooms/{sessionId}. The classroom and its
// seat grid are created on first access.
func (h *ClassroomHandler) State(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	userID := middleware.GetUserID(r.Context())

	state, err := h.classroomSvc.State(r.Context(), sessionID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"classroom":    state.Classroom,
		"seats":        state.Seats,
		"user_seat":    state.UserSeat,
		"is_teacher":   state.IsTeacher,
		"raised_hands": state.RaisedHands,
		"active_round": state.ActiveRound,
		"current_turn": state.CurrentTurn,
	})
}

type selectSeatRequest struct {
	SeatID string `json:"seat_id"`
}

// SelectSeat handles POST /v1/classrooms/{classroomId}/seats/select
func (h *ClassroomHandler) SelectSeat(w http.ResponseWriter, r *http.Request) {
	classroomID := mux.Vars(r)["classroomId"]
	userID := middleware.GetUserID(r.Context())
	username := middleware.GetUsername(r.Context())

	var req selectSeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SeatID == "" {
		writeError(w, http.StatusBadRequest, "seat_id is required")
		return
	}

	seat, err := h.classroomSvc.SelectSeat(r.Context(), userID, username, classroomID, req.SeatID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "seat selected",
		"seat":    seat,
	})
}

// Participants handles GET /v1/classrooms/{classroomId}/participants
func (h *ClassroomHandler) Participants(w http.ResponseWriter, r *http.Request) {
	classroomID := mux.Vars(r)["classroomId"]
	userID := middleware.GetUserID(r.Context())

	participants, err := h.classroomSvc.Participants(r.Context(), userID, classroomID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if participants == nil {
		participants = []model.Participant{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"participants": participants,
		"count":        len(participants),
	})
}
