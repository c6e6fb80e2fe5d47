package handler

import (
	"classroomlive/internal/model"
	"classroomlive/internal/service"
	"classroomlive/internal/transport/rest/middleware"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// HandHandler handles hand-raise endpoints
type HandHandler struct {
	handSvc *service.HandService
}

// NewHandHandler creates a new hand-raise handler
func NewHandHandler(handSvc *service.HandService) *HandHandler {
	return &HandHandler{handSvc: handSvc}
}

type handRequest struct {
	SeatID string `json:"seat_id"`
	Raised *bool  `json:"raised"`
}

// SetHand handles POST /v1/hand. Omitting seat_id targets the caller's
// current seat; omitting raised defaults to raising.
func (h *HandHandler) SetHand(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req handRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	raised := true
	if req.Raised != nil {
		raised = *req.Raised
	}

	action, seat, err := h.handSvc.SetHandRaised(r.Context(), userID, req.SeatID, raised)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"action":  action,
		"seat":    seat,
	})
}

// StartSpeaking handles POST /v1/hand-raises/{id}/start-speaking.
// Teacher only: acknowledges the hand raise and gives the student the floor.
func (h *HandHandler) StartSpeaking(w http.ResponseWriter, r *http.Request) {
	handRaiseID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())

	raise, seat, err := h.handSvc.CallOnStudent(r.Context(), userID, handRaiseID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "student is speaking",
		"hand_raise": raise,
		"seat":       seat,
	})
}

// RaisedHands handles GET /v1/classrooms/{classroomId}/raised-hands
func (h *HandHandler) RaisedHands(w http.ResponseWriter, r *http.Request) {
	classroomID := mux.Vars(r)["classroomId"]
	userID := middleware.GetUserID(r.Context())

	raises, err := h.handSvc.RaisedHands(r.Context(), userID, classroomID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if raises == nil {
		raises = []*model.HandRaise{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"raised_hands": raises,
		"count":        len(raises),
	})
}
