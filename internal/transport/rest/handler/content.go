package handler

import (
	"classroomlive/internal/model"
	"classroomlive/internal/service"
	"classroomlive/internal/transport/rest/middleware"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

const maxUploadBytes = 32 << 20

// ContentHandler handles content sharing endpoints
type ContentHandler struct {
	contentSvc *service.ContentService
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentSvc *service.ContentService) *ContentHandler {
	return &ContentHandler{contentSvc: contentSvc}
}

type shareRequest struct {
	ContentType string `json:"content_type"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

// Share handles POST /v1/seats/{seatId}/content. Accepts multipart
// form data for file uploads or a JSON body for link, code and notes
// shares.
func (h *ContentHandler) Share(w http.ResponseWriter, r *http.Request) {
	seatID := mux.Vars(r)["seatId"]
	userID := middleware.GetUserID(r.Context())

	input, err := parseShareRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	content, err := h.contentSvc.Share(r.Context(), userID, seatID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"message":    "content shared",
		"content_id": content.ID,
		"content":    content,
	})
}

func parseShareRequest(r *http.Request) (service.ShareInput, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return service.ShareInput{}, err
		}
		input := service.ShareInput{
			ContentType: model.ContentType(r.FormValue("content_type")),
			Link:        r.FormValue("link"),
			Description: r.FormValue("description"),
		}
		file, header, err := r.FormFile("file")
		if err == nil {
			input.File = file
			input.Filename = header.Filename
		}
		return input, nil
	}

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return service.ShareInput{}, err
	}
	return service.ShareInput{
		ContentType: model.ContentType(req.ContentType),
		Link:        req.Link,
		Description: req.Description,
	}, nil
}

// Detail handles GET /v1/content/{id}. The payload is shaped per
// content kind so clients do not have to know where each kind stores
// its data.
func (h *ContentHandler) Detail(w http.ResponseWriter, r *http.Request) {
	contentID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())

	content, err := h.contentSvc.Detail(r.Context(), userID, contentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"content": contentDetails(content),
	})
}

// contentDetails flattens a SharedContent record into the kind-specific
// shape clients render. Code shares store a {code, language} document
// in the description field.
func contentDetails(c *model.SharedContent) map[string]interface{} {
	details := map[string]interface{}{
		"id":           c.ID,
		"seat_id":      c.SeatID,
		"student_id":   c.StudentID,
		"content_type": c.ContentType,
		"shared_at":    c.SharedAt,
	}

	switch c.ContentType {
	case model.ContentCode:
		var doc struct {
			Code     string `json:"code"`
			Language string `json:"language"`
		}
		if err := json.Unmarshal([]byte(c.Description), &doc); err == nil {
			details["code"] = doc.Code
			details["language"] = doc.Language
		} else {
			details["code"] = c.Description
			details["language"] = "plaintext"
		}
	case model.ContentLink:
		details["link"] = c.Link
		details["description"] = c.Description
	case model.ContentNotes:
		details["notes"] = c.Description
	default:
		// screenshot and document
		details["file_url"] = c.URL()
		details["description"] = c.Description
	}

	return details
}
