// internal/team/handlers.go

package team

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/harborlink/ops-backend/internal/chat"
	"github.com/harborlink/ops-backend/internal/common/utils"
	"github.com/harborlink/ops-backend/internal/identity"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateAnnouncement posts an announcement to a room, or to all staff when no
// room is given
func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())

	var req CreateAnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	announcement, err := h.service.CreateAnnouncement(r.Context(), ident.ID, &req)
	if err != nil {
		utils.ErrorResponse(w, err.Error(), chat.HTTPStatus(err))
		return
	}

	utils.SuccessResponse(w, announcement, http.StatusCreated)
}

// ListAnnouncements returns a room's announcements, newest first
func (h *Handler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	ident, _ := identity.FromContext(r.Context())

	roomID, err := strconv.ParseInt(r.URL.Query().Get("roomId"), 10, 64)
	if err != nil || roomID <= 0 {
		utils.ErrorResponse(w, "Invalid room ID", http.StatusBadRequest)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	announcements, err := h.service.ListAnnouncements(r.Context(), roomID, ident.ID, limit, offset)
	if err != nil {
		utils.ErrorResponse(w, err.Error(), chat.HTTPStatus(err))
		return
	}

	utils.SuccessResponse(w, announcements, http.StatusOK)
}

// GetResponseSummary returns aggregated answer counts for a survey
func (h *Handler) GetResponseSummary(w http.ResponseWriter, r *http.Request) {
	surveyID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid survey ID", http.StatusBadRequest)
		return
	}

	summary, err := h.service.ResponseSummary(r.Context(), surveyID)
	if err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, summary, http.StatusOK)
}
