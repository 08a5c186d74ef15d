package handlers

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/service"
)

// ActivityHandler serves the family activity feed
type ActivityHandler struct {
	activityService *service.ActivityService
	log             logrus.FieldLogger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService *service.ActivityService, log logrus.FieldLogger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		log:             log,
	}
}

// List returns recent activities. The optional limit query parameter must
// be a positive integer.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondMessage(w, h.log, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	activities, err := h.activityService.List(r.Context(), *user, limit)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to load activities", err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, activities)
}
