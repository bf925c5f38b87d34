package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/httputil"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/service"
)

// LikeHandler handles HTTP requests for review like endpoints.
type LikeHandler struct {
	service *service.LikeService
	logger  *slog.Logger
}

// NewLikeHandler creates a new like HTTP handler.
func NewLikeHandler(svc *service.LikeService, logger *slog.Logger) *LikeHandler {
	return &LikeHandler{
		service: svc,
		logger:  logger,
	}
}

type likeResponse struct {
	Changed bool `json:"changed"`
}

// Like handles PUT /api/v1/reviews/{id}/like
func (h *LikeHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeMissingUser(w)
		return
	}

	reviewID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	liked, err := h.service.Like(r.Context(), reviewID.String(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: likeResponse{Changed: liked}})
}

// Unlike handles DELETE /api/v1/reviews/{id}/like
func (h *LikeHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeMissingUser(w)
		return
	}

	reviewID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	unliked, err := h.service.Unlike(r.Context(), reviewID.String(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: likeResponse{Changed: unliked}})
}
