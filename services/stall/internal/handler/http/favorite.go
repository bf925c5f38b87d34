package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/httputil"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/middleware"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/pagination"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/service"
)

// FavoriteHandler handles HTTP requests for favorite endpoints. The acting
// user comes from the auth middleware context, or the X-User-ID header when
// the request arrives through the gateway.
type FavoriteHandler struct {
	service *service.FavoriteService
	logger  *slog.Logger
}

// NewFavoriteHandler creates a new favorite HTTP handler.
func NewFavoriteHandler(svc *service.FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		service: svc,
		logger:  logger,
	}
}

func (h *FavoriteHandler) userID(r *http.Request) string {
	if id := middleware.UserIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-User-ID")
}

// ListFavorites handles GET /api/v1/favorites
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)
	if userID == "" {
		writeMissingUser(w)
		return
	}

	params := pagination.FromRequest(r)

	stalls, total, err := h.service.ListFavorites(r.Context(), userID, params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(stalls, total, params.Page, params.PerPage))
}

// AddFavorite handles PUT /api/v1/favorites/{stallId}
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)
	if userID == "" {
		writeMissingUser(w)
		return
	}

	stallID, ok := httputil.ParseUUID(w, chi.URLParam(r, "stallId"))
	if !ok {
		return
	}

	if err := h.service.AddFavorite(r.Context(), userID, stallID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveFavorite handles DELETE /api/v1/favorites/{stallId}
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID := h.userID(r)
	if userID == "" {
		writeMissingUser(w)
		return
	}

	stallID, ok := httputil.ParseUUID(w, chi.URLParam(r, "stallId"))
	if !ok {
		return
	}

	if err := h.service.RemoveFavorite(r.Context(), userID, stallID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeMissingUser(w http.ResponseWriter) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "caller identity is required"},
	})
}
