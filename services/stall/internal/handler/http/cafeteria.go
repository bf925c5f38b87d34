package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/httputil"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/pagination"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/validator"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/service"
)

// CafeteriaHandler handles HTTP requests for cafeteria endpoints.
type CafeteriaHandler struct {
	service *service.CafeteriaService
	logger  *slog.Logger
}

// NewCafeteriaHandler creates a new cafeteria HTTP handler.
func NewCafeteriaHandler(svc *service.CafeteriaService, logger *slog.Logger) *CafeteriaHandler {
	return &CafeteriaHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateCafeteriaRequest is the JSON request body for creating a cafeteria.
type CreateCafeteriaRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Location    string  `json:"location" validate:"max=500"`
	Latitude    float64 `json:"latitude" validate:"latitude"`
	Longitude   float64 `json:"longitude" validate:"longitude"`
}

// UpdateCafeteriaRequest is the JSON request body for updating a cafeteria.
type UpdateCafeteriaRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Location    *string  `json:"location" validate:"omitempty,max=500"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// ListCafeterias handles GET /api/v1/cafeterias
func (h *CafeteriaHandler) ListCafeterias(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	cafeterias, total, err := h.service.ListCafeterias(r.Context(), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(cafeterias, total, params.Page, params.PerPage))
}

// GetCafeteria handles GET /api/v1/cafeterias/{id}
func (h *CafeteriaHandler) GetCafeteria(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	c, err := h.service.GetCafeteria(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: c})
}

// CreateCafeteria handles POST /api/v1/cafeterias
func (h *CafeteriaHandler) CreateCafeteria(w http.ResponseWriter, r *http.Request) {
	var req CreateCafeteriaRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	c, err := h.service.CreateCafeteria(r.Context(), &service.CreateCafeteriaInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: c})
}

// UpdateCafeteria handles PUT /api/v1/cafeterias/{id}
func (h *CafeteriaHandler) UpdateCafeteria(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateCafeteriaRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	c, err := h.service.UpdateCafeteria(r.Context(), id.String(), &service.UpdateCafeteriaInput{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: c})
}

// DeleteCafeteria handles DELETE /api/v1/cafeterias/{id}
func (h *CafeteriaHandler) DeleteCafeteria(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteCafeteria(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
