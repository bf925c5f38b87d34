package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/httputil"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/pagination"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/validator"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/domain"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/service"
)

// StallHandler handles HTTP requests for stall endpoints.
type StallHandler struct {
	service *service.StallService
	logger  *slog.Logger
}

// NewStallHandler creates a new stall HTTP handler.
func NewStallHandler(svc *service.StallService, logger *slog.Logger) *StallHandler {
	return &StallHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateStallRequest is the JSON request body for creating a stall.
type CreateStallRequest struct {
	CafeteriaID string   `json:"cafeteria_id" validate:"required,uuid"`
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	CuisineType string   `json:"cuisine_type" validate:"required,min=1,max=100"`
	HalalInfo   *string  `json:"halal_info" validate:"omitempty,max=200"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// UpdateStallRequest is the JSON request body for updating a stall. Aggregate
// fields are not accepted here.
type UpdateStallRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	CuisineType *string  `json:"cuisine_type" validate:"omitempty,min=1,max=100"`
	HalalInfo   *string  `json:"halal_info" validate:"omitempty,max=200"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,url"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// SearchStalls handles GET /api/v1/search/stalls
func (h *StallHandler) SearchStalls(w http.ResponseWriter, r *http.Request) {
	criteria, ok := h.parseSearchCriteria(w, r)
	if !ok {
		return
	}

	result, err := h.service.Search(r.Context(), criteria)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// parseSearchCriteria reads the search query parameters. On a malformed
// parameter it writes a 400 response and returns false.
func (h *StallHandler) parseSearchCriteria(w http.ResponseWriter, r *http.Request) (service.SearchCriteria, bool) {
	q := r.URL.Query()
	params := pagination.FromRequest(r)

	criteria := service.SearchCriteria{
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	if v := q.Get("keyword"); v != "" {
		criteria.Keyword = &v
	}
	if v := q.Get("cuisine_types"); v != "" {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				criteria.CuisineTypes = append(criteria.CuisineTypes, c)
			}
		}
	}
	if v := q.Get("min_rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil || rating < 0 || rating > 5 {
			writeInvalidParam(w, "min_rating must be a number between 0 and 5")
			return criteria, false
		}
		criteria.MinRating = &rating
	}
	if v := q.Get("halal_only"); v != "" {
		halal, err := strconv.ParseBool(v)
		if err != nil {
			writeInvalidParam(w, "halal_only must be a boolean")
			return criteria, false
		}
		criteria.HalalOnly = halal
	}
	if v := q.Get("cafeteria_id"); v != "" {
		if _, err := uuid.Parse(v); err != nil {
			writeInvalidParam(w, "cafeteria_id must be a valid UUID")
			return criteria, false
		}
		criteria.CafeteriaID = &v
	}
	if v := q.Get("lat"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil || lat < -90 || lat > 90 {
			writeInvalidParam(w, "lat must be a valid latitude")
			return criteria, false
		}
		criteria.UserLat = &lat
	}
	if v := q.Get("lon"); v != "" {
		lon, err := strconv.ParseFloat(v, 64)
		if err != nil || lon < -180 || lon > 180 {
			writeInvalidParam(w, "lon must be a valid longitude")
			return criteria, false
		}
		criteria.UserLon = &lon
	}
	if v := q.Get("max_distance"); v != "" {
		dist, err := strconv.ParseFloat(v, 64)
		if err != nil || dist <= 0 {
			writeInvalidParam(w, "max_distance must be a positive number of kilometers")
			return criteria, false
		}
		criteria.MaxDistanceKm = &dist
	}
	if v := q.Get("sort_by"); v != "" {
		if !domain.IsValidSortBy(v) {
			writeInvalidParam(w, "sort_by must be one of: rating, reviews, price, distance")
			return criteria, false
		}
		criteria.SortBy = v
	}

	if criteria.MaxDistanceKm != nil && (criteria.UserLat == nil || criteria.UserLon == nil) {
		writeInvalidParam(w, "max_distance requires lat and lon")
		return criteria, false
	}
	if criteria.SortBy == domain.SortByDistance && (criteria.UserLat == nil || criteria.UserLon == nil) {
		writeInvalidParam(w, "sorting by distance requires lat and lon")
		return criteria, false
	}

	return criteria, true
}

func writeInvalidParam(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: message},
	})
}

// GetStall handles GET /api/v1/stalls/{idOrSlug}. It accepts both a UUID and
// a slug for lookup.
func (h *StallHandler) GetStall(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")

	var (
		stall *domain.Stall
		err   error
	)
	if _, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		stall, err = h.service.GetStall(r.Context(), idOrSlug)
	} else {
		stall, err = h.service.GetStallBySlug(r.Context(), idOrSlug)
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stall})
}

// CreateStall handles POST /api/v1/stalls
func (h *StallHandler) CreateStall(w http.ResponseWriter, r *http.Request) {
	var req CreateStallRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	stall, err := h.service.CreateStall(r.Context(), &service.CreateStallInput{
		CafeteriaID: req.CafeteriaID,
		Name:        req.Name,
		Description: req.Description,
		CuisineType: req.CuisineType,
		HalalInfo:   req.HalalInfo,
		ImageURL:    req.ImageURL,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: stall})
}

// UpdateStall handles PUT /api/v1/stalls/{id}
func (h *StallHandler) UpdateStall(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateStallRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	stall, err := h.service.UpdateStall(r.Context(), id.String(), &service.UpdateStallInput{
		Name:        req.Name,
		Description: req.Description,
		CuisineType: req.CuisineType,
		HalalInfo:   req.HalalInfo,
		ImageURL:    req.ImageURL,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stall})
}

// DeleteStall handles DELETE /api/v1/stalls/{id}
func (h *StallHandler) DeleteStall(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteStall(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
