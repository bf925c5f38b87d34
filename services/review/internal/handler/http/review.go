package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/httputil"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/middleware"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/pagination"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/validator"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/service"
)

// ReviewHandler handles HTTP requests for review endpoints. The acting user
// comes from the auth middleware context, or the X-User-ID header when the
// request arrives through the gateway.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateReviewRequest is the JSON request body for creating a review.
type CreateReviewRequest struct {
	StallID        string   `json:"stall_id" validate:"required,uuid"`
	Rating         int      `json:"rating" validate:"required,min=1,max=5"`
	Comment        string   `json:"comment" validate:"max=4000"`
	ImageURLs      []string `json:"image_urls" validate:"omitempty,max=9,dive,url"`
	TotalCost      *float64 `json:"total_cost" validate:"omitempty,gte=0"`
	NumberOfPeople *int     `json:"number_of_people" validate:"omitempty,min=1"`
}

// UpdateReviewRequest is the JSON request body for updating a review.
type UpdateReviewRequest struct {
	Rating         *int     `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment        *string  `json:"comment" validate:"omitempty,max=4000"`
	ImageURLs      []string `json:"image_urls" validate:"omitempty,max=9,dive,url"`
	TotalCost      *float64 `json:"total_cost" validate:"omitempty,gte=0"`
	NumberOfPeople *int     `json:"number_of_people" validate:"omitempty,min=1"`
}

func callerID(r *http.Request) string {
	if id := middleware.UserIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-User-ID")
}

func writeMissingUser(w http.ResponseWriter) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "caller identity is required"},
	})
}

// CreateReview handles POST /api/v1/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeMissingUser(w)
		return
	}

	var req CreateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.CreateReview(r.Context(), &service.CreateReviewInput{
		StallID:        req.StallID,
		UserID:         userID,
		Rating:         req.Rating,
		Comment:        req.Comment,
		ImageURLs:      req.ImageURLs,
		TotalCost:      req.TotalCost,
		NumberOfPeople: req.NumberOfPeople,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}

// GetReview handles GET /api/v1/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.service.GetReview(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// ListStallReviews handles GET /api/v1/reviews/stall/{stallId}
func (h *ReviewHandler) ListStallReviews(w http.ResponseWriter, r *http.Request) {
	stallID, ok := httputil.ParseUUID(w, chi.URLParam(r, "stallId"))
	if !ok {
		return
	}

	params := pagination.FromRequest(r)

	reviews, total, err := h.service.ListByStall(r.Context(), stallID.String(), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(reviews, total, params.Page, params.PerPage))
}

// ListMyReviews handles GET /api/v1/reviews/me
func (h *ReviewHandler) ListMyReviews(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeMissingUser(w)
		return
	}

	params := pagination.FromRequest(r)

	reviews, total, err := h.service.ListByUser(r.Context(), userID, params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(reviews, total, params.Page, params.PerPage))
}

// UpdateReview handles PUT /api/v1/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeMissingUser(w)
		return
	}

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.UpdateReview(r.Context(), id.String(), userID, &service.UpdateReviewInput{
		Rating:         req.Rating,
		Comment:        req.Comment,
		ImageURLs:      req.ImageURLs,
		TotalCost:      req.TotalCost,
		NumberOfPeople: req.NumberOfPeople,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// DeleteReview handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeMissingUser(w)
		return
	}

	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	agg, err := h.service.DeleteReview(r.Context(), id.String(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: agg})
}
