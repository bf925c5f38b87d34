package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
	pkgkafka "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/kafka"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/domain"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/event"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/service"
)

// =============================================================================
// Mock repositories
// =============================================================================

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByStall(ctx context.Context, stallID string, page, perPage int) ([]domain.Review, int, error) {
	args := m.Called(ctx, stallID, page, perPage)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Review, int, error) {
	args := m.Called(ctx, userID, page, perPage)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) Update(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReviewRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReviewRepo) RecomputeAggregate(ctx context.Context, stallID string) (*domain.StallAggregate, error) {
	args := m.Called(ctx, stallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StallAggregate), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

const (
	testReviewID = "11111111-1111-1111-1111-111111111111"
	testStallID  = "22222222-2222-2222-2222-222222222222"
	testUserID   = "user-42"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestReviewHandler(repo *mockReviewRepo) *ReviewHandler {
	logger := newTestLogger()
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:9092"}), logger)
	svc := service.NewReviewService(repo, nil, event.NewProducer(kafkaProducer, logger), logger)
	return NewReviewHandler(svc, logger)
}

func newReviewRouter(h *ReviewHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/api/v1/reviews", h.CreateReview)
	r.Get("/api/v1/reviews/me", h.ListMyReviews)
	r.Get("/api/v1/reviews/stall/{stallId}", h.ListStallReviews)
	r.Get("/api/v1/reviews/{id}", h.GetReview)
	r.Put("/api/v1/reviews/{id}", h.UpdateReview)
	r.Delete("/api/v1/reviews/{id}", h.DeleteReview)
	return r
}

func floatPtr(v float64) *float64 { return &v }

func sampleReview() *domain.Review {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Review{
		ID:         testReviewID,
		StallID:    testStallID,
		UserID:     testUserID,
		Rating:     4,
		Comment:    "good value",
		ImageURLs:  []string{},
		LikesCount: 3,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func sampleAggregate() *domain.StallAggregate {
	return &domain.StallAggregate{
		StallID:       testStallID,
		AverageRating: floatPtr(4.0),
		ReviewCount:   3,
		AveragePrice:  floatPtr(7.25),
		PriceCount:    2,
		ComputedAt:    time.Now().UTC(),
	}
}

func doJSON(t *testing.T, router http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// CreateReview
// =============================================================================

func TestCreateReviewHandler_Success(t *testing.T) {
	repo := new(mockReviewRepo)
	router := newReviewRouter(newTestReviewHandler(repo))

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("RecomputeAggregate", mock.Anything, testStallID).Return(sampleAggregate(), nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reviews", testUserID, map[string]any{
		"stall_id": testStallID,
		"rating":   5,
		"comment":  "fantastic",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data service.ReviewResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Data.Review.Rating)
	require.NotNil(t, resp.Data.Aggregate)
	assert.Equal(t, 3, resp.Data.Aggregate.ReviewCount)

	repo.AssertExpectations(t)
}

func TestCreateReviewHandler_MissingUser(t *testing.T) {
	repo := new(mockReviewRepo)
	router := newReviewRouter(newTestReviewHandler(repo))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/reviews", "", map[string]any{
		"stall_id": testStallID,
		"rating":   5,
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReviewHandler_ValidationErrors(t *testing.T) {
	repo := new(mockReviewRepo)
	router := newReviewRouter(newTestReviewHandler(repo))

	tooManyImages := make([]string, 10)
	for i := range tooManyImages {
		tooManyImages[i] = "https://cdn.nushungry.example/r.jpg"
	}

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing stall id", map[string]any{"rating": 4}},
		{"stall id not a uuid", map[string]any{"stall_id": "nope", "rating": 4}},
		{"rating too low", map[string]any{"stall_id": testStallID, "rating": 0}},
		{"rating too high", map[string]any{"stall_id": testStallID, "rating": 6}},
		{"too many images", map[string]any{"stall_id": testStallID, "rating": 4, "image_urls": tooManyImages}},
		{"image not a url", map[string]any{"stall_id": testStallID, "rating": 4, "image_urls": []string{"not-a-url"}}},
		{"negative cost", map[string]any{"stall_id": testStallID, "rating": 4, "total_cost": -1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/reviews", testUserID, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =============================================================================
// GetReview / listing
// =============================================================================

func TestGetReviewHandler_Success(t *testing.T) {
	repo := new(mockReviewRepo)
	router := newReviewRouter(newTestReviewHandler(repo))

	repo.On("GetByID", mock.Anything, testReviewID).Return(sampleReview(), nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/reviews/"+testReviewID, "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.Review `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testReviewID, resp.Data.ID)
	assert.Equal(t, 3, resp.Data.LikesCount)
}

func TestGetReviewHandler_NotFound(t *testing.T) {
	repo := new(mockReviewRepo)
	router := newReviewRouter(newTestReviewHandler(repo))

	repo.On("GetByID", mock.Anything, testReviewID).Return(nil, apperrors.NotFound("review", testReviewID))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/reviews/"+testReviewID, "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReviewHandler_MalformedID(t *testing.T) {
	repo := new(mockReviewRepo)
	router := newReviewRouter(newTestReviewHandler(repo))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/reviews/not-a-uuid", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestListStallReviewsHandler(t *testing.T) {
	repo := new(mockReviewRepo)
	router := newReviewRouter(newTestReviewHandler(repo))

	repo.On("ListByStall", mock.Anything, testStallID, 2, 10).
		Return([]domain.Review{*sampleReview()}, 15, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/reviews/stall/"+testStallID+"?page=2&per_page=10", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data       []domain.Review `json:"data"`
		TotalCount int             `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 15, resp.TotalCount)
}

func TestListMyReviewsHandler_MissingUser(t *testing.T) {
	repo := new(mockReviewRepo)
	router := newReviewRouter(newTestReviewHandler(repo))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/reviews/me", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// Update / Delete
// =============================================================================

func TestUpdateReviewHandler_NotAuthor(t *testing.T) {
	repo := new(mockReviewRepo)
	router := newReviewRouter(newTestReviewHandler(repo))

	repo.On("GetByID", mock.Anything, testReviewID).Return(sampleReview(), nil)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/reviews/"+testReviewID, "someone-else", map[string]any{
		"comment": "hijacked",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteReviewHandler_ReturnsAggregate(t *testing.T) {
	repo := new(mockReviewRepo)
	router := newReviewRouter(newTestReviewHandler(repo))

	emptyAgg := &domain.StallAggregate{StallID: testStallID, ComputedAt: time.Now().UTC()}

	repo.On("GetByID", mock.Anything, testReviewID).Return(sampleReview(), nil)
	repo.On("Delete", mock.Anything, testReviewID).Return(nil)
	repo.On("RecomputeAggregate", mock.Anything, testStallID).Return(emptyAgg, nil)

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/reviews/"+testReviewID, testUserID, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.StallAggregate `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testStallID, resp.Data.StallID)
	assert.Nil(t, resp.Data.AverageRating)
	assert.Equal(t, 0, resp.Data.ReviewCount)
}
