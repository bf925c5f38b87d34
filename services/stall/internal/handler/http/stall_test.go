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

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/domain"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/repository"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/service"
)

// =============================================================================
// Mock repositories
// =============================================================================

type mockStallRepo struct {
	mock.Mock
}

func (m *mockStallRepo) Create(ctx context.Context, s *domain.Stall) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockStallRepo) GetByID(ctx context.Context, id string) (*domain.Stall, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stall), args.Error(1)
}

func (m *mockStallRepo) GetBySlug(ctx context.Context, slug string) (*domain.Stall, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stall), args.Error(1)
}

func (m *mockStallRepo) Search(ctx context.Context, filter repository.StallFilter) ([]repository.StallSearchRow, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]repository.StallSearchRow), args.Int(1), args.Error(2)
}

func (m *mockStallRepo) Update(ctx context.Context, s *domain.Stall) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockStallRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockStallRepo) ApplyRatingAggregate(ctx context.Context, stallID string, agg repository.RatingAggregate) error {
	args := m.Called(ctx, stallID, agg)
	return args.Error(0)
}

func (m *mockStallRepo) ApplyPriceAggregate(ctx context.Context, stallID string, agg repository.PriceAggregate) error {
	args := m.Called(ctx, stallID, agg)
	return args.Error(0)
}

type mockCafeteriaRepo struct {
	mock.Mock
}

func (m *mockCafeteriaRepo) Create(ctx context.Context, c *domain.Cafeteria) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCafeteriaRepo) GetByID(ctx context.Context, id string) (*domain.Cafeteria, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cafeteria), args.Error(1)
}

func (m *mockCafeteriaRepo) List(ctx context.Context, page, perPage int) ([]domain.Cafeteria, int, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).([]domain.Cafeteria), args.Int(1), args.Error(2)
}

func (m *mockCafeteriaRepo) Update(ctx context.Context, c *domain.Cafeteria) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCafeteriaRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =============================================================================
// Helpers
// =============================================================================

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestHandler(repo *mockStallRepo, cafRepo *mockCafeteriaRepo) *StallHandler {
	svc := service.NewStallService(repo, cafRepo, nil, newTestLogger())
	return NewStallHandler(svc, newTestLogger())
}

func newTestRouter(h *StallHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/search/stalls", h.SearchStalls)
	r.Get("/api/v1/stalls/{idOrSlug}", h.GetStall)
	r.Post("/api/v1/stalls", h.CreateStall)
	r.Delete("/api/v1/stalls/{id}", h.DeleteStall)
	return r
}

const testStallID = "11111111-1111-1111-1111-111111111111"

// =============================================================================
// SearchStalls
// =============================================================================

func TestSearchStalls_Success(t *testing.T) {
	repo := new(mockStallRepo)
	cafRepo := new(mockCafeteriaRepo)
	handler := newTestHandler(repo, cafRepo)

	rows := []repository.StallSearchRow{
		{Stall: domain.Stall{ID: testStallID, Name: "Western Grill", CuisineType: "Western"}},
	}
	repo.On("Search", mock.Anything, mock.MatchedBy(func(f repository.StallFilter) bool {
		return f.Keyword != nil && *f.Keyword == "grill" && f.HalalOnly
	})).Return(rows, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search/stalls?keyword=grill&halal_only=true", nil)
	rec := httptest.NewRecorder()
	newTestRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data service.SearchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.TotalCount)
	require.Len(t, resp.Data.Stalls, 1)
	assert.Equal(t, "Western Grill", resp.Data.Stalls[0].Name)
	repo.AssertExpectations(t)
}

func TestSearchStalls_InvalidParams(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"bad min_rating", "?min_rating=11"},
		{"non-numeric min_rating", "?min_rating=lots"},
		{"bad halal_only", "?halal_only=kinda"},
		{"bad cafeteria_id", "?cafeteria_id=not-a-uuid"},
		{"bad lat", "?lat=95&lon=103.7"},
		{"bad sort_by", "?sort_by=popularity"},
		{"max_distance without location", "?max_distance=1.0"},
		{"distance sort without location", "?sort_by=distance"},
		{"negative max_distance", "?lat=1.3&lon=103.7&max_distance=-2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockStallRepo)
			cafRepo := new(mockCafeteriaRepo)
			handler := newTestHandler(repo, cafRepo)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/search/stalls"+tc.query, nil)
			rec := httptest.NewRecorder()
			newTestRouter(handler).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
		})
	}
}

func TestSearchStalls_CuisineTypesAreSplitAndTrimmed(t *testing.T) {
	repo := new(mockStallRepo)
	cafRepo := new(mockCafeteriaRepo)
	handler := newTestHandler(repo, cafRepo)

	repo.On("Search", mock.Anything, mock.MatchedBy(func(f repository.StallFilter) bool {
		return len(f.CuisineTypes) == 2 &&
			f.CuisineTypes[0] == "Chinese" && f.CuisineTypes[1] == "Malay"
	})).Return([]repository.StallSearchRow{}, 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search/stalls?cuisine_types=Chinese,%20Malay,", nil)
	rec := httptest.NewRecorder()
	newTestRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

// =============================================================================
// GetStall
// =============================================================================

func TestGetStall_ByID(t *testing.T) {
	repo := new(mockStallRepo)
	cafRepo := new(mockCafeteriaRepo)
	handler := newTestHandler(repo, cafRepo)

	repo.On("GetByID", mock.Anything, testStallID).
		Return(&domain.Stall{ID: testStallID, Name: "Western Grill"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stalls/"+testStallID, nil)
	rec := httptest.NewRecorder()
	newTestRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "GetBySlug", mock.Anything, mock.Anything)
}

func TestGetStall_BySlug(t *testing.T) {
	repo := new(mockStallRepo)
	cafRepo := new(mockCafeteriaRepo)
	handler := newTestHandler(repo, cafRepo)

	repo.On("GetBySlug", mock.Anything, "western-grill").
		Return(&domain.Stall{ID: testStallID, Slug: "western-grill"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stalls/western-grill", nil)
	rec := httptest.NewRecorder()
	newTestRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestGetStall_NotFound(t *testing.T) {
	repo := new(mockStallRepo)
	cafRepo := new(mockCafeteriaRepo)
	handler := newTestHandler(repo, cafRepo)

	repo.On("GetBySlug", mock.Anything, "no-such-stall").
		Return(nil, apperrors.NotFound("stall", "no-such-stall"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stalls/no-such-stall", nil)
	rec := httptest.NewRecorder()
	newTestRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// CreateStall
// =============================================================================

func TestCreateStall_Success(t *testing.T) {
	repo := new(mockStallRepo)
	cafRepo := new(mockCafeteriaRepo)
	handler := newTestHandler(repo, cafRepo)

	cafID := "22222222-2222-2222-2222-222222222222"
	cafRepo.On("GetByID", mock.Anything, cafID).
		Return(&domain.Cafeteria{ID: cafID}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	body, _ := json.Marshal(map[string]any{
		"cafeteria_id": cafID,
		"name":         "Western Food",
		"cuisine_type": "Western",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stalls", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newTestRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	repo.AssertExpectations(t)
	cafRepo.AssertExpectations(t)
}

func TestCreateStall_ValidationError(t *testing.T) {
	repo := new(mockStallRepo)
	cafRepo := new(mockCafeteriaRepo)
	handler := newTestHandler(repo, cafRepo)

	body, _ := json.Marshal(map[string]any{
		"cafeteria_id": "not-a-uuid",
		"name":         "",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stalls", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newTestRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =============================================================================
// DeleteStall
// =============================================================================

func TestDeleteStall_Success(t *testing.T) {
	repo := new(mockStallRepo)
	cafRepo := new(mockCafeteriaRepo)
	handler := newTestHandler(repo, cafRepo)

	repo.On("Delete", mock.Anything, testStallID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/stalls/"+testStallID, nil)
	rec := httptest.NewRecorder()
	newTestRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteStall_MalformedID(t *testing.T) {
	repo := new(mockStallRepo)
	cafRepo := new(mockCafeteriaRepo)
	handler := newTestHandler(repo, cafRepo)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/stalls/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	newTestRouter(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
