package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/database"
	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/domain"
)

func setupCafeteriaRepo(t *testing.T) (*CafeteriaRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewCafeteriaRepository(mock)
	return repo, mock
}

func sampleCafeteria() *domain.Cafeteria {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Cafeteria{
		ID:          "22222222-2222-2222-2222-222222222222",
		Name:        "Techno Edge",
		Slug:        "techno-edge",
		Description: "Engineering canteen",
		Location:    "2 Engineering Drive 4",
		Latitude:    1.2980,
		Longitude:   103.7718,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func cafeteriaColumns() []string {
	return []string{
		"id", "name", "slug", "description", "location",
		"latitude", "longitude", "created_at", "updated_at",
	}
}

func cafeteriaRow(c *domain.Cafeteria) *pgxmock.Rows {
	return pgxmock.NewRows(cafeteriaColumns()).
		AddRow(
			c.ID, c.Name, c.Slug, c.Description, c.Location,
			c.Latitude, c.Longitude, c.CreatedAt, c.UpdatedAt,
		)
}

func TestCafeteriaRepository_Create_Success(t *testing.T) {
	repo, mock := setupCafeteriaRepo(t)
	defer mock.Close()

	c := sampleCafeteria()

	mock.ExpectExec("INSERT INTO cafeterias").
		WithArgs(
			c.ID, c.Name, c.Slug, c.Description, c.Location,
			c.Latitude, c.Longitude, c.CreatedAt, c.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCafeteriaRepository_Create_DuplicateSlug(t *testing.T) {
	repo, mock := setupCafeteriaRepo(t)
	defer mock.Close()

	c := sampleCafeteria()

	mock.ExpectExec("INSERT INTO cafeterias").
		WithArgs(
			c.ID, c.Name, c.Slug, c.Description, c.Location,
			c.Latitude, c.Longitude, c.CreatedAt, c.UpdatedAt,
		).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), c)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCafeteriaRepository_GetByID_Success(t *testing.T) {
	repo, mock := setupCafeteriaRepo(t)
	defer mock.Close()

	c := sampleCafeteria()

	mock.ExpectQuery("SELECT .+ FROM cafeterias").
		WithArgs(c.ID).
		WillReturnRows(cafeteriaRow(c))

	result, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Name, result.Name)
	assert.Equal(t, c.Latitude, result.Latitude)
	assert.Equal(t, c.Longitude, result.Longitude)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCafeteriaRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := setupCafeteriaRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM cafeterias").
		WithArgs("nonexistent-id").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByID(context.Background(), "nonexistent-id")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCafeteriaRepository_List(t *testing.T) {
	repo, mock := setupCafeteriaRepo(t)
	defer mock.Close()

	c := sampleCafeteria()
	rows := pgxmock.NewRows(append(cafeteriaColumns(), "total_count")).
		AddRow(
			c.ID, c.Name, c.Slug, c.Description, c.Location,
			c.Latitude, c.Longitude, c.CreatedAt, c.UpdatedAt, 3,
		)

	mock.ExpectQuery("FROM cafeterias").
		WithArgs(20, 0).
		WillReturnRows(rows)

	cafeterias, total, err := repo.List(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, cafeterias, 1)
	assert.Equal(t, c.Slug, cafeterias[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCafeteriaRepository_Update_NotFound(t *testing.T) {
	repo, mock := setupCafeteriaRepo(t)
	defer mock.Close()

	c := sampleCafeteria()

	mock.ExpectExec("UPDATE cafeterias").
		WithArgs(
			c.Name, c.Slug, c.Description, c.Location,
			c.Latitude, c.Longitude, pgxmock.AnyArg(), c.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), c)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCafeteriaRepository_Delete_Success(t *testing.T) {
	repo, mock := setupCafeteriaRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM cafeterias").
		WithArgs("caf-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "caf-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
