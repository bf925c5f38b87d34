package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/database"
	apperrors "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/errors"
)

func setupFavoriteRepo(t *testing.T) (*FavoriteRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewFavoriteRepository(mock)
	return repo, mock
}

func TestFavoriteRepository_Add_Success(t *testing.T) {
	repo, mock := setupFavoriteRepo(t)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO favorites").
		WithArgs("user-1", "stall-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Add(context.Background(), "user-1", "stall-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Add_AlreadyFavorited(t *testing.T) {
	repo, mock := setupFavoriteRepo(t)
	defer mock.Close()

	// ON CONFLICT DO NOTHING: a repeated favorite affects zero rows and is
	// still a success.
	mock.ExpectExec("INSERT INTO favorites").
		WithArgs("user-1", "stall-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := repo.Add(context.Background(), "user-1", "stall-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Add_ExecError(t *testing.T) {
	repo, mock := setupFavoriteRepo(t)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO favorites").
		WithArgs("user-1", "stall-1", pgxmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	err := repo.Add(context.Background(), "user-1", "stall-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert favorite")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Remove_Success(t *testing.T) {
	repo, mock := setupFavoriteRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM favorites").
		WithArgs("user-1", "stall-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Remove(context.Background(), "user-1", "stall-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Remove_NotFound(t *testing.T) {
	repo, mock := setupFavoriteRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM favorites").
		WithArgs("user-1", "stall-missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Remove(context.Background(), "user-1", "stall-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_ListByUser(t *testing.T) {
	repo, mock := setupFavoriteRepo(t)
	defer mock.Close()

	s := sampleStall()
	rows := pgxmock.NewRows(append(stallColumnNames(), "total_count")).
		AddRow(
			s.ID, s.CafeteriaID, s.Name, s.Slug, s.Description, s.CuisineType,
			s.HalalInfo, s.ImageURL, s.Latitude, s.Longitude, s.AverageRating,
			s.AveragePrice, s.ReviewCount, s.CreatedAt, s.UpdatedAt, 5,
		)

	mock.ExpectQuery("FROM favorites f").
		WithArgs("user-1", 20, 0).
		WillReturnRows(rows)

	stalls, total, err := repo.ListByUser(context.Background(), "user-1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, stalls, 1)
	assert.Equal(t, s.ID, stalls[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_ListByUser_Empty(t *testing.T) {
	repo, mock := setupFavoriteRepo(t)
	defer mock.Close()

	mock.ExpectQuery("FROM favorites f").
		WithArgs("user-2", 20, 0).
		WillReturnRows(pgxmock.NewRows(append(stallColumnNames(), "total_count")))

	stalls, total, err := repo.ListByUser(context.Background(), "user-2", 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, stalls)
	assert.Empty(t, stalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
