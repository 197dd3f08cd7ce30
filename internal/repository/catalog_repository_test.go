package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

func TestCatalogListEditionsByBrand(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "brand_id", "name", "year", "month", "status", "created_at"}).
		AddRow("e1", "b1", "March 2024", 2024, 3, "Ongoing", time.Now())
	mock.ExpectQuery(`FROM editions WHERE brand_id = \$1 ORDER BY year DESC NULLS LAST`).
		WithArgs("b1").
		WillReturnRows(rows)

	editions, err := repo.ListEditions(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, editions, 1)
	assert.Equal(t, models.EditionOngoing, editions[0].Status)
	require.NotNil(t, editions[0].Month)
	assert.Equal(t, 3, *editions[0].Month)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogFindBrandByNameMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM brands WHERE lower(name) = lower($1)")).
		WithArgs("Forbes").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	brand, err := repo.FindBrandByName(context.Background(), nil, "Forbes")
	require.NoError(t, err)
	assert.Nil(t, brand)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogCreateEditionDefaultsStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectExec(`INSERT INTO editions`).
		WithArgs(sqlmock.AnyArg(), "b1", "April 2024", nil, nil, models.EditionScheduled, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	edition := &models.Edition{BrandID: "b1", Name: "April 2024"}
	require.NoError(t, repo.CreateEdition(context.Background(), nil, edition))
	assert.NotEmpty(t, edition.ID)
	assert.Equal(t, models.EditionScheduled, edition.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogUpdateEditionStatusMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE editions SET status = $2 WHERE id = $1")).
		WithArgs("e404", models.EditionPrinted).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateEditionStatus(context.Background(), "e404", models.EditionPrinted)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
