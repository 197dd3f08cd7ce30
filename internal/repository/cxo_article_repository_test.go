package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

var articleRowColumns = []string{"id", "brand_id", "uploaded_by_id", "task_id", "company_name", "comments", "status", "is_used", "is_archived", "uploaded_at", "updated_at"}

func TestArticleGetByTaskIDLocksLinkedRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCXOArticleRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(articleRowColumns).
		AddRow("a1", "brand-1", "u-cxo", "t1", "Acme", "", string(models.ArticleStatusAwaitingDesign), false, false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM cxo_articles WHERE task_id = $1 LIMIT 1 FOR UPDATE")).
		WithArgs("t1").
		WillReturnRows(rows)

	article, err := repo.GetByTaskID(context.Background(), nil, "t1")
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.Equal(t, models.ArticleStatusAwaitingDesign, article.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleGetByTaskIDWithoutLink(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCXOArticleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM cxo_articles WHERE task_id = $1")).
		WithArgs("t2").
		WillReturnRows(sqlmock.NewRows(articleRowColumns))

	article, err := repo.GetByTaskID(context.Background(), nil, "t2")
	require.NoError(t, err)
	assert.Nil(t, article)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCXOArticleRepository(db)

	mock.ExpectExec("UPDATE cxo_articles SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), nil, &models.CXOArticle{ID: "gone", Status: models.ArticleStatusUsed})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleAppendAnnotationNumbersSequence(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCXOArticleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(seq), 0) + 1 FROM cxo_article_annotations WHERE article_id = $1")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(3))
	mock.ExpectExec("INSERT INTO cxo_article_annotations").WillReturnResult(sqlmock.NewResult(0, 1))

	ann := &models.CXOArticleAnnotation{ArticleID: "a1", Kind: models.AnnotationRejected, Author: "emma"}
	require.NoError(t, repo.AppendAnnotation(context.Background(), nil, ann))
	assert.Equal(t, 3, ann.Seq)
	assert.NotEmpty(t, ann.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleListByUploader(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCXOArticleRepository(db)

	where := "WHERE uploaded_by_id = $1 AND status IN ($2) AND is_archived = FALSE"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM cxo_articles " + where)).
		WithArgs("u-cxo", models.ArticleStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	now := time.Now()
	rows := sqlmock.NewRows(articleRowColumns).
		AddRow("a1", "brand-1", "u-cxo", nil, "Acme", "", string(models.ArticleStatusPending), false, false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta(where + " ORDER BY uploaded_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("u-cxo", models.ArticleStatusPending).
		WillReturnRows(rows)

	articles, total, err := repo.List(context.Background(), models.CXOArticleFilter{
		UploadedBy: "u-cxo",
		Status:     []models.CXOArticleStatus{models.ArticleStatusPending},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, articles, 1)
	assert.Nil(t, articles[0].TaskID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
