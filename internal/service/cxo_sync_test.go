package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

func strPtr(v string) *string { return &v }

func TestSyncArticleDerivesStatusFromTask(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		task   models.Task
		expect models.CXOArticleStatus
	}{
		{"editorial open", models.Task{CurrentDepartment: models.DepartmentEditorial, Status: models.TaskStatusAssigned}, models.ArticleStatusPending},
		{"editorial completed", models.Task{CurrentDepartment: models.DepartmentEditorial, Status: models.TaskStatusCompleted}, models.ArticleStatusApproved},
		{"design unassigned", models.Task{CurrentDepartment: models.DepartmentDesign, Status: models.TaskStatusOpen}, models.ArticleStatusAwaitingDesign},
		{"design assigned", models.Task{CurrentDepartment: models.DepartmentDesign, Status: models.TaskStatusAssigned, AssignedToID: strPtr("d1")}, models.ArticleStatusDesigning},
		{"design completed", models.Task{CurrentDepartment: models.DepartmentDesign, Status: models.TaskStatusCompleted, AssignedToID: strPtr("d1")}, models.ArticleStatusDesignReady},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			article := &models.CXOArticle{Status: models.ArticleStatusPending}
			task := tc.task
			SyncArticle(article, &task, now)
			require.Equal(t, tc.expect, article.Status)
			require.Equal(t, task.AssignedToID, article.AssignedToID)
			require.Equal(t, now, article.UpdatedAt)
		})
	}
}

func TestSyncArticleKeepsRejected(t *testing.T) {
	article := &models.CXOArticle{Status: models.ArticleStatusRejected}
	for _, task := range []models.Task{
		{CurrentDepartment: models.DepartmentEditorial, Status: models.TaskStatusCompleted},
		{CurrentDepartment: models.DepartmentDesign, Status: models.TaskStatusAssigned, AssignedToID: strPtr("d1")},
		{CurrentDepartment: models.DepartmentEditorial, Status: models.TaskStatusOpen},
	} {
		task := task
		SyncArticle(article, &task, time.Now())
		require.Equal(t, models.ArticleStatusRejected, article.Status)
	}
}

func TestSyncArticleUsedIsTerminal(t *testing.T) {
	article := &models.CXOArticle{Status: models.ArticleStatusApproved, IsUsed: true}
	for _, task := range []models.Task{
		{CurrentDepartment: models.DepartmentDesign, Status: models.TaskStatusOpen},
		{CurrentDepartment: models.DepartmentEditorial, Status: models.TaskStatusAssigned},
	} {
		task := task
		SyncArticle(article, &task, time.Now())
		require.Equal(t, models.ArticleStatusUsed, article.Status)
	}
}

func TestSyncArticleWithoutTaskIsNoop(t *testing.T) {
	article := &models.CXOArticle{Status: models.ArticleStatusPending}
	SyncArticle(article, nil, time.Now())
	require.Equal(t, models.ArticleStatusPending, article.Status)
	require.True(t, article.UpdatedAt.IsZero())
}
