package service

import (
	"time"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

// SyncArticle projects the linked task state onto the article. Used and Rejected
// are sticky and never overwritten. It is a no-op when task is nil.
func SyncArticle(article *models.CXOArticle, task *models.Task, now time.Time) {
	if article == nil || task == nil {
		return
	}
	article.AssignedToID = task.AssignedToID

	switch {
	case article.IsUsed:
		article.Status = models.ArticleStatusUsed
	case article.Status == models.ArticleStatusRejected:
	case task.CurrentDepartment == models.DepartmentDesign:
		switch {
		case task.Status == models.TaskStatusCompleted:
			article.Status = models.ArticleStatusDesignReady
		case task.AssignedToID != nil:
			article.Status = models.ArticleStatusDesigning
		default:
			article.Status = models.ArticleStatusAwaitingDesign
		}
	case task.CurrentDepartment == models.DepartmentEditorial:
		if task.Status == models.TaskStatusCompleted {
			article.Status = models.ArticleStatusApproved
		} else {
			article.Status = models.ArticleStatusPending
		}
	}
	article.UpdatedAt = now
}
