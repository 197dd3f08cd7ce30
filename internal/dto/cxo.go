package dto

import "github.com/noah-isme/magazine-flow-api/internal/models"

// SubmitArticleRequest holds article metadata submitted alongside files.
type SubmitArticleRequest struct {
	BrandID                  string  `form:"brandId" json:"brandId"`
	EditionID                *string `form:"editionId" json:"editionId"`
	EditionOther             *string `form:"editionOther" json:"editionOther"`
	CompanyName              string  `form:"companyName" json:"companyName"`
	ContactPersonName        *string `form:"contactPersonName" json:"contactPersonName"`
	ContactPersonDesignation *string `form:"contactPersonDesignation" json:"contactPersonDesignation"`
	CompanyURL               *string `form:"companyUrl" json:"companyUrl"`
	Comments                 string  `form:"comments" json:"comments"`
	AssigneeID               *string `form:"assigneeId" json:"assigneeId"`
}

// ApproveArticleRequest captures the editor decision.
type ApproveArticleRequest struct {
	EditionID        *string `json:"editionId"`
	Comments         string  `json:"comments"`
	CreateDesignTask bool    `json:"createDesignTask"`
}

// RejectArticleRequest requires a reason.
type RejectArticleRequest struct {
	Reason string `json:"reason"`
}

// EditArticleRequest replaces editable article fields.
type EditArticleRequest struct {
	BrandID                  string  `json:"brandId"`
	EditionID                *string `json:"editionId"`
	EditionOther             *string `json:"editionOther"`
	CompanyName              string  `json:"companyName"`
	ContactPersonName        *string `json:"contactPersonName"`
	ContactPersonDesignation *string `json:"contactPersonDesignation"`
	CompanyURL               *string `json:"companyUrl"`
	AssigneeID               *string `json:"assigneeId"`
}

// ArticleQuery mirrors listing filters.
type ArticleQuery struct {
	BrandID  string
	Status   []models.CXOArticleStatus
	Page     int
	PageSize int
}

// ArticleReviewResponse reports the article plus the spawned design task, if any.
type ArticleReviewResponse struct {
	Article    *models.CXOArticle `json:"article"`
	DesignTask *models.Task       `json:"designTask,omitempty"`
}
