package models

import "time"

// CXOArticleStatus is derived from the linked task except for sticky terminal values.
type CXOArticleStatus string

const (
	ArticleStatusPending        CXOArticleStatus = "Pending"
	ArticleStatusApproved       CXOArticleStatus = "Approved"
	ArticleStatusRejected       CXOArticleStatus = "Rejected"
	ArticleStatusDesigning      CXOArticleStatus = "Designing"
	ArticleStatusDesignReady    CXOArticleStatus = "Design Ready"
	ArticleStatusAwaitingDesign CXOArticleStatus = "Awaiting Design"
	ArticleStatusUsed           CXOArticleStatus = "Used"
)

// CXOArticle is a contributed article pending editorial approval.
type CXOArticle struct {
	ID                       string           `db:"id" json:"id"`
	BrandID                  string           `db:"brand_id" json:"brand_id"`
	EditionID                *string          `db:"edition_id" json:"edition_id,omitempty"`
	EditionOther             *string          `db:"edition_other" json:"edition_other,omitempty"`
	UploadedByID             string           `db:"uploaded_by_id" json:"uploaded_by_id"`
	AssignedToID             *string          `db:"assigned_to_id" json:"assigned_to_id,omitempty"`
	TaskID                   *string          `db:"task_id" json:"task_id,omitempty"`
	CompanyName              string           `db:"company_name" json:"company_name"`
	ContactPersonName        *string          `db:"contact_person_name" json:"contact_person_name,omitempty"`
	ContactPersonDesignation *string          `db:"contact_person_designation" json:"contact_person_designation,omitempty"`
	CompanyURL               *string          `db:"company_url" json:"company_url,omitempty"`
	Comments                 string           `db:"comments" json:"comments"`
	Status                   CXOArticleStatus `db:"status" json:"status"`
	IsUsed                   bool             `db:"is_used" json:"is_used"`
	IsArchived               bool             `db:"is_archived" json:"is_archived"`
	UploadedAt               time.Time        `db:"uploaded_at" json:"uploaded_at"`
	UpdatedAt                time.Time        `db:"updated_at" json:"updated_at"`
	UsedAt                   *time.Time       `db:"used_at" json:"used_at,omitempty"`
	ArchivedAt               *time.Time       `db:"archived_at" json:"archived_at,omitempty"`
}

// AnnotationKind labels an immutable note on an article.
type AnnotationKind string

const (
	AnnotationSubmitted    AnnotationKind = "SUBMITTED"
	AnnotationApproved     AnnotationKind = "APPROVED"
	AnnotationRejected     AnnotationKind = "REJECTED"
	AnnotationMarkedUsed   AnnotationKind = "MARKED AS USED"
	AnnotationEdited       AnnotationKind = "EDITED"
	AnnotationAutoApproved AnnotationKind = "AUTO-APPROVED"
)

// CXOArticleAnnotation is one ordered, immutable review note.
type CXOArticleAnnotation struct {
	ID        string         `db:"id" json:"id"`
	ArticleID string         `db:"article_id" json:"article_id"`
	Seq       int            `db:"seq" json:"seq"`
	Kind      AnnotationKind `db:"kind" json:"kind"`
	Author    string         `db:"author" json:"author"`
	Text      *string        `db:"text" json:"text,omitempty"`
	Extra     *string        `db:"extra" json:"extra,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// CXOArticleFile is a document attached to an article.
type CXOArticleFile struct {
	ID               string    `db:"id" json:"id"`
	ArticleID        string    `db:"article_id" json:"article_id"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	StoredFilename   string    `db:"stored_filename" json:"stored_filename"`
	FilePath         string    `db:"file_path" json:"-"`
	FileType         string    `db:"file_type" json:"file_type"`
	UploadedAt       time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// CXOArticleFilter narrows article listings.
type CXOArticleFilter struct {
	UploadedBy      string
	BrandID         string
	Status          []CXOArticleStatus
	IncludeArchived bool
	Page            int
	PageSize        int
}

// CXOArticleDetail aggregates an article with its notes and files.
type CXOArticleDetail struct {
	Article     *CXOArticle            `json:"article"`
	Annotations []CXOArticleAnnotation `json:"annotations"`
	Files       []CXOArticleFile       `json:"files"`
}
