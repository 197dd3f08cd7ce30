package models

import "time"

// Ad is an advertisement artwork uploaded for a brand.
type Ad struct {
	ID               string    `db:"id" json:"id"`
	BrandID          string    `db:"brand_id" json:"brand_id"`
	EditionID        *string   `db:"edition_id" json:"edition_id,omitempty"`
	UploadedByID     string    `db:"uploaded_by_id" json:"uploaded_by_id"`
	Filename         string    `db:"filename" json:"filename"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	FilePath         string    `db:"file_path" json:"-"`
	FileType         string    `db:"file_type" json:"file_type"`
	UploadedAt       time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// BrandAds groups ads under their brand for listings.
type BrandAds struct {
	Brand Brand `json:"brand"`
	Ads   []Ad  `json:"ads"`
}
