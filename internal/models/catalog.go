package models

import "time"

// EditionStatus tracks the production stage of a publication issue.
type EditionStatus string

const (
	EditionScheduled EditionStatus = "Scheduled"
	EditionOngoing   EditionStatus = "Ongoing"
	EditionHold      EditionStatus = "Hold"
	EditionCanceled  EditionStatus = "Canceled"
	EditionCompleted EditionStatus = "Completed"
	EditionOnline    EditionStatus = "Online"
	EditionPrinted   EditionStatus = "Printed"
	EditionShipped   EditionStatus = "Shipped"
)

// Valid reports whether the edition status is known.
func (s EditionStatus) Valid() bool {
	switch s {
	case EditionScheduled, EditionOngoing, EditionHold, EditionCanceled,
		EditionCompleted, EditionOnline, EditionPrinted, EditionShipped:
		return true
	}
	return false
}

// Brand is a magazine title.
type Brand struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Edition is one issue of a brand.
type Edition struct {
	ID        string        `db:"id" json:"id"`
	BrandID   string        `db:"brand_id" json:"brand_id"`
	Name      string        `db:"name" json:"name"`
	Year      *int          `db:"year" json:"year,omitempty"`
	Month     *int          `db:"month" json:"month,omitempty"`
	Status    EditionStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}
