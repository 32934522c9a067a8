package models

import "time"

// BaseModel is the common column set for all entities. Rows are removed with
// hard deletes so that rejected standards and their revisions are actually
// gone, not soft-deleted.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
