package models

import "time"

const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
)

// Standard is a regulatory or technical compliance document. Rows created by
// hand default to approved; rows extracted from an uploaded file start out
// pending until an operator approves or rejects them.
type Standard struct {
	BaseModel

	Name                string `gorm:"not null"`
	Description         string
	IssuingOrganization string
	StandardNumber      string
	Version             string
	StandardOwner       string
	StandardWebsite     string

	IssueDate     *time.Time `gorm:"type:date"`
	EffectiveDate *time.Time `gorm:"type:date"`

	GeneralCategories StringArray
	ITCategories      StringArray
	Regions           StringArray
	Countries         StringArray

	AdditionalNotes string

	// FilePath is the opaque object-storage locator of the uploaded document.
	// The blob it names is owned by this row: deleting or replacing the row's
	// file obligates a best-effort delete of the old blob.
	FilePath string

	ApprovalStatus string `gorm:"not null;default:approved"`

	// Relationships
	Revisions []Revision `gorm:"foreignKey:StandardID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
