package models

// Revision is owned exclusively by its parent Standard and has no independent
// lifecycle. The revision date stays a plain string because that is what the
// wire format (and the inference backend) carries.
type Revision struct {
	BaseModel

	StandardID          uint   `gorm:"not null;index"`
	RevisionNumber      string `gorm:"not null"`
	RevisionDate        string
	RevisionDescription string

	// Relationships
	Standard Standard `gorm:"foreignKey:StandardID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
