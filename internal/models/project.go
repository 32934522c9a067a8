package models

import "gorm.io/datatypes"

type Project struct {
	BaseModel

	Name            string `gorm:"not null"`
	Use             string `gorm:"not null"`
	Description     string `gorm:"not null"`
	ProductType     string `gorm:"not null"`
	ProductCategory string `gorm:"not null"`

	Dimensions string
	Weight     string

	Regions   StringArray
	Countries StringArray

	TechnicalDetails datatypes.JSON
	// StandardMapping is written exclusively by the standard-mapping workflow.
	// Client updates never touch it.
	StandardMapping datatypes.JSON

	MultiVariant           bool `gorm:"default:false"`
	PreCertifiedComponents bool `gorm:"default:false"`

	UserID uint `gorm:"not null;index"`

	// Relationships
	Owner       User         `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Memberships []Membership `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Invitations []Invitation `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
