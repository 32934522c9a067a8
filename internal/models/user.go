package models

type User struct {
	BaseModel

	Name string `gorm:"not null"`
	// Email uniqueness is a business rule checked by the user service, not a
	// schema constraint.
	Email        string `gorm:"not null;index"`
	PasswordHash string `gorm:"column:password;not null"`

	// Relationships
	OwnedProjects []Project    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Memberships   []Membership `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Invitations   []Invitation `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
