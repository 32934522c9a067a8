package models

const (
	MemberRoleAdmin  = "admin"
	MemberRoleMember = "member"

	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
)

type Membership struct {
	BaseModel

	UserID    uint   `gorm:"not null;uniqueIndex:idx_member_user_project"`
	ProjectID uint   `gorm:"not null;uniqueIndex:idx_member_user_project"`
	Role      string `gorm:"not null"`
	Status    string `gorm:"not null"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
