package models

import "gorm.io/gorm"

const (
	RoleAdmin  = "Admin"
	RoleMember = "Member"
)

// ValidRole reports whether role is one of the two application roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}

type User struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:Member"`
	Avatar       string // emoji or /uploads/avatars/... path

	// Relationships
	OwnedWorkspaces      []Workspace           `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	WorkspaceMemberships []WorkspaceMembership `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ProjectMemberships   []ProjectMembership   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
