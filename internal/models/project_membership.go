package models

import "gorm.io/gorm"

// ProjectMembership links a user to a project. Unlike workspace memberships
// there is no per-project role; any member may mutate the project's tasks.
type ProjectMembership struct {
	gorm.Model

	ProjectID uint `gorm:"not null;uniqueIndex:idx_project_user"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_project_user"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
