package models

import "gorm.io/gorm"

type Workspace struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	OwnerID     uint `gorm:"not null;index"`

	// Relationships. Projects carry no delete constraint on purpose:
	// deleting a workspace orphans its projects instead of cascading.
	Owner       User                  `gorm:"foreignKey:OwnerID"`
	Memberships []WorkspaceMembership `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Projects    []Project             `gorm:"foreignKey:WorkspaceID"`
}
