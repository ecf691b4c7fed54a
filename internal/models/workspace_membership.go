package models

import "gorm.io/gorm"

// WorkspaceMembership links a user to a workspace with a per-workspace role.
// The workspace creator is always inserted as an Admin member in the same
// transaction that creates the workspace.
type WorkspaceMembership struct {
	gorm.Model

	WorkspaceID uint   `gorm:"not null;uniqueIndex:idx_workspace_user"`
	UserID      uint   `gorm:"not null;uniqueIndex:idx_workspace_user"`
	Role        string `gorm:"not null;default:Member"`

	// Relationships
	Workspace Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
