package models

import "gorm.io/gorm"

// Message is an immutable chat entry scoped to a project. CreatedAt is
// assigned by the store at insertion; no exposed operation updates or
// deletes a message.
type Message struct {
	gorm.Model

	Content   string `gorm:"not null"`
	SenderID  uint   `gorm:"not null;index"`
	ProjectID uint   `gorm:"not null;index"`

	// Relationships
	Sender  User    `gorm:"foreignKey:SenderID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
