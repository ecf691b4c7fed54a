package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TaskStatusTodo       = "Todo"
	TaskStatusInProgress = "In Progress"
	TaskStatusDone       = "Done"

	TaskPriorityLow    = "Low"
	TaskPriorityMedium = "Medium"
	TaskPriorityHigh   = "High"
)

func ValidTaskStatus(status string) bool {
	return status == TaskStatusTodo || status == TaskStatusInProgress || status == TaskStatusDone
}

func ValidTaskPriority(priority string) bool {
	return priority == TaskPriorityLow || priority == TaskPriorityMedium || priority == TaskPriorityHigh
}

type Task struct {
	gorm.Model

	Title        string `gorm:"not null"`
	Description  string
	Status       string `gorm:"not null;default:Todo"`
	Priority     string `gorm:"not null;default:Medium"`
	AssignedToID *uint  `gorm:"index"` // assignee is not required to be a project member
	ProjectID    uint   `gorm:"not null;index"`
	DueDate      *time.Time

	// Relationships
	AssignedTo *User   `gorm:"foreignKey:AssignedToID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Project    Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
