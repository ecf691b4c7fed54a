package types

import (
	"time"

	"github.com/collabsphere-dev/collabsphere/internal/models"
)

type UserResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Avatar: u.Avatar,
	}
}

type WorkspaceMemberResponse struct {
	User UserResponse `json:"user"`
	Role string       `json:"role"`
}

type WorkspaceResponse struct {
	ID          uint                      `json:"id"`
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Owner       UserResponse              `json:"owner"`
	Members     []WorkspaceMemberResponse `json:"members"`
	Projects    []ProjectSummary          `json:"projects"`
	CreatedAt   time.Time                 `json:"createdAt"`
}

type ProjectSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ProjectResponse struct {
	ID            uint           `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	WorkspaceID   uint           `json:"workspaceId"`
	WorkspaceName string         `json:"workspaceName"`
	Members       []UserResponse `json:"members"`
	Tasks         []TaskResponse `json:"tasks"`
	CreatedAt     time.Time      `json:"createdAt"`
}

type TaskResponse struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	Priority    string        `json:"priority"`
	AssignedTo  *UserResponse `json:"assignedTo"`
	ProjectID   uint          `json:"projectId"`
	DueDate     *time.Time    `json:"dueDate"`
	CreatedAt   time.Time     `json:"createdAt"`
}

func NewTaskResponse(t models.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		ProjectID:   t.ProjectID,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
	}

	if t.AssignedTo != nil {
		assignee := NewUserResponse(*t.AssignedTo)
		resp.AssignedTo = &assignee
	}

	return resp
}

// MessageSender is the enriched sender embedded in every delivered message.
// Field names match the chat client's wire format.
type MessageSender struct {
	ID     uint   `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

type MessageResponse struct {
	ID        uint          `json:"_id"`
	Content   string        `json:"content"`
	Sender    MessageSender `json:"sender"`
	ProjectID uint          `json:"project"`
	CreatedAt time.Time     `json:"createdAt"`
}

func NewMessageResponse(m models.Message) MessageResponse {
	return MessageResponse{
		ID:      m.ID,
		Content: m.Content,
		Sender: MessageSender{
			ID:     m.Sender.ID,
			Name:   m.Sender.Name,
			Email:  m.Sender.Email,
			Avatar: m.Sender.Avatar,
		},
		ProjectID: m.ProjectID,
		CreatedAt: m.CreatedAt,
	}
}
