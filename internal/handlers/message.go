package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/collabsphere-dev/collabsphere/db"
	"github.com/collabsphere-dev/collabsphere/internal/authz"
	"github.com/collabsphere-dev/collabsphere/internal/httpx"
	"github.com/collabsphere-dev/collabsphere/internal/logger"
	"github.com/collabsphere-dev/collabsphere/internal/models"
	"github.com/collabsphere-dev/collabsphere/internal/types"
	"github.com/collabsphere-dev/collabsphere/internal/utils"
)

type CreateMessageRequest struct {
	Content   string `json:"content" binding:"required"`
	ProjectID uint   `json:"projectId" binding:"required"`
}

// GetMessages returns a project's chat history in insertion order, senders
// populated. Project members only.
func GetMessages(ctx *gin.Context) {
	projectID, ok := paramID(ctx, "project_id")

	if !ok {
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var project models.Project

	if err := db.DB.Preload("Memberships").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Project not found"))
			return
		}
		logger.Error("Failed to fetch project", "project_id", projectID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve project"))
		return
	}

	if !authz.IsProjectMember(currentUser.ID, project) {
		httpx.Respond(ctx, httpx.Forbidden("Not a project member"))
		return
	}

	var messages []models.Message

	err = db.DB.Preload("Sender").
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error

	if err != nil {
		logger.Error("Failed to list messages", "project_id", projectID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve messages"))
		return
	}

	response := make([]types.MessageResponse, 0, len(messages))

	for _, message := range messages {
		response = append(response, types.NewMessageResponse(message))
	}

	ctx.JSON(http.StatusOK, response)
}

// CreateMessage is the REST fallback for sending; it persists and returns the
// populated message but does not fan out to WebSocket subscribers.
func CreateMessage(ctx *gin.Context) {
	var body CreateMessageRequest

	if err := ctx.BindJSON(&body); err != nil {
		httpx.Respond(ctx, httpx.Validation("Invalid request"))
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var project models.Project

	if err := db.DB.Preload("Memberships").First(&project, body.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Project not found"))
			return
		}
		logger.Error("Failed to fetch project", "project_id", body.ProjectID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve project"))
		return
	}

	if !authz.IsProjectMember(currentUser.ID, project) {
		httpx.Respond(ctx, httpx.Forbidden("Not a project member"))
		return
	}

	message := models.Message{
		Content:   body.Content,
		SenderID:  currentUser.ID,
		ProjectID: body.ProjectID,
	}

	if err := db.DB.Create(&message).Error; err != nil {
		logger.Error("Failed to create message", "project_id", body.ProjectID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to send message"))
		return
	}

	if err := db.DB.Preload("Sender").First(&message, message.ID).Error; err != nil {
		logger.Error("Failed to reload message", "message_id", message.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	ctx.JSON(http.StatusCreated, types.NewMessageResponse(message))
}
