package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/collabsphere-dev/collabsphere/db"
	"github.com/collabsphere-dev/collabsphere/internal/authz"
	"github.com/collabsphere-dev/collabsphere/internal/httpx"
	"github.com/collabsphere-dev/collabsphere/internal/logger"
	"github.com/collabsphere-dev/collabsphere/internal/models"
	"github.com/collabsphere-dev/collabsphere/internal/types"
	"github.com/collabsphere-dev/collabsphere/internal/utils"
)

type CreateWorkspaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateWorkspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// workspacePreloads loads everything the populated workspace response needs.
// Memberships come back in insertion order.
func workspacePreloads(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Owner").
		Preload("Memberships", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Memberships.User").
		Preload("Projects")
}

func workspaceResponse(workspace models.Workspace) types.WorkspaceResponse {
	members := make([]types.WorkspaceMemberResponse, 0, len(workspace.Memberships))

	for _, membership := range workspace.Memberships {
		members = append(members, types.WorkspaceMemberResponse{
			User: types.NewUserResponse(membership.User),
			Role: membership.Role,
		})
	}

	projects := make([]types.ProjectSummary, 0, len(workspace.Projects))

	for _, project := range workspace.Projects {
		projects = append(projects, types.ProjectSummary{
			ID:          project.ID,
			Name:        project.Name,
			Description: project.Description,
		})
	}

	return types.WorkspaceResponse{
		ID:          workspace.ID,
		Name:        workspace.Name,
		Description: workspace.Description,
		Owner:       types.NewUserResponse(workspace.Owner),
		Members:     members,
		Projects:    projects,
		CreatedAt:   workspace.CreatedAt,
	}
}

// CreateWorkspace makes the caller the owner and inserts them as an Admin
// member in the same transaction; the rest of the authorization model relies
// on that invariant.
func CreateWorkspace(ctx *gin.Context) {
	var body CreateWorkspaceRequest

	if err := ctx.BindJSON(&body); err != nil {
		httpx.Respond(ctx, httpx.Validation("Invalid request"))
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	workspace := models.Workspace{
		Name:        strings.TrimSpace(body.Name),
		Description: body.Description,
		OwnerID:     currentUser.ID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&workspace).Error; err != nil {
			return err
		}

		membership := models.WorkspaceMembership{
			WorkspaceID: workspace.ID,
			UserID:      currentUser.ID,
			Role:        models.RoleAdmin,
		}

		return tx.Create(&membership).Error
	})

	if err != nil {
		logger.Error("Failed to create workspace", "user_id", currentUser.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to create workspace"))
		return
	}

	if err := workspacePreloads(db.DB).First(&workspace, workspace.ID).Error; err != nil {
		logger.Error("Failed to reload workspace", "workspace_id", workspace.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	ctx.JSON(http.StatusCreated, workspaceResponse(workspace))
}

// ListWorkspaces returns the workspaces the caller is a member of.
func ListWorkspaces(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var workspaceIDs []uint

	err = db.DB.Model(&models.WorkspaceMembership{}).
		Where("user_id = ?", currentUser.ID).
		Pluck("workspace_id", &workspaceIDs).Error

	if err != nil {
		logger.Error("Failed to list memberships", "user_id", currentUser.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve workspaces"))
		return
	}

	var workspaces []models.Workspace

	if len(workspaceIDs) > 0 {
		if err := workspacePreloads(db.DB).Where("id IN ?", workspaceIDs).Order("id ASC").Find(&workspaces).Error; err != nil {
			logger.Error("Failed to list workspaces", "user_id", currentUser.ID, "error", err)
			httpx.Respond(ctx, httpx.Internal("Failed to retrieve workspaces"))
			return
		}
	}

	response := make([]types.WorkspaceResponse, 0, len(workspaces))

	for _, workspace := range workspaces {
		response = append(response, workspaceResponse(workspace))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetWorkspace(ctx *gin.Context) {
	workspaceID, ok := paramID(ctx, "id")

	if !ok {
		return
	}

	var workspace models.Workspace

	if err := workspacePreloads(db.DB).First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Workspace not found"))
			return
		}
		logger.Error("Failed to fetch workspace", "workspace_id", workspaceID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve workspace"))
		return
	}

	ctx.JSON(http.StatusOK, workspaceResponse(workspace))
}

func UpdateWorkspace(ctx *gin.Context) {
	workspaceID, ok := paramID(ctx, "id")

	if !ok {
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var body UpdateWorkspaceRequest

	if err := ctx.BindJSON(&body); err != nil {
		httpx.Respond(ctx, httpx.Validation("Invalid request"))
		return
	}

	var workspace models.Workspace

	if err := workspacePreloads(db.DB).First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Workspace not found"))
			return
		}
		logger.Error("Failed to fetch workspace", "workspace_id", workspaceID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve workspace"))
		return
	}

	if !authz.CanManageWorkspace(currentUser.ID, workspace) {
		httpx.Respond(ctx, httpx.Forbidden("Insufficient permissions"))
		return
	}

	if body.Name != "" {
		workspace.Name = strings.TrimSpace(body.Name)
	}
	if body.Description != "" {
		workspace.Description = body.Description
	}

	if err := db.DB.Omit(clause.Associations).Save(&workspace).Error; err != nil {
		logger.Error("Failed to update workspace", "workspace_id", workspaceID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to update workspace"))
		return
	}

	ctx.JSON(http.StatusOK, workspaceResponse(workspace))
}

// DeleteWorkspace is owner-only. Memberships go with the workspace; projects
// are left orphaned on purpose.
func DeleteWorkspace(ctx *gin.Context) {
	workspaceID, ok := paramID(ctx, "id")

	if !ok {
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var workspace models.Workspace

	if err := db.DB.First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Workspace not found"))
			return
		}
		logger.Error("Failed to fetch workspace", "workspace_id", workspaceID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve workspace"))
		return
	}

	if workspace.OwnerID != currentUser.ID {
		httpx.Respond(ctx, httpx.Forbidden("Only the owner can delete a workspace"))
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace_id = ?", workspace.ID).Delete(&models.WorkspaceMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&workspace).Error
	})

	if err != nil {
		logger.Error("Failed to delete workspace", "workspace_id", workspaceID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to delete workspace"))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Workspace deleted"})
}

// AddWorkspaceMember adds a user by email with role Member.
func AddWorkspaceMember(ctx *gin.Context) {
	workspaceID, ok := paramID(ctx, "id")

	if !ok {
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var body AddMemberRequest

	if err := ctx.BindJSON(&body); err != nil {
		httpx.Respond(ctx, httpx.Validation("Invalid request"))
		return
	}

	var workspace models.Workspace

	if err := workspacePreloads(db.DB).First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Workspace not found"))
			return
		}
		logger.Error("Failed to fetch workspace", "workspace_id", workspaceID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve workspace"))
		return
	}

	if !authz.CanManageWorkspace(currentUser.ID, workspace) {
		httpx.Respond(ctx, httpx.Forbidden("Insufficient permissions"))
		return
	}

	var user models.User

	email := strings.ToLower(strings.TrimSpace(body.Email))

	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("User not found"))
			return
		}
		logger.Error("Failed to fetch user", "email", email, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	for _, membership := range workspace.Memberships {
		if membership.UserID == user.ID {
			httpx.Respond(ctx, httpx.Conflict("User is already a member"))
			return
		}
	}

	membership := models.WorkspaceMembership{
		WorkspaceID: workspace.ID,
		UserID:      user.ID,
		Role:        models.RoleMember,
	}

	if err := db.DB.Create(&membership).Error; err != nil {
		logger.Error("Failed to add member", "workspace_id", workspaceID, "user_id", user.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to add member"))
		return
	}

	if err := workspacePreloads(db.DB).First(&workspace, workspace.ID).Error; err != nil {
		logger.Error("Failed to reload workspace", "workspace_id", workspaceID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	ctx.JSON(http.StatusOK, workspaceResponse(workspace))
}
