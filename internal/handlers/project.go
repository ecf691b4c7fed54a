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

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	WorkspaceID uint   `json:"workspaceId" binding:"required"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func projectPreloads(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Workspace").
		Preload("Memberships", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Memberships.User").
		Preload("Tasks", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Tasks.AssignedTo")
}

func projectResponse(project models.Project) types.ProjectResponse {
	members := make([]types.UserResponse, 0, len(project.Memberships))

	for _, membership := range project.Memberships {
		members = append(members, types.NewUserResponse(membership.User))
	}

	tasks := make([]types.TaskResponse, 0, len(project.Tasks))

	for _, task := range project.Tasks {
		tasks = append(tasks, types.NewTaskResponse(task))
	}

	return types.ProjectResponse{
		ID:            project.ID,
		Name:          project.Name,
		Description:   project.Description,
		WorkspaceID:   project.WorkspaceID,
		WorkspaceName: project.Workspace.Name,
		Members:       members,
		Tasks:         tasks,
		CreatedAt:     project.CreatedAt,
	}
}

// CreateProject seeds the member list with every current workspace member
// plus the creator, de-duplicated, in one transaction.
func CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		httpx.Respond(ctx, httpx.Validation("Invalid request"))
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var workspace models.Workspace

	err = db.DB.Preload("Memberships").First(&workspace, body.WorkspaceID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Workspace not found"))
			return
		}
		logger.Error("Failed to fetch workspace", "workspace_id", body.WorkspaceID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve workspace"))
		return
	}

	if !authz.IsWorkspaceMember(currentUser.ID, workspace) {
		httpx.Respond(ctx, httpx.Forbidden("Not a workspace member"))
		return
	}

	memberIDs := []uint{currentUser.ID}
	seen := map[uint]bool{currentUser.ID: true}

	for _, membership := range workspace.Memberships {
		if !seen[membership.UserID] {
			seen[membership.UserID] = true
			memberIDs = append(memberIDs, membership.UserID)
		}
	}

	project := models.Project{
		Name:        strings.TrimSpace(body.Name),
		Description: body.Description,
		WorkspaceID: workspace.ID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		for _, userID := range memberIDs {
			membership := models.ProjectMembership{
				ProjectID: project.ID,
				UserID:    userID,
			}
			if err := tx.Create(&membership).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		logger.Error("Failed to create project", "workspace_id", workspace.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to create project"))
		return
	}

	if err := projectPreloads(db.DB).First(&project, project.ID).Error; err != nil {
		logger.Error("Failed to reload project", "project_id", project.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	ctx.JSON(http.StatusCreated, projectResponse(project))
}

// ListProjects returns the projects in a workspace when filtered (workspace
// members only), otherwise every project the caller belongs to.
func ListProjects(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var projects []models.Project

	if raw := ctx.Query("workspace_id"); raw != "" {
		var workspace models.Workspace

		err := db.DB.Preload("Memberships").Where("id = ?", raw).First(&workspace).Error

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpx.Respond(ctx, httpx.NotFound("Workspace not found"))
				return
			}
			logger.Error("Failed to fetch workspace", "workspace_id", raw, "error", err)
			httpx.Respond(ctx, httpx.Internal("Failed to retrieve workspace"))
			return
		}

		if !authz.IsWorkspaceMember(currentUser.ID, workspace) {
			httpx.Respond(ctx, httpx.Forbidden("Not a workspace member"))
			return
		}

		err = projectPreloads(db.DB).Where("workspace_id = ?", workspace.ID).Order("id ASC").Find(&projects).Error

		if err != nil {
			logger.Error("Failed to list projects", "workspace_id", workspace.ID, "error", err)
			httpx.Respond(ctx, httpx.Internal("Failed to retrieve projects"))
			return
		}
	} else {
		var projectIDs []uint

		err := db.DB.Model(&models.ProjectMembership{}).
			Where("user_id = ?", currentUser.ID).
			Pluck("project_id", &projectIDs).Error

		if err != nil {
			logger.Error("Failed to list project memberships", "user_id", currentUser.ID, "error", err)
			httpx.Respond(ctx, httpx.Internal("Failed to retrieve projects"))
			return
		}

		if len(projectIDs) > 0 {
			err = projectPreloads(db.DB).Where("id IN ?", projectIDs).Order("id ASC").Find(&projects).Error

			if err != nil {
				logger.Error("Failed to list projects", "user_id", currentUser.ID, "error", err)
				httpx.Respond(ctx, httpx.Internal("Failed to retrieve projects"))
				return
			}
		}
	}

	response := make([]types.ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, projectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
	projectID, ok := paramID(ctx, "id")

	if !ok {
		return
	}

	var project models.Project

	if err := projectPreloads(db.DB).First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Project not found"))
			return
		}
		logger.Error("Failed to fetch project", "project_id", projectID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve project"))
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

func UpdateProject(ctx *gin.Context) {
	projectID, ok := paramID(ctx, "id")

	if !ok {
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		httpx.Respond(ctx, httpx.Validation("Invalid request"))
		return
	}

	var project models.Project

	if err := projectPreloads(db.DB).First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Project not found"))
			return
		}
		logger.Error("Failed to fetch project", "project_id", projectID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve project"))
		return
	}

	if !authz.CanMutateProject(currentUser.ID, project) {
		httpx.Respond(ctx, httpx.Forbidden("Only project members can update the project"))
		return
	}

	if body.Name != "" {
		project.Name = strings.TrimSpace(body.Name)
	}
	if body.Description != "" {
		project.Description = body.Description
	}

	if err := db.DB.Omit(clause.Associations).Save(&project).Error; err != nil {
		logger.Error("Failed to update project", "project_id", projectID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to update project"))
		return
	}

	ctx.JSON(http.StatusOK, projectResponse(project))
}

// DeleteProject requires workspace-management rights and removes the
// project's tasks, messages and memberships in the same transaction.
func DeleteProject(ctx *gin.Context) {
	projectID, ok := paramID(ctx, "id")

	if !ok {
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Project not found"))
			return
		}
		logger.Error("Failed to fetch project", "project_id", projectID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve project"))
		return
	}

	var workspace models.Workspace

	if err := db.DB.Preload("Memberships").First(&workspace, project.WorkspaceID).Error; err != nil {
		logger.Error("Failed to fetch workspace", "workspace_id", project.WorkspaceID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve workspace"))
		return
	}

	if !authz.CanDeleteProject(currentUser.ID, workspace) {
		httpx.Respond(ctx, httpx.Forbidden("Insufficient permissions"))
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectMembership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})

	if err != nil {
		logger.Error("Failed to delete project", "project_id", projectID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to delete project"))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}
