package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

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

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  *uint      `json:"assignedTo"`
	ProjectID   uint       `json:"projectId" binding:"required"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTaskRequest uses pointers so absent fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	AssignedTo  *uint      `json:"assignedTo"`
	DueDate     *time.Time `json:"dueDate"`
}

func taskPreloads(tx *gorm.DB) *gorm.DB {
	return tx.Preload("AssignedTo").Preload("Project")
}

// loadProjectForMutation fetches the task's project with memberships and
// checks the caller may mutate it. Writes the error response itself.
func loadProjectForMutation(ctx *gin.Context, projectID, actorID uint) (models.Project, bool) {
	var project models.Project

	err := db.DB.Preload("Memberships").First(&project, projectID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Project not found"))
			return models.Project{}, false
		}
		logger.Error("Failed to fetch project", "project_id", projectID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve project"))
		return models.Project{}, false
	}

	if !authz.CanMutateTask(actorID, project) {
		httpx.Respond(ctx, httpx.Forbidden("Only project members can modify tasks"))
		return models.Project{}, false
	}

	return project, true
}

func CreateTask(ctx *gin.Context) {
	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		httpx.Respond(ctx, httpx.Validation("Invalid request"))
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	if _, ok := loadProjectForMutation(ctx, body.ProjectID, currentUser.ID); !ok {
		return
	}

	status := body.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !models.ValidTaskStatus(status) {
		httpx.Respond(ctx, httpx.Validation("Invalid status"))
		return
	}

	priority := body.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !models.ValidTaskPriority(priority) {
		httpx.Respond(ctx, httpx.Validation("Invalid priority"))
		return
	}

	task := models.Task{
		Title:        strings.TrimSpace(body.Title),
		Description:  body.Description,
		Status:       status,
		Priority:     priority,
		AssignedToID: body.AssignedTo,
		ProjectID:    body.ProjectID,
		DueDate:      body.DueDate,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		logger.Error("Failed to create task", "project_id", body.ProjectID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to create task"))
		return
	}

	if err := taskPreloads(db.DB).First(&task, task.ID).Error; err != nil {
		logger.Error("Failed to reload task", "task_id", task.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	ctx.JSON(http.StatusCreated, types.NewTaskResponse(task))
}

// ListTasks returns a project's tasks when filtered (project members only),
// otherwise the tasks across every project the caller belongs to.
func ListTasks(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var tasks []models.Task

	if raw := ctx.Query("project_id"); raw != "" {
		var project models.Project

		err := db.DB.Preload("Memberships").Where("id = ?", raw).First(&project).Error

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpx.Respond(ctx, httpx.NotFound("Project not found"))
				return
			}
			logger.Error("Failed to fetch project", "project_id", raw, "error", err)
			httpx.Respond(ctx, httpx.Internal("Failed to retrieve project"))
			return
		}

		if !authz.IsProjectMember(currentUser.ID, project) {
			httpx.Respond(ctx, httpx.Forbidden("Not a project member"))
			return
		}

		err = taskPreloads(db.DB).Where("project_id = ?", project.ID).Order("id ASC").Find(&tasks).Error

		if err != nil {
			logger.Error("Failed to list tasks", "project_id", project.ID, "error", err)
			httpx.Respond(ctx, httpx.Internal("Failed to retrieve tasks"))
			return
		}
	} else {
		var projectIDs []uint

		err := db.DB.Model(&models.ProjectMembership{}).
			Where("user_id = ?", currentUser.ID).
			Pluck("project_id", &projectIDs).Error

		if err != nil {
			logger.Error("Failed to list project memberships", "user_id", currentUser.ID, "error", err)
			httpx.Respond(ctx, httpx.Internal("Failed to retrieve tasks"))
			return
		}

		if len(projectIDs) > 0 {
			err = taskPreloads(db.DB).Where("project_id IN ?", projectIDs).Order("id ASC").Find(&tasks).Error

			if err != nil {
				logger.Error("Failed to list tasks", "user_id", currentUser.ID, "error", err)
				httpx.Respond(ctx, httpx.Internal("Failed to retrieve tasks"))
				return
			}
		}
	}

	response := make([]types.TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		response = append(response, types.NewTaskResponse(task))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetTask(ctx *gin.Context) {
	taskID, ok := paramID(ctx, "id")

	if !ok {
		return
	}

	var task models.Task

	if err := taskPreloads(db.DB).First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Task not found"))
			return
		}
		logger.Error("Failed to fetch task", "task_id", taskID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve task"))
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponse(task))
}

func UpdateTask(ctx *gin.Context) {
	taskID, ok := paramID(ctx, "id")

	if !ok {
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		httpx.Respond(ctx, httpx.Validation("Invalid request"))
		return
	}

	var task models.Task

	if err := db.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Task not found"))
			return
		}
		logger.Error("Failed to fetch task", "task_id", taskID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve task"))
		return
	}

	if _, ok := loadProjectForMutation(ctx, task.ProjectID, currentUser.ID); !ok {
		return
	}

	if body.Title != nil && *body.Title != "" {
		task.Title = strings.TrimSpace(*body.Title)
	}
	if body.Description != nil {
		task.Description = *body.Description
	}
	if body.Status != nil {
		if !models.ValidTaskStatus(*body.Status) {
			httpx.Respond(ctx, httpx.Validation("Invalid status"))
			return
		}
		task.Status = *body.Status
	}
	if body.Priority != nil {
		if !models.ValidTaskPriority(*body.Priority) {
			httpx.Respond(ctx, httpx.Validation("Invalid priority"))
			return
		}
		task.Priority = *body.Priority
	}
	if body.AssignedTo != nil {
		if *body.AssignedTo == 0 {
			task.AssignedToID = nil
		} else {
			task.AssignedToID = body.AssignedTo
		}
	}
	if body.DueDate != nil {
		task.DueDate = body.DueDate
	}

	if err := db.DB.Omit(clause.Associations).Save(&task).Error; err != nil {
		logger.Error("Failed to update task", "task_id", taskID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to update task"))
		return
	}

	if err := taskPreloads(db.DB).First(&task, task.ID).Error; err != nil {
		logger.Error("Failed to reload task", "task_id", task.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponse(task))
}

// DeleteTask is open to any project member; project deletion is not. The
// asymmetry is intentional.
func DeleteTask(ctx *gin.Context) {
	taskID, ok := paramID(ctx, "id")

	if !ok {
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var task models.Task

	if err := db.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("Task not found"))
			return
		}
		logger.Error("Failed to fetch task", "task_id", taskID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to retrieve task"))
		return
	}

	if _, ok := loadProjectForMutation(ctx, task.ProjectID, currentUser.ID); !ok {
		return
	}

	if err := db.DB.Delete(&task).Error; err != nil {
		logger.Error("Failed to delete task", "task_id", taskID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Failed to delete task"))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}
