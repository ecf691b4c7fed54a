package handlers

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/collabsphere-dev/collabsphere/db"
	"github.com/collabsphere-dev/collabsphere/internal/auth"
	"github.com/collabsphere-dev/collabsphere/internal/httpx"
	"github.com/collabsphere-dev/collabsphere/internal/logger"
	"github.com/collabsphere-dev/collabsphere/internal/models"
	"github.com/collabsphere-dev/collabsphere/internal/types"
	"github.com/collabsphere-dev/collabsphere/internal/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name            string `json:"name"`
	Avatar          string `json:"avatar"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"omitempty,min=8"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.BindJSON(&body); err != nil {
		httpx.Respond(ctx, httpx.Validation("Invalid request"))
		return
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	var existingUser models.User

	err := db.DB.Where("email = ?", body.Email).First(&existingUser).Error

	if err == nil {
		httpx.Respond(ctx, httpx.Conflict("Email already exists"))
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)

	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	user := models.User{
		Name:         body.Name,
		Email:        body.Email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleMember,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		logger.Error("Failed to create user", "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)

	if err != nil {
		logger.Error("Failed to generate JWT", "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  types.NewUserResponse(user),
	})
}

func Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.BindJSON(&body); err != nil {
		httpx.Respond(ctx, httpx.Validation("Invalid request"))
		return
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User

	err := db.DB.Where("email = ?", body.Email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.Unauthorized("Invalid email or password"))
			return
		}
		logger.Error("Failed to fetch user", "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("Invalid email or password"))
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)

	if err != nil {
		logger.Error("Failed to generate JWT", "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  types.NewUserResponse(user),
	})
}

func GetProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		logger.Error("Failed to fetch user", "user_id", currentUser.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": types.NewUserResponse(user)})
}

func UpdateProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		logger.Error("Failed to fetch user", "user_id", currentUser.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	var body UpdateProfileRequest

	if err := ctx.BindJSON(&body); err != nil {
		httpx.Respond(ctx, httpx.Validation("Invalid request"))
		return
	}

	updates := make(map[string]interface{})

	if body.Name != "" {
		updates["name"] = strings.TrimSpace(body.Name)
	}

	if body.Avatar != "" {
		updates["avatar"] = body.Avatar
	}

	if body.NewPassword != "" {
		if body.CurrentPassword == "" {
			httpx.Respond(ctx, httpx.Validation("Current password is required to change password"))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.CurrentPassword)); err != nil {
			httpx.Respond(ctx, httpx.Validation("Current password is incorrect"))
			return
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)

		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			httpx.Respond(ctx, httpx.Internal("Internal server error"))
			return
		}

		updates["password_hash"] = string(passwordHash)
	}

	if len(updates) == 0 {
		httpx.Respond(ctx, httpx.Validation("No valid fields to update"))
		return
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		logger.Error("Failed to update user", "user_id", user.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	if err := db.DB.First(&user, user.ID).Error; err != nil {
		logger.Error("Failed to refresh user", "user_id", user.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": types.NewUserResponse(user)})
}

var allowedAvatarExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

const maxAvatarSize = 5 << 20

func UploadAvatar(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		httpx.Respond(ctx, httpx.Unauthorized("User not authenticated"))
		return
	}

	file, err := ctx.FormFile("avatar")

	if err != nil {
		httpx.Respond(ctx, httpx.Validation("No file uploaded"))
		return
	}

	if file.Size > maxAvatarSize {
		httpx.Respond(ctx, httpx.Validation("Avatar must be smaller than 5MB"))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))

	if !allowedAvatarExts[ext] {
		httpx.Respond(ctx, httpx.Validation("Unsupported file type"))
		return
	}

	avatarDir := filepath.Join(types.UploadDir(), "avatars")

	if err := os.MkdirAll(avatarDir, 0o755); err != nil {
		logger.Error("Failed to create upload directory", "dir", avatarDir, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	filename := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)

	if err := ctx.SaveUploadedFile(file, filepath.Join(avatarDir, filename)); err != nil {
		logger.Error("Failed to save avatar", "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	avatarPath := "/uploads/avatars/" + filename

	if err := db.DB.Model(&models.User{}).Where("id = ?", currentUser.ID).Update("avatar", avatarPath).Error; err != nil {
		logger.Error("Failed to update avatar", "user_id", currentUser.ID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"avatar": avatarPath})
}

// ListUsers is admin-only; router mounts it behind AdminOnly.
func ListUsers(ctx *gin.Context) {
	var users []models.User

	if err := db.DB.Order("id ASC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users", "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	response := make([]types.UserResponse, 0, len(users))

	for _, user := range users {
		response = append(response, types.NewUserResponse(user))
	}

	ctx.JSON(http.StatusOK, response)
}

// UpdateUserRole is admin-only; router mounts it behind AdminOnly.
func UpdateUserRole(ctx *gin.Context) {
	userID, ok := paramID(ctx, "id")

	if !ok {
		return
	}

	var body UpdateRoleRequest

	if err := ctx.BindJSON(&body); err != nil {
		httpx.Respond(ctx, httpx.Validation("Invalid request"))
		return
	}

	if !models.ValidRole(body.Role) {
		httpx.Respond(ctx, httpx.Validation("Invalid role"))
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Respond(ctx, httpx.NotFound("User not found"))
			return
		}
		logger.Error("Failed to fetch user", "user_id", userID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	if err := db.DB.Model(&user).Update("role", body.Role).Error; err != nil {
		logger.Error("Failed to update role", "user_id", userID, "error", err)
		httpx.Respond(ctx, httpx.Internal("Internal server error"))
		return
	}

	user.Role = body.Role

	ctx.JSON(http.StatusOK, types.NewUserResponse(user))
}
