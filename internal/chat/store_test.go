package chat

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/collabsphere-dev/collabsphere/internal/models"
)

func setupStore(t *testing.T) (*GormStore, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMembership{},
		&models.Project{},
		&models.ProjectMembership{},
		&models.Message{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewGormStore(gdb), gdb
}

func TestGormStoreCreateMessageEnrichesSender(t *testing.T) {
	store, gdb := setupStore(t)

	user := models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x", Avatar: "🙂"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	message, err := store.CreateMessage(context.Background(), 42, user.ID, "hello")
	if err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	if message.ID == 0 || message.CreatedAt.IsZero() {
		t.Fatal("message not persisted with id and timestamp")
	}
	if message.Sender.Name != "Alice" || message.Sender.Email != "alice@example.com" {
		t.Fatalf("sender not resolved: %+v", message.Sender)
	}

	var count int64
	if err := gdb.Model(&models.Message{}).Where("project_id = ?", 42).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stored message, got %d", count)
	}
}

func TestGormStoreIsProjectMember(t *testing.T) {
	store, gdb := setupStore(t)

	membership := models.ProjectMembership{ProjectID: 7, UserID: 3}
	if err := gdb.Create(&membership).Error; err != nil {
		t.Fatalf("failed to create membership: %v", err)
	}

	isMember, err := store.IsProjectMember(context.Background(), 3, 7)
	if err != nil {
		t.Fatalf("IsProjectMember failed: %v", err)
	}
	if !isMember {
		t.Fatal("expected member")
	}

	isMember, err = store.IsProjectMember(context.Background(), 4, 7)
	if err != nil {
		t.Fatalf("IsProjectMember failed: %v", err)
	}
	if isMember {
		t.Fatal("expected non-member")
	}
}
