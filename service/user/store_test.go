package user

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/postline/postline-server/cmd/models"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(&models.User{}, &models.Group{}, &models.Post{}, &models.Comment{}, &models.Follow{})
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func TestRegisterAndAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	user, err := store.Register("alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	if user.PasswordHash == "s3cret" || user.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}

	got, err := store.Authenticate("alice", "s3cret")
	if err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("authenticated the wrong user: %d", got.ID)
	}

	if _, err := store.Authenticate("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := store.Authenticate("nobody", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	var verr *models.ValidationError
	if _, err := store.Register("", "a@example.com", "pw"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty username, got %v", err)
	}
	if _, err := store.Register("bob", "b@example.com", ""); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty password, got %v", err)
	}

	if _, err := store.Register("carol", "carol@example.com", "pw"); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	if _, err := store.Register("carol", "other@example.com", "pw"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for taken username, got %v", err)
	}
}

func TestGetByUsername(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	if _, err := store.Register("alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	user, err := store.GetByUsername("alice")
	if err != nil {
		t.Fatalf("failed to look up user: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("got wrong user %q", user.Username)
	}

	if _, err := store.GetByUsername("nobody"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	doomed, err := store.Register("doomed", "doomed@example.com", "pw")
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	bystander, err := store.Register("bystander", "bystander@example.com", "pw")
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	doomedPost := models.Post{AuthorID: doomed.ID, Text: "doomed's post"}
	if err := db.Create(&doomedPost).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	bystanderPost := models.Post{AuthorID: bystander.ID, Text: "bystander's post"}
	if err := db.Create(&bystanderPost).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	// A bystander comment on the doomed post, and a doomed comment elsewhere.
	onDoomedPost := models.Comment{AuthorID: bystander.ID, PostID: doomedPost.ID, Text: "on doomed post"}
	if err := db.Create(&onDoomedPost).Error; err != nil {
		t.Fatalf("failed to create comment: %v", err)
	}
	byDoomed := models.Comment{AuthorID: doomed.ID, PostID: bystanderPost.ID, Text: "by doomed"}
	if err := db.Create(&byDoomed).Error; err != nil {
		t.Fatalf("failed to create comment: %v", err)
	}

	// Follow edges in both directions.
	if err := db.Create(&models.Follow{AuthorID: doomed.ID, UserID: bystander.ID}).Error; err != nil {
		t.Fatalf("failed to create follow edge: %v", err)
	}
	if err := db.Create(&models.Follow{AuthorID: bystander.ID, UserID: doomed.ID}).Error; err != nil {
		t.Fatalf("failed to create follow edge: %v", err)
	}

	if err := store.DeleteUser(doomed.ID); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	if _, err := store.GetByUsername("doomed"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("deleted user should be gone, got %v", err)
	}

	var count int64
	db.Model(&models.Post{}).Where("author_id = ?", doomed.ID).Count(&count)
	if count != 0 {
		t.Fatalf("deleted user's posts should be gone, found %d", count)
	}
	db.Model(&models.Comment{}).Count(&count)
	if count != 0 {
		t.Fatalf("both the comments on and by the deleted user should be gone, found %d", count)
	}
	db.Model(&models.Follow{}).Count(&count)
	if count != 0 {
		t.Fatalf("deleted user's follow edges should be gone, found %d", count)
	}

	// The bystander and their post are untouched.
	if _, err := store.GetByUsername("bystander"); err != nil {
		t.Fatalf("bystander should survive: %v", err)
	}
	db.Model(&models.Post{}).Where("author_id = ?", bystander.ID).Count(&count)
	if count != 1 {
		t.Fatalf("bystander's post should survive, found %d", count)
	}

	if err := store.DeleteUser(doomed.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("deleting a deleted user should be ErrNotFound, got %v", err)
	}
}
