package follow

import (
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

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user %s: %v", username, err)
	}
	return user
}

func edgeCount(t *testing.T, db *gorm.DB) int64 {
	var count int64
	if err := db.Model(&models.Follow{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count follow edges: %v", err)
	}
	return count
}

func TestFollowIdempotent(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	follower := createTestUser(t, db, "follower")
	author := createTestUser(t, db, "author")

	if err := store.Follow(follower.ID, author.ID); err != nil {
		t.Fatalf("first follow failed: %v", err)
	}
	if err := store.Follow(follower.ID, author.ID); err != nil {
		t.Fatalf("repeat follow must be a no-op, got %v", err)
	}

	if count := edgeCount(t, db); count != 1 {
		t.Fatalf("expected exactly one follow edge, got %d", count)
	}
}

func TestSelfFollowIsNoop(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	user := createTestUser(t, db, "narcissus")

	if err := store.Follow(user.ID, user.ID); err != nil {
		t.Fatalf("self-follow must not error, got %v", err)
	}
	if count := edgeCount(t, db); count != 0 {
		t.Fatalf("self-follow must not create an edge, got %d", count)
	}
}

func TestUnfollowIdempotent(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	follower := createTestUser(t, db, "follower")
	author := createTestUser(t, db, "author")

	// Unfollowing someone you never followed is fine.
	if err := store.Unfollow(follower.ID, author.ID); err != nil {
		t.Fatalf("unfollow of missing edge must not error, got %v", err)
	}

	if err := store.Follow(follower.ID, author.ID); err != nil {
		t.Fatalf("follow failed: %v", err)
	}
	if err := store.Unfollow(follower.ID, author.ID); err != nil {
		t.Fatalf("unfollow failed: %v", err)
	}
	if err := store.Unfollow(follower.ID, author.ID); err != nil {
		t.Fatalf("repeat unfollow must not error, got %v", err)
	}

	if count := edgeCount(t, db); count != 0 {
		t.Fatalf("expected zero follow edges, got %d", count)
	}
}

func TestFollowAfterUnfollow(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	follower := createTestUser(t, db, "follower")
	author := createTestUser(t, db, "author")

	if err := store.Follow(follower.ID, author.ID); err != nil {
		t.Fatalf("follow failed: %v", err)
	}
	if err := store.Unfollow(follower.ID, author.ID); err != nil {
		t.Fatalf("unfollow failed: %v", err)
	}
	if err := store.Follow(follower.ID, author.ID); err != nil {
		t.Fatalf("refollow failed: %v", err)
	}

	if count := edgeCount(t, db); count != 1 {
		t.Fatalf("expected one edge after refollow, got %d", count)
	}
}

func TestIsFollowing(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	follower := createTestUser(t, db, "follower")
	author := createTestUser(t, db, "author")
	stranger := createTestUser(t, db, "stranger")

	if err := store.Follow(follower.ID, author.ID); err != nil {
		t.Fatalf("follow failed: %v", err)
	}

	following, err := store.IsFollowing(follower.ID, author.ID)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if !following {
		t.Fatal("expected follower to be following author")
	}

	following, err = store.IsFollowing(stranger.ID, author.ID)
	if err != nil {
		t.Fatalf("IsFollowing failed: %v", err)
	}
	if following {
		t.Fatal("stranger should not be following author")
	}

	// An unauthenticated requester is never following anyone.
	following, err = store.IsFollowing(0, author.ID)
	if err != nil {
		t.Fatalf("IsFollowing for anonymous requester failed: %v", err)
	}
	if following {
		t.Fatal("anonymous requester must never be following")
	}
}
