package user

import (
	"errors"
	"strings"

	"github.com/postline/postline-server/cmd/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown
// username or a wrong password; callers must not learn which.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Register creates a user with a bcrypt-hashed password. Username and
// email must be non-empty and unique.
func (s *Store) Register(username, email, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, &models.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if strings.TrimSpace(email) == "" {
		return nil, &models.ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if password == "" {
		return nil, &models.ValidationError{Field: "password", Reason: "must not be empty"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &models.ValidationError{Field: "username or email", Reason: "is already taken"}
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate checks a username/password pair and returns the user on
// success.
func (s *Store) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *Store) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user and everything that requires them: their
// posts, the comments on those posts, the comments they wrote elsewhere,
// and their follow edges in both directions. This is destructive and
// non-recoverable.
func (s *Store) DeleteUser(userID uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		ownPosts := tx.Model(&models.Post{}).Select("id").Where("author_id = ?", userID)
		if err := tx.Where("author_id = ? OR post_id IN (?)", userID, ownPosts).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ? OR user_id = ?", userID, userID).
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}
