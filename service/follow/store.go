package follow

import (
	"errors"

	"github.com/postline/postline-server/cmd/models"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Follow creates the user→author edge. Following yourself and following
// someone you already follow are both no-ops: at most one edge ever
// exists and neither case is an error. A concurrent writer losing the
// uniqueness race is folded into "already following".
func (s *Store) Follow(userID, authorID uint) error {
	if userID == authorID {
		return nil
	}

	var existing models.Follow
	err := s.db.Where("author_id = ? AND user_id = ?", authorID, userID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	edge := models.Follow{AuthorID: authorID, UserID: userID}
	if err := s.db.Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

// Unfollow deletes the user→author edge if present. A missing edge is a
// no-op, never an error.
func (s *Store) Unfollow(userID, authorID uint) error {
	return s.db.Where("author_id = ? AND user_id = ?", authorID, userID).Delete(&models.Follow{}).Error
}

// IsFollowing reports whether userID follows authorID. An
// unauthenticated requester (userID 0) is never following anyone and
// short-circuits without touching storage.
func (s *Store) IsFollowing(userID, authorID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}

	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("author_id = ? AND user_id = ?", authorID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
