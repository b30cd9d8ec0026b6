package group

import (
	"errors"
	"strings"

	"github.com/postline/postline-server/cmd/models"
	"github.com/postline/postline-server/cmd/utils"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateGroup registers a new community. The slug is the group's
// reference key: it must be non-empty and globally unique, and is never
// rewritten afterwards.
func (s *Store) CreateGroup(title, slug, description string) (*models.Group, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &models.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(slug) == "" {
		return nil, &models.ValidationError{Field: "slug", Reason: "must not be empty"}
	}

	group := models.Group{
		Title:       title,
		Slug:        slug,
		Description: description,
	}
	if err := s.db.Create(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &models.ValidationError{Field: "slug", Reason: "is already in use"}
		}
		return nil, err
	}
	return &group, nil
}

func (s *Store) GetGroup(slug string) (*models.Group, error) {
	var group models.Group
	if err := s.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

// ListGroups returns one page of the group directory, ordered by title.
func (s *Store) ListGroups(page int) ([]models.Group, *utils.Page, error) {
	query := s.db.Model(&models.Group{})

	var groups []models.Group
	p, err := utils.Paginate(query, page, "title ASC, id ASC", &groups)
	if err != nil {
		return nil, nil, err
	}
	return groups, p, nil
}

// DeleteGroup removes a group. Dependent posts survive: their group
// reference is cleared, not cascaded.
func (s *Store) DeleteGroup(slug string) error {
	var group models.Group
	if err := s.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).
			Where("group_id = ?", group.ID).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
}
