package feed

import (
	"errors"
	"strings"

	"github.com/postline/postline-server/cmd/models"
	"github.com/postline/postline-server/cmd/utils"
	"gorm.io/gorm"
)

// postOrder gives newest-first feeds a stable order when two posts share
// a creation timestamp.
const postOrder = "created_at DESC, id DESC"

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreatePost publishes a post for authorID. The creation timestamp is set
// by the storage layer and never updated afterwards.
func (s *Store) CreatePost(authorID uint, text string, groupID *uint, imagePath string) (*models.Post, error) {
	if groupID != nil {
		var group models.Group
		if err := s.db.First(&group, *groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.ErrNotFound
			}
			return nil, err
		}
	}

	post := models.Post{
		AuthorID:  authorID,
		GroupID:   groupID,
		Text:      text,
		ImagePath: imagePath,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}

	if err := s.db.Preload("Author").Preload("Group").First(&post, post.ID).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// EditPost rewrites a post's text, group and (optionally) image on behalf
// of its author. Anyone else gets ErrForbidden. The creation timestamp is
// left untouched.
func (s *Store) EditPost(requesterID, postID uint, text string, groupID *uint, imagePath string) (*models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	if post.AuthorID != requesterID {
		return nil, models.ErrForbidden
	}
	if strings.TrimSpace(text) == "" {
		return nil, &models.ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if groupID != nil {
		var group models.Group
		if err := s.db.First(&group, *groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.ErrNotFound
			}
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"text":     text,
		"group_id": groupID,
	}
	if imagePath != "" {
		updates["image_path"] = imagePath
	}
	if err := s.db.Model(&post).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := s.db.Preload("Author").Preload("Group").First(&post, post.ID).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPost loads a single post with its author, group and comments
// (newest first).
func (s *Store) GetPost(postID uint) (*models.Post, error) {
	var post models.Post
	err := s.db.
		Preload("Author").
		Preload("Group").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC").Preload("Author")
		}).
		First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post and, first, every comment attached to it.
// Only the author may delete their post.
func (s *Store) DeletePost(requesterID, postID uint) error {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrNotFound
		}
		return err
	}
	if post.AuthorID != requesterID {
		return models.ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}

// GlobalFeed returns one page of all posts, newest first.
func (s *Store) GlobalFeed(page int) ([]models.Post, *utils.Page, error) {
	query := s.db.Model(&models.Post{}).Preload("Author").Preload("Group")

	var posts []models.Post
	p, err := utils.Paginate(query, page, postOrder, &posts)
	if err != nil {
		return nil, nil, err
	}
	return posts, p, nil
}

// GroupFeed returns one page of the posts published into the group with
// the given slug, newest first. Unknown slugs yield ErrNotFound.
func (s *Store) GroupFeed(slug string, page int) (*models.Group, []models.Post, *utils.Page, error) {
	var group models.Group
	if err := s.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, models.ErrNotFound
		}
		return nil, nil, nil, err
	}

	query := s.db.Model(&models.Post{}).Where("group_id = ?", group.ID).Preload("Author")

	var posts []models.Post
	p, err := utils.Paginate(query, page, postOrder, &posts)
	if err != nil {
		return nil, nil, nil, err
	}
	return &group, posts, p, nil
}

// ProfileFeed returns one page of the posts authored by username, newest
// first. Unknown usernames yield ErrNotFound.
func (s *Store) ProfileFeed(username string, page int) (*models.User, []models.Post, *utils.Page, error) {
	var author models.User
	if err := s.db.Where("username = ?", username).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, models.ErrNotFound
		}
		return nil, nil, nil, err
	}

	query := s.db.Model(&models.Post{}).Where("author_id = ?", author.ID).Preload("Group")

	var posts []models.Post
	p, err := utils.Paginate(query, page, postOrder, &posts)
	if err != nil {
		return nil, nil, nil, err
	}
	return &author, posts, p, nil
}

// FollowingFeed returns one page of the posts whose authors requesterID
// follows, newest first. Following nobody is an empty page, not an error.
func (s *Store) FollowingFeed(requesterID uint, page int) ([]models.Post, *utils.Page, error) {
	followed := s.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", requesterID)

	query := s.db.Model(&models.Post{}).
		Where("author_id IN (?)", followed).
		Preload("Author").
		Preload("Group")

	var posts []models.Post
	p, err := utils.Paginate(query, page, postOrder, &posts)
	if err != nil {
		return nil, nil, err
	}
	return posts, p, nil
}
