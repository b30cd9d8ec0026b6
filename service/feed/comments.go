package feed

import (
	"errors"

	"github.com/postline/postline-server/cmd/models"
	"github.com/postline/postline-server/cmd/utils"
	"gorm.io/gorm"
)

// AddComment attaches a comment by authorID to a post. Empty text fails
// with a ValidationError, unknown posts with ErrNotFound. The handler
// layer guarantees authorID belongs to an authenticated user.
func (s *Store) AddComment(authorID, postID uint, text string) (*models.Comment, error) {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	comment := models.Comment{
		AuthorID: authorID,
		PostID:   postID,
		Text:     text,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	if err := s.db.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Comments returns one page of a post's comments, newest first.
func (s *Store) Comments(postID uint, page int) ([]models.Comment, *utils.Page, error) {
	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, models.ErrNotFound
		}
		return nil, nil, err
	}

	query := s.db.Model(&models.Comment{}).Where("post_id = ?", postID).Preload("Author")

	var comments []models.Comment
	p, err := utils.Paginate(query, page, "created_at DESC, id DESC", &comments)
	if err != nil {
		return nil, nil, err
	}
	return comments, p, nil
}
