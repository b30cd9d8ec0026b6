package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Group struct {
	gorm.Model
	Title       string `gorm:"column:title;size:200;not null" json:"title"`
	Slug        string `gorm:"column:slug;size:250;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"column:description;type:text" json:"description"`

	Posts []Post `gorm:"foreignKey:GroupID" json:"posts,omitempty"`
}

type Post struct {
	gorm.Model
	AuthorID  uint   `gorm:"column:author_id;not null;index" json:"author_id"`
	GroupID   *uint  `gorm:"column:group_id;index" json:"group_id,omitempty"`
	Text      string `gorm:"column:text;type:text;not null" json:"text"`
	ImagePath string `gorm:"column:image_path;size:255" json:"image_path,omitempty"`

	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

// BeforeCreate keeps the required-field rules at the persistence boundary
// so they hold for every writer, not just the HTTP handlers.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(p.Text) == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if p.AuthorID == 0 {
		return &ValidationError{Field: "author", Reason: "is required"}
	}
	return nil
}

type Comment struct {
	gorm.Model
	AuthorID uint   `gorm:"column:author_id;not null;index" json:"author_id"`
	PostID   uint   `gorm:"column:post_id;not null;index" json:"post_id"`
	Text     string `gorm:"column:text;type:text;not null" json:"text"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(c.Text) == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if c.AuthorID == 0 {
		return &ValidationError{Field: "author", Reason: "is required"}
	}
	if c.PostID == 0 {
		return &ValidationError{Field: "post", Reason: "is required"}
	}
	return nil
}

// Follow is a directed edge: User follows Author. It deliberately does not
// embed gorm.Model — a soft-deleted edge would keep occupying the
// (author_id, user_id) unique index and block a later refollow.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"column:author_id;not null;index;uniqueIndex:idx_author_follower" json:"author_id"`
	UserID    uint      `gorm:"column:user_id;not null;index;uniqueIndex:idx_author_follower" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
