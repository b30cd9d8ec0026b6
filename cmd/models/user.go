package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"column:username;size:150;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`
	Bio          string `gorm:"column:bio;type:text" json:"bio,omitempty"`
	AvatarPath   string `gorm:"column:avatar_path;size:255" json:"avatar_path,omitempty"`

	Posts    []Post    `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
	Comments []Comment `gorm:"foreignKey:AuthorID" json:"comments,omitempty"`
}
