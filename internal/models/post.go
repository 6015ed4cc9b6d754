package models

import (
	"time"
)

// Post represents a photo post. Filename is the generated basename of
// the stored image, relative to the upload root.
type Post struct {
	PostID    int64     `gorm:"primaryKey;autoIncrement;column:postid"`
	Owner     string    `gorm:"type:varchar(20);not null;index;column:owner"`
	Filename  string    `gorm:"type:varchar(64);not null;column:filename"`
	CreatedAt time.Time `gorm:"not null;column:created"`

	// Relationships
	User *User `gorm:"foreignKey:Owner;references:Username;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}
