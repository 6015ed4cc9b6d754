package models

import (
	"time"
)

// Comment represents a comment on a post.
type Comment struct {
	CommentID int64     `gorm:"primaryKey;autoIncrement;column:commentid"`
	Owner     string    `gorm:"type:varchar(20);not null;index;column:owner"`
	PostID    int64     `gorm:"not null;index;column:postid"`
	Text      string    `gorm:"type:varchar(1024);not null;column:text"`
	CreatedAt time.Time `gorm:"not null;column:created"`

	// Relationships
	User *User `gorm:"foreignKey:Owner;references:Username;constraint:OnDelete:CASCADE"`
	Post *Post `gorm:"foreignKey:PostID;references:PostID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
