package models

import (
	"time"
)

// Like represents a user's like on a post. The composite primary key
// is the uniqueness backstop: at most one row per (owner, post).
type Like struct {
	Owner     string    `gorm:"primaryKey;type:varchar(20);column:owner"`
	PostID    int64     `gorm:"primaryKey;column:postid"`
	CreatedAt time.Time `gorm:"not null;column:created"`

	// Relationships
	User *User `gorm:"foreignKey:Owner;references:Username;constraint:OnDelete:CASCADE"`
	Post *Post `gorm:"foreignKey:PostID;references:PostID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Like
func (Like) TableName() string {
	return "likes"
}
