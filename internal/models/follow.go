package models

import (
	"time"
)

// Follow represents a directed follow edge: Username1 follows
// Username2. The composite primary key enforces at most one edge per
// ordered pair.
type Follow struct {
	Username1 string    `gorm:"primaryKey;type:varchar(20);column:username1"`
	Username2 string    `gorm:"primaryKey;type:varchar(20);column:username2"`
	CreatedAt time.Time `gorm:"not null;column:created"`

	// Relationships
	Follower *User `gorm:"foreignKey:Username1;references:Username;constraint:OnDelete:CASCADE"`
	Followed *User `gorm:"foreignKey:Username2;references:Username;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "following"
}
