package models

import (
	"time"
)

// User represents a registered account. The username is the natural
// primary key and is matched case-sensitively everywhere.
type User struct {
	Username  string    `gorm:"primaryKey;type:varchar(20);column:username"`
	Password  string    `gorm:"type:varchar(256);not null;column:password"`
	Fullname  string    `gorm:"type:varchar(40);not null;column:fullname"`
	Email     string    `gorm:"type:varchar(40);not null;column:email"`
	Filename  string    `gorm:"type:varchar(64);not null;column:filename"`
	CreatedAt time.Time `gorm:"not null;column:created"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
