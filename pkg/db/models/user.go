package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account record addressed by its email.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Username  string    `gorm:"column:username;type:varchar(150);not null;uniqueIndex:idx_users_username"`
	Email     string    `gorm:"column:email;type:varchar(254);not null;uniqueIndex:idx_users_email"`
	Password  string    `gorm:"column:password;type:varchar(128);not null"`
	AuthToken *string   `gorm:"column:auth_token;type:varchar(255)"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
