package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Login is an append-only audit entry for a sign-in.
type Login struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Username  string    `gorm:"column:username;type:varchar(150);not null"`
	Email     string    `gorm:"column:email;type:varchar(254);not null;index:idx_logins_email"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime;index:idx_logins_created_at"`
}

func (l *Login) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
