package logins

import (
	"time"

	"github.com/angelmondragon/records-backend/pkg/db/models"
	"github.com/angelmondragon/records-backend/pkg/types"
	"github.com/google/uuid"
)

// LoginDTO is the login audit entry returned to clients.
type LoginDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateLoginInput is the body accepted by POST /logins/add.
type CreateLoginInput struct {
	Username types.NullableString `json:"username"`
	Email    types.NullableString `json:"email"`
}

type record struct {
	Username string `json:"username" validate:"notblank,max=150"`
	Email    string `json:"email" validate:"notblank,max=254,email"`
}

func fromModel(m *models.Login) LoginDTO {
	return LoginDTO{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		CreatedAt: m.CreatedAt.UTC(),
	}
}
