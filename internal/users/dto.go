package users

import (
	"time"

	"github.com/angelmondragon/records-backend/pkg/db/models"
	"github.com/angelmondragon/records-backend/pkg/types"
	"github.com/google/uuid"
)

// UserDTO is the user payload returned to clients.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	AuthToken *string   `json:"auth_token"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserInput is the body accepted by POST /users/add.
type CreateUserInput struct {
	Username  types.NullableString `json:"username"`
	Email     types.NullableString `json:"email"`
	Password  types.NullableString `json:"password"`
	AuthToken types.NullableString `json:"auth_token"`
}

// UpdateUserInput carries the fields a caller may change. Absent fields keep
// their stored value; email is never taken from the body.
type UpdateUserInput struct {
	Username  types.NullableString `json:"username"`
	Password  types.NullableString `json:"password"`
	AuthToken types.NullableString `json:"auth_token"`
}

// record is the merged user checked before any write.
type record struct {
	Username  string  `json:"username" validate:"notblank,max=150"`
	Email     string  `json:"email" validate:"notblank,max=254,email"`
	Password  string  `json:"password" validate:"notblank,max=128"`
	AuthToken *string `json:"auth_token" validate:"omitempty,max=255"`
}

// FromModel maps a stored user to its DTO.
func FromModel(m *models.User) UserDTO {
	return UserDTO{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		Password:  m.Password,
		AuthToken: m.AuthToken,
		CreatedAt: m.CreatedAt.UTC(),
	}
}
