package orders

import (
	"encoding/json"

	"github.com/angelmondragon/records-backend/pkg/db/models"
	"github.com/angelmondragon/records-backend/pkg/types"
	"github.com/google/uuid"
)

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID          uuid.UUID       `json:"id"`
	User        string          `json:"user"`
	PhoneNumber string          `json:"phone_number"`
	Email       string          `json:"email"`
	Products    json.RawMessage `json:"products"`
	Price       string          `json:"price"`
}

// OrderInput is the full order body accepted by add and update. Products is
// kept raw so any JSON array round-trips untouched.
type OrderInput struct {
	User        types.NullableString `json:"user"`
	PhoneNumber types.NullableString `json:"phone_number"`
	Email       types.NullableString `json:"email"`
	Products    json.RawMessage      `json:"products"`
	Price       types.DecimalInput   `json:"price"`
}

type record struct {
	User        string `json:"user" validate:"notblank,max=200"`
	PhoneNumber string `json:"phone_number" validate:"notblank,max=30"`
	Email       string `json:"email" validate:"notblank,max=200,email"`
}

// FromModel maps a stored order to its DTO.
func FromModel(m *models.Order) OrderDTO {
	products := json.RawMessage(m.Products)
	if len(products) == 0 {
		products = json.RawMessage("[]")
	}
	return OrderDTO{
		ID:          m.ID,
		User:        m.User,
		PhoneNumber: m.PhoneNumber,
		Email:       m.Email,
		Products:    products,
		Price:       m.Price.StringFixed(2),
	}
}
