package products

import (
	"github.com/angelmondragon/records-backend/pkg/db/models"
	"github.com/angelmondragon/records-backend/pkg/types"
	"github.com/google/uuid"
)

// ProductDTO is the catalogue entry returned to clients. Price always carries
// two decimal places.
type ProductDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price string    `json:"price"`
}

// ProductInput is the full product body accepted by add and update.
type ProductInput struct {
	Name  types.NullableString `json:"name"`
	Price types.DecimalInput   `json:"price"`
}

type record struct {
	Name string `json:"name" validate:"notblank,max=200"`
}

// FromModel maps a stored product to its DTO.
func FromModel(m *models.Product) ProductDTO {
	return ProductDTO{
		ID:    m.ID,
		Name:  m.Name,
		Price: m.Price.StringFixed(2),
	}
}
