package products

import (
	"context"

	"github.com/angelmondragon/records-backend/internal/repo"
	"github.com/angelmondragon/records-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wraps product persistence.
type Repository struct {
	table repo.Table[models.Product]
}

// NewRepository binds a product repository to GORM.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{table: repo.NewTable[models.Product](db)}
}

// List returns the catalogue ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	if err := r.table.DB(ctx).Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.table.FindByID(ctx, id)
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.table.Create(ctx, product)
}

// Replace overwrites every mutable column of the product.
func (r *Repository) Replace(ctx context.Context, product *models.Product) error {
	return r.table.UpdateColumns(ctx, product.ID, map[string]any{
		"name":  product.Name,
		"price": product.Price,
	})
}

// Delete removes the product and reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.table.DeleteByID(ctx, id)
}
