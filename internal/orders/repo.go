package orders

import (
	"context"

	"github.com/angelmondragon/records-backend/internal/repo"
	"github.com/angelmondragon/records-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	List(ctx context.Context) ([]models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Replace(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	table repo.Table[models.Order]
}

// NewRepository binds the orders repository to GORM.
func NewRepository(db *gorm.DB) Repository {
	return &repository{table: repo.NewTable[models.Order](db)}
}

func (r *repository) List(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	if err := r.table.DB(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.table.FindByID(ctx, id)
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.table.Create(ctx, order)
}

func (r *repository) Replace(ctx context.Context, order *models.Order) error {
	return r.table.UpdateColumns(ctx, order.ID, map[string]any{
		"user":         order.User,
		"phone_number": order.PhoneNumber,
		"email":        order.Email,
		"products":     order.Products,
		"price":        order.Price,
	})
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.table.DeleteByID(ctx, id)
}
