package logins

import (
	"context"

	"github.com/angelmondragon/records-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists login audit entries.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a logins repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns entries newest first, optionally restricted to one email.
func (r *Repository) List(ctx context.Context, email *string) ([]models.Login, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if email != nil {
		query = query.Where("email = ?", *email)
	}
	var rows []models.Login
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Create(ctx context.Context, login *models.Login) error {
	return r.db.WithContext(ctx).Create(login).Error
}

// DeleteByEmail removes every entry for email and returns how many went.
func (r *Repository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	res := r.db.WithContext(ctx).Where("email = ?", email).Delete(&models.Login{})
	return res.RowsAffected, res.Error
}
