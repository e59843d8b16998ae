package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Table provides the id-keyed row helpers shared by the record repositories.
type Table[T any] struct {
	db *gorm.DB
}

// NewTable binds a Table for model T to the provided GORM connection.
func NewTable[T any](db *gorm.DB) Table[T] {
	return Table[T]{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (t Table[T]) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return t.db
	}
	return t.db.WithContext(ctx)
}

// FindByID loads one row; a miss surfaces as gorm.ErrRecordNotFound.
func (t Table[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var row T
	if err := t.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (t Table[T]) Create(ctx context.Context, row *T) error {
	return t.DB(ctx).Create(row).Error
}

// UpdateColumns writes columns on the row identified by id, including zero
// values.
func (t Table[T]) UpdateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	return t.DB(ctx).Model(new(T)).Where("id = ?", id).Updates(columns).Error
}

// DeleteByID removes the row and reports whether one existed.
func (t Table[T]) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	res := t.DB(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
