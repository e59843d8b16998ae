package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/records-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/records-backend/pkg/errors"
	"github.com/angelmondragon/records-backend/pkg/types"
	"github.com/angelmondragon/records-backend/pkg/validation"
	"gorm.io/gorm"
)

const msgNotFound = "Product not found"

// Service exposes catalogue CRUD keyed by product id.
type Service interface {
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id string) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id string, input ProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id string) error
}

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Internal(err)
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	product := &models.Product{}
	if err := apply(product, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Internal(err)
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, id string, input ProductInput) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(product, input); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, product); err != nil {
		return nil, pkgerrors.Internal(err)
	}
	dto := FromModel(product)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, product.ID)
	if err != nil {
		return pkgerrors.Internal(err)
	}
	if !deleted {
		return pkgerrors.NotFound(msgNotFound)
	}
	return nil
}

func (s *service) load(ctx context.Context, rawID string) (*models.Product, error) {
	id, err := validation.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(msgNotFound)
		}
		return nil, pkgerrors.Internal(err)
	}
	return product, nil
}

// apply validates the full input and copies it onto product.
func apply(product *models.Product, input ProductInput) error {
	presence := types.FieldErrors{}
	rec := record{Name: validation.TakeString(presence, "name", input.Name)}
	errs := validation.Override(validation.Struct(rec), presence)
	validation.Decimal(errs, "price", input.Price, 10, 2)
	if !errs.Empty() {
		return validation.Failed(errs)
	}
	product.Name = rec.Name
	product.Price = input.Price.Value
	return nil
}
