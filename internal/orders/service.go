package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/angelmondragon/records-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/records-backend/pkg/errors"
	"github.com/angelmondragon/records-backend/pkg/types"
	"github.com/angelmondragon/records-backend/pkg/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const msgNotFound = "Order not found"

// Service exposes order CRUD keyed by order id.
type Service interface {
	ListOrders(ctx context.Context) ([]OrderDTO, error)
	GetOrder(ctx context.Context, id string) (*OrderDTO, error)
	CreateOrder(ctx context.Context, input OrderInput) (*OrderDTO, error)
	UpdateOrder(ctx context.Context, id string, input OrderInput) (*OrderDTO, error)
	DeleteOrder(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

// NewService constructs an order service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListOrders(ctx context.Context) ([]OrderDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Internal(err)
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetOrder(ctx context.Context, id string) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) CreateOrder(ctx context.Context, input OrderInput) (*OrderDTO, error) {
	order := &models.Order{}
	if err := apply(order, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Internal(err)
	}
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) UpdateOrder(ctx context.Context, id string, input OrderInput) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(order, input); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, order); err != nil {
		return nil, pkgerrors.Internal(err)
	}
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) DeleteOrder(ctx context.Context, id string) error {
	order, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, order.ID)
	if err != nil {
		return pkgerrors.Internal(err)
	}
	if !deleted {
		return pkgerrors.NotFound(msgNotFound)
	}
	return nil
}

func (s *service) load(ctx context.Context, rawID string) (*models.Order, error) {
	id, err := validation.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(msgNotFound)
		}
		return nil, pkgerrors.Internal(err)
	}
	return order, nil
}

// apply validates a full order body and copies it onto order.
func apply(order *models.Order, input OrderInput) error {
	presence := types.FieldErrors{}
	rec := record{
		User:        validation.TakeString(presence, "user", input.User),
		PhoneNumber: validation.TakeString(presence, "phone_number", input.PhoneNumber),
		Email:       validation.TakeString(presence, "email", input.Email),
	}
	errs := validation.Override(validation.Struct(rec), presence)
	products := productList(errs, input.Products)
	validation.Decimal(errs, "price", input.Price, 10, 2)
	if !errs.Empty() {
		return validation.Failed(errs)
	}

	order.User = rec.User
	order.PhoneNumber = rec.PhoneNumber
	order.Email = rec.Email
	order.Products = products
	order.Price = input.Price.Value
	return nil
}

// productList accepts any JSON array. An omitted list becomes [].
func productList(errs types.FieldErrors, raw json.RawMessage) datatypes.JSON {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
		return datatypes.JSON("[]")
	case bytes.Equal(trimmed, []byte("null")):
		errs.Add("products", validation.MsgNull)
		return nil
	case trimmed[0] != '[':
		errs.Add("products", validation.MsgNotAList)
		return nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		errs.Add("products", validation.MsgNotAList)
		return nil
	}
	return datatypes.JSON(compact.Bytes())
}
