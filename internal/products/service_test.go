package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/angelmondragon/records-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/records-backend/pkg/errors"
	"github.com/angelmondragon/records-backend/pkg/types"
	"github.com/angelmondragon/records-backend/pkg/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:products_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}))

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func input(name, price string) ProductInput {
	return ProductInput{
		Name:  types.NullableString{Valid: true, Value: &name},
		Price: types.NewDecimalInput(price),
	}
}

func TestCreateAndGetProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, input("krokumbush", "450"))
	require.NoError(t, err)
	assert.Equal(t, "450.00", created.Price)

	got, err := svc.GetProduct(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "krokumbush", got.Name)
	assert.Equal(t, "450.00", got.Price)
}

func TestCreateProductValidation(t *testing.T) {
	svc, conn := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), ProductInput{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	errs := typed.Details().(types.FieldErrors)
	assert.Equal(t, []string{validation.MsgRequired}, errs["name"])
	assert.Equal(t, []string{validation.MsgRequired}, errs["price"])

	_, err = svc.CreateProduct(context.Background(), input("cake", "1.234"))
	errs = pkgerrors.As(err).Details().(types.FieldErrors)
	assert.Equal(t, []string{"Ensure that there are no more than 2 decimal places."}, errs["price"])

	var count int64
	require.NoError(t, conn.Model(&models.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListProducts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	empty, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.CreateProduct(ctx, input("pavlova", "200"))
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, input("designed cake", "250.5"))
	require.NoError(t, err)

	list, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "designed cake", list[0].Name)
	assert.Equal(t, "250.50", list[0].Price)
}

func TestUpdateProductReplacesFields(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	created, err := svc.CreateProduct(ctx, input("pavlova", "200"))
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, created.ID.String(), input("pavlova xl", "320.75"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "320.75", updated.Price)

	var stored models.Product
	require.NoError(t, conn.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, "pavlova xl", stored.Name)
	assert.True(t, stored.Price.Equal(decimal.RequireFromString("320.75")))

	_, err = svc.UpdateProduct(ctx, created.ID.String(), ProductInput{Price: types.NewDecimalInput("1")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.NoError(t, conn.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, "pavlova xl", stored.Name)
}

func TestProductLookupErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetProduct(ctx, "")
	assert.Equal(t, validation.MsgIDParamMissing, pkgerrors.As(err).Message())

	_, err = svc.UpdateProduct(ctx, "abc", input("x", "1"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.GetProduct(ctx, uuid.NewString())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "Product not found", pkgerrors.As(err).Message())

	err = svc.DeleteProduct(ctx, uuid.NewString())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.CreateProduct(ctx, input("saint-honore", "250"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID.String()))
	_, err = svc.GetProduct(ctx, created.ID.String())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
