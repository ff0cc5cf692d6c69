package impl

import (
	"context"
	"testing"

	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"
	"mlm/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_CreateProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	product, err := env.catalog.CreateProduct(ctx, env.admin, &usecase.ProductInput{
		SKU:      " starter-kit ",
		Name:     "Starter kit",
		Price:    decimal.RequireFromString("49.90"),
		Points:   20,
		IsPack:   true,
		PackRank: "Paquete Oro",
	})
	require.NoError(t, err)
	assert.Equal(t, "STARTER-KIT", product.SKU)
	assert.Equal(t, "GOLD", product.PackRank)
	assert.True(t, product.IsActive)

	got, err := env.catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, got.Name)

	products, err := env.catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCatalogService_CreateProduct_Rejections(t *testing.T) {
	env := newTestEnv(t)
	env.product(t, "taken", "1.00", 0, "", 0)

	tests := []struct {
		name  string
		actor entity.Actor
		input usecase.ProductInput
		want  domainerrors.AppError
	}{
		{
			name:  "customer",
			actor: entity.Actor{UserID: uuid.New(), Role: entity.RoleCustomer},
			input: usecase.ProductInput{SKU: "X", Name: "X"},
			want:  domainerrors.ErrUnauthorized,
		},
		{
			name:  "negative price",
			actor: env.admin,
			input: usecase.ProductInput{SKU: "X", Name: "X", Price: decimal.NewFromInt(-1)},
			want:  domainerrors.ErrValidationFailed,
		},
		{
			name:  "negative points",
			actor: env.admin,
			input: usecase.ProductInput{SKU: "X", Name: "X", Points: -5},
			want:  domainerrors.ErrValidationFailed,
		},
		{
			name:  "unknown pack rank",
			actor: env.admin,
			input: usecase.ProductInput{SKU: "X", Name: "X", IsPack: true, PackRank: "Emerald"},
			want:  domainerrors.ErrUnknownRank,
		},
		{
			name:  "duplicate sku",
			actor: env.admin,
			input: usecase.ProductInput{SKU: "Taken", Name: "Again"},
			want:  domainerrors.ErrDuplicateSKU,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.catalog.CreateProduct(context.Background(), tt.actor, &tt.input)
			assertAppError(t, err, tt.want)
		})
	}
}

func TestCatalogService_Warehouses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.CreateWarehouse(ctx, env.admin, &usecase.WarehouseInput{Code: "Central", Name: "Again"})
	assertAppError(t, err, domainerrors.ErrDuplicateWarehouseCode)

	_, err = env.catalog.CreateWarehouse(ctx, env.admin, &usecase.WarehouseInput{Code: "north", Name: "North"})
	require.NoError(t, err)

	warehouses, err := env.catalog.ListWarehouses(ctx, env.admin)
	require.NoError(t, err)
	assert.Len(t, warehouses, 2)

	_, err = env.catalog.ListWarehouses(ctx, entity.Actor{UserID: uuid.New()})
	assertAppError(t, err, domainerrors.ErrUnauthorized)
}
