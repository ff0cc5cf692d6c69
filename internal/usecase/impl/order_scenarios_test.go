package impl

import (
	"context"
	"testing"

	"mlm/internal/domain/entity"
	domainerrors "mlm/internal/domain/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderScenarios(t *testing.T) {
	ctx := context.Background()

	// checkoutTwo places 2 units of a $10 / 5 point item against a stock of 5.
	checkoutTwo := func(t *testing.T) (*testEnv, *entity.Profile, *entity.Product, *entity.Order) {
		env := newTestEnv(t)
		buyer := env.affiliate(t, "Buyer", "")
		item := env.product(t, "item", "10", 5, "", 5)

		order, err := env.orders.Checkout(ctx, customer(buyer), checkoutInput(line(item, 2)))
		require.NoError(t, err)

		return env, buyer, item, order
	}

	t.Run("A checkout reserves", func(t *testing.T) {
		env, _, item, order := checkoutTwo(t)

		assert.True(t, decimal.NewFromInt(20).Equal(order.Subtotal))
		assert.Equal(t, int64(10), order.PointsEarned)
		stock := env.stock(t, item.ID)
		assert.Equal(t, 3, stock.Quantity)
		assert.Equal(t, 2, stock.ReservedQuantity)
	})

	t.Run("B approve confirms and credits points", func(t *testing.T) {
		env, buyer, item, order := checkoutTwo(t)

		result, err := env.orders.Approve(ctx, env.admin, order.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.OrderStatusApproved, result.Order.PaymentStatus)

		stock := env.stock(t, item.ID)
		assert.Equal(t, 3, stock.Quantity)
		assert.Equal(t, 0, stock.ReservedQuantity)

		standing, err := env.ranks.GetStanding(ctx, buyer.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), standing.CurrentPoints)
	})

	t.Run("C reject releases", func(t *testing.T) {
		env, _, item, order := checkoutTwo(t)

		result, err := env.orders.Reject(ctx, env.admin, order.ID, "")
		require.NoError(t, err)
		assert.Equal(t, entity.OrderStatusRejected, result.Order.PaymentStatus)
		assert.Nil(t, result.Order.AdminNotes)

		stock := env.stock(t, item.ID)
		assert.Equal(t, 5, stock.Quantity)
		assert.Equal(t, 0, stock.ReservedQuantity)
	})

	t.Run("D oversized checkout leaves nothing behind", func(t *testing.T) {
		env := newTestEnv(t)
		buyer := env.affiliate(t, "Buyer", "")
		item := env.product(t, "item", "10", 5, "", 5)

		order, err := env.orders.Checkout(ctx, customer(buyer), checkoutInput(line(item, 6)))
		assert.Nil(t, order)
		assertAppError(t, err, domainerrors.ErrOutOfStock)
		assert.Contains(t, err.Error(), item.Name)

		orders, err := env.orderRepo.List(ctx, entity.OrderFilter{})
		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.Equal(t, 5, env.stock(t, item.ID).Quantity)
	})

	t.Run("E gold pack promotes bronze buyer", func(t *testing.T) {
		env := newTestEnv(t)
		buyer := env.affiliate(t, "Buyer", "")
		require.Equal(t, entity.RankBronze, buyer.Rank)
		pack := env.product(t, "gold", "300", 100, "Gold pack", 1)

		order, err := env.orders.Checkout(ctx, customer(buyer), checkoutInput(line(pack, 1)))
		require.NoError(t, err)
		_, err = env.orders.Approve(ctx, env.admin, order.ID)
		require.NoError(t, err)

		standing, err := env.ranks.GetStanding(ctx, buyer.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.RankGold, standing.Rank)
	})
}
