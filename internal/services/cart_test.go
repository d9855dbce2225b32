package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizza_back_end/internal/apperr"
	"pizza_back_end/internal/database"
	"pizza_back_end/internal/models"
)

func TestCart_AddRemoveArithmetic(t *testing.T) {
	env := newTestEnv(t)
	env.registered(t)
	ctx := context.Background()

	cart, err := env.carts.AddItem(ctx, testEmail, "veg pizza")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Veg Pizza": 1}, cart.Items)
	assert.Equal(t, 100.0, cart.TotalPrice)

	cart, err = env.carts.AddItem(ctx, testEmail, "veg pizza")
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items["Veg Pizza"])
	assert.Equal(t, 200.0, cart.TotalPrice)

	cart, err = env.carts.RemoveItem(ctx, testEmail, "Veg Pizza")
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items["Veg Pizza"])
	assert.Equal(t, 100.0, cart.TotalPrice)

	cart, err = env.carts.RemoveItem(ctx, testEmail, "VEG PIZZA")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalPrice)

	stored, err := env.carts.GetCart(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, cart, stored)
}

func TestCart_TotalFollowsMenu(t *testing.T) {
	env := newTestEnv(t)
	env.registered(t)
	ctx := context.Background()

	for _, item := range []string{"Veg Pizza", "Tandoori Paneer", "veggie delight", "Tandoori Paneer"} {
		_, err := env.carts.AddItem(ctx, testEmail, item)
		require.NoError(t, err)
	}
	cart, err := env.carts.GetCart(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, 650.0, cart.TotalPrice)
	assert.Equal(t, map[string]int{"Veg Pizza": 1, "Tandoori Paneer": 2, "Veggie Delight": 1}, cart.Items)
}

func TestCart_UnknownItem(t *testing.T) {
	env := newTestEnv(t)
	env.registered(t)
	ctx := context.Background()

	_, err := env.carts.AddItem(ctx, testEmail, "Pineapple Pizza")
	assert.ErrorIs(t, err, apperr.ErrUnknownItem)
	_, err = env.carts.RemoveItem(ctx, testEmail, "Pineapple Pizza")
	assert.ErrorIs(t, err, apperr.ErrUnknownItem)

	_, err = env.carts.GetCart(ctx, testEmail)
	assert.ErrorIs(t, err, apperr.ErrCartNotFound, "no cart created for an unknown item")
}

func TestCart_RemoveMissingLeavesCartUnmutated(t *testing.T) {
	env := newTestEnv(t)
	env.registered(t)
	ctx := context.Background()

	_, err := env.carts.RemoveItem(ctx, testEmail, "Veg Pizza")
	assert.ErrorIs(t, err, apperr.ErrCartNotFound)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	before, err := env.carts.AddItem(ctx, testEmail, "Veg Pizza")
	require.NoError(t, err)

	_, err = env.carts.RemoveItem(ctx, testEmail, "Tandoori Paneer")
	assert.ErrorIs(t, err, apperr.ErrItemNotInCart)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	after, err := env.carts.GetCart(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCart_ConcurrentAddsLoseNothing(t *testing.T) {
	env := newTestEnv(t)
	env.registered(t)
	ctx := context.Background()

	const n = 40
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.carts.AddItem(ctx, testEmail, "Veggie Delight"); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	cart, err := env.carts.GetCart(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, n, ok)
	assert.Equal(t, ok, cart.Items["Veggie Delight"])
	assert.Equal(t, float64(ok)*150, cart.TotalPrice)
}

func TestCart_ClearCart(t *testing.T) {
	env := newTestEnv(t)
	env.registered(t)
	ctx := context.Background()

	assert.ErrorIs(t, env.carts.ClearCart(ctx, testEmail), apperr.ErrCartNotFound)

	_, err := env.carts.AddItem(ctx, testEmail, "Veg Pizza")
	require.NoError(t, err)
	require.NoError(t, env.carts.ClearCart(ctx, testEmail))

	var cart models.Cart
	assert.ErrorIs(t, env.store.Read(ctx, database.Orders, testEmail, &cart), apperr.ErrNotFound)
}

func TestCheckout_Success(t *testing.T) {
	env := newTestEnv(t)
	env.registered(t)
	ctx := context.Background()

	_, err := env.carts.AddItem(ctx, testEmail, "Veg Pizza")
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, testEmail, "Veg Pizza")
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, testEmail, "Tandoori Paneer")
	require.NoError(t, err)

	receipt, err := env.carts.Checkout(ctx, testEmail)
	require.NoError(t, err)

	require.Len(t, env.gateway.requests, 1)
	assert.Equal(t, ChargeRequest{Email: testEmail, Amount: 400}, env.gateway.requests[0])

	assert.Equal(t, "pi_test", receipt.PaymentID)
	assert.Equal(t, 400.0, receipt.Total)
	assert.Equal(t, "usd", receipt.Currency)
	assert.Equal(t, env.clock.Now(), receipt.PaidAt)
	assert.Equal(t, []models.ReceiptLine{
		{Name: "Tandoori Paneer", Quantity: 1, UnitPrice: 200, LineTotal: 200},
		{Name: "Veg Pizza", Quantity: 2, UnitPrice: 100, LineTotal: 200},
	}, receipt.Lines)
	assert.Equal(t, 1, env.notifier.count())

	cart, err := env.carts.GetCart(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, 400.0, cart.TotalPrice, "cart is kept after checkout")
}

func TestCheckout_DeclineLeavesCartIntact(t *testing.T) {
	env := newTestEnv(t)
	env.registered(t)
	ctx := context.Background()
	env.gateway.err = errors.Join(ErrDeclined, errors.New("card_declined"))

	before, err := env.carts.AddItem(ctx, testEmail, "Veggie Delight")
	require.NoError(t, err)

	_, err = env.carts.Checkout(ctx, testEmail)
	assert.ErrorIs(t, err, apperr.ErrPaymentDeclined)
	assert.Equal(t, 0, env.notifier.count())

	after, err := env.carts.GetCart(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCheckout_NoCartOrEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	env.registered(t)
	ctx := context.Background()

	_, err := env.carts.Checkout(ctx, testEmail)
	assert.ErrorIs(t, err, apperr.ErrCartNotFound)

	_, err = env.carts.AddItem(ctx, testEmail, "Veg Pizza")
	require.NoError(t, err)
	_, err = env.carts.RemoveItem(ctx, testEmail, "Veg Pizza")
	require.NoError(t, err)

	_, err = env.carts.Checkout(ctx, testEmail)
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)
	assert.Empty(t, env.gateway.requests)
}
