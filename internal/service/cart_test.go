package service

import (
	"context"
	"testing"

	"checkout-engine/internal/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestResolveMintsGuestToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cart, token, err := e.carts.Resolve(ctx, CartIdentity{})
	require.NoError(t, err)
	require.Len(t, token, guestTokenBytes*2, "token is hex encoded")

	// presenting the token again must land on the same cart
	again, minted, err := e.carts.Resolve(ctx, CartIdentity{GuestToken: token})
	require.NoError(t, err)
	require.Empty(t, minted)
	require.Equal(t, cart.ID, again.ID)
}

func TestResolveUnknownTokenStartsFresh(t *testing.T) {
	e := newEnv(t)

	cart, token, err := e.carts.Resolve(context.Background(), CartIdentity{GuestToken: "stale"})
	require.NoError(t, err)
	require.NotEmpty(t, token, "an unknown token gets a replacement")
	require.NotEqual(t, "stale", token)
	require.NotZero(t, cart.ID)
}

func TestResolveIsStablePerUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, _, err := e.carts.Resolve(ctx, CartIdentity{UserID: "user-1"})
	require.NoError(t, err)
	second, _, err := e.carts.Resolve(ctx, CartIdentity{UserID: "user-1"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	other, _, err := e.carts.Resolve(ctx, CartIdentity{UserID: "user-2"})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, other.ID)
}

func TestAddItemValidatesProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cart := e.cartFor(t, "user-1")

	err := e.carts.AddItem(ctx, cart.ID, 999, 1)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	retired := e.createProduct(t, "Retired Tee", "10.00", 10, 0)
	require.NoError(t, e.db.Model(retired).UpdateColumn("active", false).Error)
	err = e.carts.AddItem(ctx, cart.ID, retired.ID, 1)
	require.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	tee := e.createProduct(t, "Classic Tee", "10.00", 10, 0)
	err = e.carts.AddItem(ctx, cart.ID, tee.ID, 0)
	require.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestGetSummaryUsesLivePrices(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tee := e.createProduct(t, "Classic Tee", "10.00", 10, 0)
	cart := e.cartFor(t, "user-1")
	e.addItem(t, cart.ID, tee.ID, 2)

	require.NoError(t, e.db.Model(tee).
		UpdateColumn("price", decimal.RequireFromString("12.50")).Error)

	summary, err := e.carts.GetSummary(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	require.Equal(t, 2, summary.ItemCount)
	require.True(t, summary.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.50")))
	require.True(t, summary.Subtotal.Equal(decimal.RequireFromString("25")),
		"summary must reflect the reprice, got %s", summary.Subtotal)
}

func TestSetQuantityAndRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tee := e.createProduct(t, "Classic Tee", "10.00", 10, 0)
	cart := e.cartFor(t, "user-1")
	e.addItem(t, cart.ID, tee.ID, 1)

	require.NoError(t, e.carts.SetQuantity(ctx, cart.ID, tee.ID, 4))
	summary, err := e.carts.GetSummary(ctx, cart.ID)
	require.NoError(t, err)
	require.Equal(t, 4, summary.ItemCount)

	err = e.carts.SetQuantity(ctx, cart.ID, 999, 2)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, e.carts.RemoveItem(ctx, cart.ID, tee.ID))
	err = e.carts.RemoveItem(ctx, cart.ID, tee.ID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
