package repository

import (
	"context"
	"testing"

	"checkout-engine/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestUpsertItemIncrementsExistingLine(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	product := &model.Product{Name: "Classic Tee", Price: decimal.NewFromInt(10), Active: true, StockQuantity: 10}
	require.NoError(t, db.Create(product).Error)

	userID := "user-1"
	cart := &model.Cart{UserID: &userID}
	require.NoError(t, repo.Create(ctx, db, cart))

	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1, UnitPrice: product.Price}
	require.NoError(t, repo.UpsertItem(ctx, db, item))
	require.NoError(t, repo.UpsertItem(ctx, db, &model.CartItem{
		CartID: cart.ID, ProductID: product.ID, Quantity: 2, UnitPrice: product.Price,
	}))

	details, err := repo.GetItemDetails(ctx, db, cart.ID)
	require.NoError(t, err)
	require.Len(t, details, 1, "same product must not duplicate rows")
	require.Equal(t, 3, details[0].Quantity)
}

func TestGetItemDetailsUsesCurrentCatalogPrice(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	product := &model.Product{Name: "Classic Tee", Price: decimal.NewFromInt(10), Active: true, StockQuantity: 10}
	require.NoError(t, db.Create(product).Error)

	userID := "user-1"
	cart := &model.Cart{UserID: &userID}
	require.NoError(t, repo.Create(ctx, db, cart))
	require.NoError(t, repo.UpsertItem(ctx, db, &model.CartItem{
		CartID: cart.ID, ProductID: product.ID, Quantity: 1, UnitPrice: product.Price,
	}))

	// reprice after the item went in
	require.NoError(t, db.Model(&model.Product{}).
		Where("id = ?", product.ID).
		UpdateColumn("price", decimal.NewFromInt(12)).Error)

	details, err := repo.GetItemDetails(ctx, db, cart.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.True(t, details[0].CurrentPrice.Equal(decimal.NewFromInt(12)),
		"details must carry the live catalog price, got %s", details[0].CurrentPrice)
}

func TestGetItemDetailsOrdersByProductID(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	var products []*model.Product
	for _, name := range []string{"A", "B", "C"} {
		p := &model.Product{Name: name, Price: decimal.NewFromInt(5), Active: true, StockQuantity: 10}
		require.NoError(t, db.Create(p).Error)
		products = append(products, p)
	}

	userID := "user-1"
	cart := &model.Cart{UserID: &userID}
	require.NoError(t, repo.Create(ctx, db, cart))

	// insert in reverse to prove the ordering comes from the query
	for i := len(products) - 1; i >= 0; i-- {
		require.NoError(t, repo.UpsertItem(ctx, db, &model.CartItem{
			CartID: cart.ID, ProductID: products[i].ID, Quantity: 1, UnitPrice: products[i].Price,
		}))
	}

	details, err := repo.GetItemDetails(ctx, db, cart.ID)
	require.NoError(t, err)
	require.Len(t, details, 3)
	for i := 1; i < len(details); i++ {
		require.Less(t, details[i-1].ProductID, details[i].ProductID)
	}
}

func TestClearItemsEmptiesCartOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	product := &model.Product{Name: "Classic Tee", Price: decimal.NewFromInt(10), Active: true, StockQuantity: 10}
	require.NoError(t, db.Create(product).Error)

	userA, userB := "user-a", "user-b"
	cartA := &model.Cart{UserID: &userA}
	cartB := &model.Cart{UserID: &userB}
	require.NoError(t, repo.Create(ctx, db, cartA))
	require.NoError(t, repo.Create(ctx, db, cartB))

	for _, cart := range []*model.Cart{cartA, cartB} {
		require.NoError(t, repo.UpsertItem(ctx, db, &model.CartItem{
			CartID: cart.ID, ProductID: product.ID, Quantity: 1, UnitPrice: product.Price,
		}))
	}

	require.NoError(t, repo.ClearItems(ctx, db, cartA.ID))

	detailsA, err := repo.GetItemDetails(ctx, db, cartA.ID)
	require.NoError(t, err)
	require.Empty(t, detailsA)

	detailsB, err := repo.GetItemDetails(ctx, db, cartB.ID)
	require.NoError(t, err)
	require.Len(t, detailsB, 1)
}
