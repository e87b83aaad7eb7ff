package repository

import (
	"context"

	"checkout-engine/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	Create(ctx context.Context, tx *gorm.DB, cart *model.Cart) error
	FindByUserID(ctx context.Context, tx *gorm.DB, userID string) (*model.Cart, error)
	FindByGuestToken(ctx context.Context, tx *gorm.DB, token string) (*model.Cart, error)
	UpsertItem(ctx context.Context, tx *gorm.DB, item *model.CartItem) error
	SetItemQuantity(ctx context.Context, tx *gorm.DB, cartID, productID uint, qty int) error
	RemoveItem(ctx context.Context, tx *gorm.DB, cartID, productID uint) error
	GetItemDetails(ctx context.Context, tx *gorm.DB, cartID uint) ([]model.CartItemDetail, error)
	ClearItems(ctx context.Context, tx *gorm.DB, cartID uint) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) Create(ctx context.Context, tx *gorm.DB, cart *model.Cart) error {
	return tx.WithContext(ctx).Create(cart).Error
}

func (r *cartRepoImpl) FindByUserID(ctx context.Context, tx *gorm.DB, userID string) (*model.Cart, error) {
	var cart model.Cart
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepoImpl) FindByGuestToken(ctx context.Context, tx *gorm.DB, token string) (*model.Cart, error) {
	var cart model.Cart
	err := tx.WithContext(ctx).
		Where("guest_token = ?", token).
		First(&cart).Error
	if err != nil {
		return nil, err
	}

	return &cart, nil
}

// UpsertItem inserts the line or, when the product is already in the cart,
// increments its quantity. The unit price snapshot keeps its original value.
func (r *cartRepoImpl) UpsertItem(ctx context.Context, tx *gorm.DB, item *model.CartItem) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", item.Quantity),
		}),
	}).Create(item).Error
}

func (r *cartRepoImpl) SetItemQuantity(ctx context.Context, tx *gorm.DB, cartID, productID uint, qty int) error {
	result := tx.WithContext(ctx).Model(&model.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		UpdateColumn("quantity", qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *cartRepoImpl) RemoveItem(ctx context.Context, tx *gorm.DB, cartID, productID uint) error {
	result := tx.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&model.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// GetItemDetails joins cart items to the current catalog rows. Totals are
// computed from the live price, not the add-time snapshot, so price changes
// are reflected until the order is actually committed. Ascending product id
// keeps lock acquisition order deterministic across checkouts.
func (r *cartRepoImpl) GetItemDetails(ctx context.Context, tx *gorm.DB, cartID uint) ([]model.CartItemDetail, error) {
	var details []model.CartItemDetail
	err := tx.WithContext(ctx).Model(&model.CartItem{}).
		Select("cart_items.product_id, products.name AS product_name, cart_items.quantity, products.price AS current_price, products.active").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Order("cart_items.product_id ASC").
		Scan(&details).Error
	if err != nil {
		return nil, err
	}

	return details, nil
}

func (r *cartRepoImpl) ClearItems(ctx context.Context, tx *gorm.DB, cartID uint) error {
	return tx.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}
