package repository

import (
	"context"

	"checkout-engine/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	ReferenceHasOrder(ctx context.Context, tx *gorm.DB, reference string) (bool, error)
	OrderNumberExists(ctx context.Context, tx *gorm.DB, orderNumber string) (bool, error)
	FindByReference(ctx context.Context, tx *gorm.DB, reference string) (*model.Order, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) ReferenceHasOrder(ctx context.Context, tx *gorm.DB, reference string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Order{}).
		Where("transaction_reference = ?", reference).
		Count(&count).Error

	return count > 0, err
}

func (r *orderRepoImpl) OrderNumberExists(ctx context.Context, tx *gorm.DB, orderNumber string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Order{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error

	return count > 0, err
}

func (r *orderRepoImpl) FindByReference(ctx context.Context, tx *gorm.DB, reference string) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Where("transaction_reference = ?", reference).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}
