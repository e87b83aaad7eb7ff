package repository

import (
	"context"
	"time"

	"checkout-engine/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShippingRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, detail *model.ShippingDetail) error
	FindByCartID(ctx context.Context, tx *gorm.DB, cartID uint) (*model.ShippingDetail, error)
}

type shippingRepoImpl struct {
	db *gorm.DB
}

func NewShippingRepository(db *gorm.DB) ShippingRepository {
	return &shippingRepoImpl{
		db: db,
	}
}

func (r *shippingRepoImpl) Upsert(ctx context.Context, tx *gorm.DB, detail *model.ShippingDetail) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"full_name":  detail.FullName,
			"phone":      detail.Phone,
			"address":    detail.Address,
			"city":       detail.City,
			"method":     detail.Method,
			"amount":     detail.Amount,
			"updated_at": time.Now(),
		}),
	}).Create(detail).Error
}

func (r *shippingRepoImpl) FindByCartID(ctx context.Context, tx *gorm.DB, cartID uint) (*model.ShippingDetail, error) {
	var detail model.ShippingDetail
	err := tx.WithContext(ctx).
		Where("cart_id = ?", cartID).
		First(&detail).Error
	if err != nil {
		return nil, err
	}

	return &detail, nil
}
