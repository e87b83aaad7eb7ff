package repository

import (
	"context"

	"checkout-engine/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository is the inventory ledger. Every successful ReserveStock
// must be paired with exactly one FinalizeStock or ReleaseReservedStock for
// the same quantity; the three must not interleave for a product outside a
// serializing transaction.
type ProductRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error)
	LockForUpdate(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error)
	ReserveStock(ctx context.Context, tx *gorm.DB, productID uint, qty int) (bool, error)
	FinalizeStock(ctx context.Context, tx *gorm.DB, productID uint, qty int) (bool, error)
	ReleaseReservedStock(ctx context.Context, tx *gorm.DB, productID uint, qty int) (bool, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{Name: "Classic Tee", Price: decimal.RequireFromString("10.00"), Active: true, StockQuantity: 100},
		{Name: "Canvas Tote", Price: decimal.RequireFromString("5.00"), Active: true, StockQuantity: 50},
		{Name: "Enamel Mug", Price: decimal.RequireFromString("8.50"), Active: true, StockQuantity: 25},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error) {
	var product model.Product
	err := tx.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// LockForUpdate reads the product under a row lock held until the caller's
// transaction ends. SQLite has no FOR UPDATE; its writers are serialized by
// the engine, so the clause is only added on dialects that support it.
func (r *productRepoImpl) LockForUpdate(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error) {
	q := tx.WithContext(ctx)
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var product model.Product
	err := q.Where("id = ?", productID).First(&product).Error
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// ReserveStock holds qty units against an in-flight checkout. The guard in
// the WHERE clause keeps reserved_quantity within stock_quantity even if a
// caller skips the availability check.
func (r *productRepoImpl) ReserveStock(ctx context.Context, tx *gorm.DB, productID uint, qty int) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock_quantity - reserved_quantity >= ?", productID, qty).
		UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity + ?", qty))

	return result.RowsAffected == 1, result.Error
}

// FinalizeStock converts a reservation into a real sale in one statement.
func (r *productRepoImpl) FinalizeStock(ctx context.Context, tx *gorm.DB, productID uint, qty int) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND reserved_quantity >= ? AND stock_quantity >= ?", productID, qty, qty).
		UpdateColumns(map[string]interface{}{
			"stock_quantity":    gorm.Expr("stock_quantity - ?", qty),
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", qty),
		})

	return result.RowsAffected == 1, result.Error
}

// ReleaseReservedStock returns reserved units to the available pool. The
// guard refuses to decrement below zero, so an over-release is reported to
// the caller instead of corrupting the ledger.
func (r *productRepoImpl) ReleaseReservedStock(ctx context.Context, tx *gorm.DB, productID uint, qty int) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND reserved_quantity >= ?", productID, qty).
		UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity - ?", qty))

	return result.RowsAffected == 1, result.Error
}
