package repository

import (
	"context"

	"checkout-engine/internal/model"

	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, txn *model.Transaction) error
	FindByReference(ctx context.Context, tx *gorm.DB, reference string) (*model.Transaction, error)
	ReferenceExists(ctx context.Context, tx *gorm.DB, reference string) (bool, error)
}

type transactionRepoImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepoImpl{
		db: db,
	}
}

func (r *transactionRepoImpl) Create(ctx context.Context, tx *gorm.DB, txn *model.Transaction) error {
	return tx.WithContext(ctx).Create(txn).Error
}

func (r *transactionRepoImpl) FindByReference(ctx context.Context, tx *gorm.DB, reference string) (*model.Transaction, error) {
	var txn model.Transaction
	err := tx.WithContext(ctx).
		Where("reference = ?", reference).
		First(&txn).Error
	if err != nil {
		return nil, err
	}

	return &txn, nil
}

func (r *transactionRepoImpl) ReferenceExists(ctx context.Context, tx *gorm.DB, reference string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Transaction{}).
		Where("reference = ?", reference).
		Count(&count).Error

	return count > 0, err
}
