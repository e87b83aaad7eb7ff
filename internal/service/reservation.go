package service

import (
	"context"
	"fmt"

	"checkout-engine/internal/apperr"
	"checkout-engine/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReservationService interface {
	// ValidateCartAvailability checks and reserves every cart item inside
	// the caller's transaction. If any item lacks availability the whole
	// operation fails and the transaction abort rolls back the earlier
	// reservations.
	ValidateCartAvailability(ctx context.Context, tx *gorm.DB, cartID uint) error
	// ReleaseCartReservation is the compensating action. Safe to call when
	// some or all items were never reserved.
	ReleaseCartReservation(ctx context.Context, cartID uint) error
}

type reservationServiceImpl struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewReservationService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger *zap.Logger,
) ReservationService {
	return &reservationServiceImpl{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *reservationServiceImpl) ValidateCartAvailability(ctx context.Context, tx *gorm.DB, cartID uint) error {
	// items come back in ascending product id, so concurrent checkouts
	// acquire row locks in the same order and cannot deadlock each other
	details, err := s.cartRepo.GetItemDetails(ctx, tx, cartID)
	if err != nil {
		return fmt.Errorf("get cart items: %w", err)
	}

	for _, item := range details {
		product, err := s.productRepo.LockForUpdate(ctx, tx, item.ProductID)
		if err != nil {
			return fmt.Errorf("lock product %d: %w", item.ProductID, err)
		}

		available := product.StockQuantity - product.ReservedQuantity
		if available < item.Quantity {
			return apperr.InsufficientStockf("insufficient stock for %q: %d requested, %d available",
				product.Name, item.Quantity, available)
		}

		ok, err := s.productRepo.ReserveStock(ctx, tx, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("reserve product %d: %w", item.ProductID, err)
		}
		if !ok {
			return apperr.InsufficientStockf("insufficient stock for %q", product.Name)
		}
	}

	return nil
}

func (s *reservationServiceImpl) ReleaseCartReservation(ctx context.Context, cartID uint) error {
	details, err := s.cartRepo.GetItemDetails(ctx, s.db, cartID)
	if err != nil {
		return fmt.Errorf("get cart items: %w", err)
	}

	var firstErr error
	for _, item := range details {
		ok, err := s.productRepo.ReleaseReservedStock(ctx, s.db, item.ProductID, item.Quantity)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("release product %d: %w", item.ProductID, err)
			}
			continue
		}
		if !ok {
			// nothing reserved for this item, or less than requested; the
			// guarded update refused rather than corrupt the ledger
			s.logger.Warn("skipped reservation release",
				zap.Uint("cart_id", cartID),
				zap.Uint("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity))
		}
	}

	return firstErr
}
