package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"checkout-engine/internal/apperr"
	"checkout-engine/internal/dto"
	"checkout-engine/internal/model"
	"checkout-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const orderNumberAttempts = 5

type OrderService interface {
	// CommitOrder converts the user's cart, reservation and shipping record
	// into an immutable order. It runs entirely inside the caller's
	// transaction; a failure at any point rolls back everything, including
	// the inventory finalize.
	CommitOrder(ctx context.Context, tx *gorm.DB, userID, reference string) (*dto.OrderSummary, error)
}

type orderServiceImpl struct {
	cartRepo     repository.CartRepository
	shippingRepo repository.ShippingRepository
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
}

func NewOrderService(
	cartRepo repository.CartRepository,
	shippingRepo repository.ShippingRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
) OrderService {
	return &orderServiceImpl{
		cartRepo:     cartRepo,
		shippingRepo: shippingRepo,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
	}
}

func (s *orderServiceImpl) CommitOrder(ctx context.Context, tx *gorm.DB, userID, reference string) (*dto.OrderSummary, error) {
	// fast-path duplicate check; the unique constraint on
	// transaction_reference is the backstop
	exists, err := s.orderRepo.ReferenceHasOrder(ctx, tx, reference)
	if err != nil {
		return nil, fmt.Errorf("check existing order: %w", err)
	}
	if exists {
		return nil, apperr.DuplicateOrder(fmt.Sprintf("an order already exists for payment %s", reference))
	}

	cart, err := s.cartRepo.FindByUserID(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.InvalidState("no cart to commit")
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}

	details, err := s.cartRepo.GetItemDetails(ctx, tx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	if len(details) == 0 {
		return nil, apperr.InvalidState("cart is empty")
	}

	shipping, err := s.shippingRepo.FindByCartID(ctx, tx, cart.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.InvalidState("shipping details are missing")
		}
		return nil, fmt.Errorf("find shipping: %w", err)
	}

	subtotal := decimal.Zero
	for _, d := range details {
		subtotal = subtotal.Add(d.CurrentPrice.Mul(decimal.NewFromInt(int64(d.Quantity))))
	}

	finalAmount := subtotal.Add(shipping.Amount).Sub(cart.DiscountAmount)
	if finalAmount.Sign() < 0 {
		finalAmount = decimal.Zero
	}

	orderNumber, err := s.generateOrderNumber(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	order := &model.Order{
		OrderNumber:          orderNumber,
		TransactionReference: reference,
		UserID:               userID,
		Subtotal:             subtotal,
		ShippingAmount:       shipping.Amount,
		DiscountAmount:       cart.DiscountAmount,
		FinalAmount:          finalAmount,
		Status:               model.OrderStatusPaid,
	}
	if err := s.orderRepo.Create(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	items := make([]*model.OrderItem, len(details))
	for i, d := range details {
		items[i] = &model.OrderItem{
			OrderID:     order.ID,
			ProductID:   d.ProductID,
			ProductName: d.ProductName,
			Quantity:    d.Quantity,
			UnitPrice:   d.CurrentPrice,
			Subtotal:    d.CurrentPrice.Mul(decimal.NewFromInt(int64(d.Quantity))),
		}
	}
	if err := s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("store order items: %w", err)
	}

	for _, d := range details {
		ok, err := s.productRepo.FinalizeStock(ctx, tx, d.ProductID, d.Quantity)
		if err != nil {
			return nil, fmt.Errorf("finalize product %d: %w", d.ProductID, err)
		}
		if !ok {
			return nil, apperr.System(fmt.Sprintf("inventory finalize refused for product %d", d.ProductID), nil)
		}
	}

	if err := s.cartRepo.ClearItems(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	return &dto.OrderSummary{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Reference:   reference,
		FinalAmount: finalAmount,
		Status:      order.Status,
	}, nil
}

func (s *orderServiceImpl) generateOrderNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		candidate := "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
		exists, err := s.orderRepo.OrderNumberExists(ctx, tx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}

	// collision streak exhausted; a timestamp is unique enough here
	return fmt.Sprintf("ORD-%d", time.Now().UnixNano()), nil
}
