package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"checkout-engine/internal/apperr"
	"checkout-engine/internal/dto"
	"checkout-engine/internal/model"
	"checkout-engine/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const guestTokenBytes = 32

// CartIdentity is either an authenticated user id or a guest bearer token.
type CartIdentity struct {
	UserID     string
	GuestToken string
}

type CartService interface {
	// Resolve finds or creates the identity's cart. The second return value
	// is a freshly minted guest token when one was issued; the caller is
	// responsible for persisting it back to the client.
	Resolve(ctx context.Context, identity CartIdentity) (*model.Cart, string, error)
	AddItem(ctx context.Context, cartID, productID uint, qty int) error
	SetQuantity(ctx context.Context, cartID, productID uint, qty int) error
	RemoveItem(ctx context.Context, cartID, productID uint) error
	GetSummary(ctx context.Context, cartID uint) (*dto.CartSummary, error)
}

type cartServiceImpl struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
) CartService {
	return &cartServiceImpl{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartServiceImpl) Resolve(ctx context.Context, identity CartIdentity) (*model.Cart, string, error) {
	if identity.UserID != "" {
		cart, err := s.cartRepo.FindByUserID(ctx, s.db, identity.UserID)
		if err == nil {
			return cart, "", nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("find cart by user: %w", err)
		}

		userID := identity.UserID
		cart = &model.Cart{UserID: &userID}
		if err := s.cartRepo.Create(ctx, s.db, cart); err != nil {
			return nil, "", fmt.Errorf("create user cart: %w", err)
		}
		return cart, "", nil
	}

	if identity.GuestToken != "" {
		cart, err := s.cartRepo.FindByGuestToken(ctx, s.db, identity.GuestToken)
		if err == nil {
			return cart, "", nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("find cart by token: %w", err)
		}
		// unknown token falls through to a fresh one
	}

	token, err := mintGuestToken()
	if err != nil {
		return nil, "", fmt.Errorf("mint guest token: %w", err)
	}
	cart := &model.Cart{GuestToken: &token}
	if err := s.cartRepo.Create(ctx, s.db, cart); err != nil {
		return nil, "", fmt.Errorf("create guest cart: %w", err)
	}

	return cart, token, nil
}

func (s *cartServiceImpl) AddItem(ctx context.Context, cartID, productID uint, qty int) error {
	if qty < 1 {
		return apperr.InvalidState("quantity must be at least 1")
	}

	product, err := s.productRepo.FindByID(ctx, s.db, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product not found")
		}
		return fmt.Errorf("find product: %w", err)
	}
	if !product.Active {
		return apperr.InvalidState(fmt.Sprintf("product %q is not available", product.Name))
	}

	return s.cartRepo.UpsertItem(ctx, s.db, &model.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: product.Price,
	})
}

func (s *cartServiceImpl) SetQuantity(ctx context.Context, cartID, productID uint, qty int) error {
	if qty < 1 {
		return apperr.InvalidState("quantity must be at least 1")
	}

	err := s.cartRepo.SetItemQuantity(ctx, s.db, cartID, productID, qty)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("item not in cart")
	}

	return err
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, cartID, productID uint) error {
	err := s.cartRepo.RemoveItem(ctx, s.db, cartID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("item not in cart")
	}

	return err
}

// GetSummary prices the cart from the current catalog, not a cached field.
func (s *cartServiceImpl) GetSummary(ctx context.Context, cartID uint) (*dto.CartSummary, error) {
	details, err := s.cartRepo.GetItemDetails(ctx, s.db, cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}

	summary := &dto.CartSummary{
		Items:    make([]dto.CartItemView, 0, len(details)),
		Subtotal: decimal.Zero,
	}
	for _, d := range details {
		lineSubtotal := d.CurrentPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))
		summary.Items = append(summary.Items, dto.CartItemView{
			ProductID: d.ProductID,
			Name:      d.ProductName,
			Quantity:  d.Quantity,
			UnitPrice: d.CurrentPrice,
			Subtotal:  lineSubtotal,
		})
		summary.ItemCount += d.Quantity
		summary.Subtotal = summary.Subtotal.Add(lineSubtotal)
	}

	return summary, nil
}

func mintGuestToken() (string, error) {
	buf := make([]byte, guestTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
