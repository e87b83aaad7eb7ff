package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"checkout-engine/internal/apperr"
	"checkout-engine/internal/client"
	"checkout-engine/internal/dto"
	"checkout-engine/internal/model"
	"checkout-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	referenceAttempts    = 5
	defaultPaymentMethod = "card"
	webhookChargeSuccess = "charge.success"
)

type CheckoutService interface {
	// InitiatePayment runs the synchronous checkout phase: resolve cart,
	// reserve stock, record the payment intent and initialize the gateway,
	// all inside one transaction.
	InitiatePayment(ctx context.Context, userID, email string) (*dto.InitiatePaymentResponse, error)
	// VerifyPayment completes checkout for a reference. Idempotent: a second
	// verify of a settled reference conflicts instead of double-committing.
	VerifyPayment(ctx context.Context, userID, reference string) (*dto.OrderSummary, error)
	// HandleWebhook authenticates, dedups and routes a gateway event.
	HandleWebhook(ctx context.Context, signature string, body []byte) error
}

type checkoutServiceImpl struct {
	db            *gorm.DB
	gateway       client.PaymentGateway
	cartRepo      repository.CartRepository
	shippingRepo  repository.ShippingRepository
	txnRepo       repository.TransactionRepository
	webhookRepo   repository.WebhookEventRepository
	reservations  ReservationService
	orders        OrderService
	webhookSecret string
	logger        *zap.Logger
}

func NewCheckoutService(
	db *gorm.DB,
	gateway client.PaymentGateway,
	cartRepo repository.CartRepository,
	shippingRepo repository.ShippingRepository,
	txnRepo repository.TransactionRepository,
	webhookRepo repository.WebhookEventRepository,
	reservations ReservationService,
	orders OrderService,
	webhookSecret string,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		db:            db,
		gateway:       gateway,
		cartRepo:      cartRepo,
		shippingRepo:  shippingRepo,
		txnRepo:       txnRepo,
		webhookRepo:   webhookRepo,
		reservations:  reservations,
		orders:        orders,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// InitiatePayment keeps the gateway call inside the same transaction as the
// reservation: if the gateway rejects, the rollback undoes the reservation
// with no compensating action. The row locks are held across the gateway
// round trip; the client's request timeout bounds that window.
func (s *checkoutServiceImpl) InitiatePayment(ctx context.Context, userID, email string) (*dto.InitiatePaymentResponse, error) {
	var resp *dto.InitiatePaymentResponse

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.FindByUserID(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("cart not found")
			}
			return fmt.Errorf("find cart: %w", err)
		}

		details, err := s.cartRepo.GetItemDetails(ctx, tx, cart.ID)
		if err != nil {
			return fmt.Errorf("get cart items: %w", err)
		}

		subtotal := decimal.Zero
		for _, d := range details {
			subtotal = subtotal.Add(d.CurrentPrice.Mul(decimal.NewFromInt(int64(d.Quantity))))
		}
		if subtotal.Sign() <= 0 {
			return apperr.InvalidState("cart total must be positive")
		}

		shipping, err := s.shippingRepo.FindByCartID(ctx, tx, cart.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.InvalidState("shipping details are missing")
			}
			return fmt.Errorf("find shipping: %w", err)
		}

		amount := subtotal.Add(shipping.Amount).Sub(cart.DiscountAmount)
		if amount.Sign() <= 0 {
			return apperr.InvalidState("payable amount must be positive")
		}

		if err := s.reservations.ValidateCartAvailability(ctx, tx, cart.ID); err != nil {
			return err
		}

		reference, err := s.generateReference(ctx, tx)
		if err != nil {
			return fmt.Errorf("generate reference: %w", err)
		}

		if err := s.txnRepo.Create(ctx, tx, &model.Transaction{
			Reference:     reference,
			UserID:        userID,
			Amount:        amount,
			PaymentMethod: defaultPaymentMethod,
		}); err != nil {
			return fmt.Errorf("store transaction: %w", err)
		}

		init, err := s.gateway.Initialize(ctx, email, amount, reference)
		if err != nil {
			return err
		}

		resp = &dto.InitiatePaymentResponse{
			AuthorizationURL: init.AuthorizationURL,
			Reference:        reference,
			Amount:           amount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (s *checkoutServiceImpl) VerifyPayment(ctx context.Context, userID, reference string) (*dto.OrderSummary, error) {
	var summary *dto.OrderSummary

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		verified, err := s.gateway.Verify(ctx, reference)
		if err != nil {
			return err
		}
		if verified.Status != client.VerifyStatusSuccess {
			return apperr.GatewayFailure(fmt.Sprintf("payment %s is %s", reference, verified.Status), nil)
		}

		txn, err := s.txnRepo.FindByReference(ctx, tx, reference)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("unknown payment reference")
			}
			return fmt.Errorf("find transaction: %w", err)
		}
		if txn.UserID != userID {
			return apperr.NotFound("unknown payment reference")
		}
		if !verified.Amount.Equal(txn.Amount) {
			return apperr.GatewayFailure(fmt.Sprintf("verified amount %s does not match charged amount %s",
				verified.Amount, txn.Amount), nil)
		}

		summary, err = s.orders.CommitOrder(ctx, tx, userID, reference)
		return err
	})
	if err != nil {
		s.releaseAfterFailedVerify(ctx, userID, reference, err)
		return nil, err
	}

	return summary, nil
}

// releaseAfterFailedVerify runs after the verify transaction rolled back.
// It is best effort and must never mask the original error.
func (s *checkoutServiceImpl) releaseAfterFailedVerify(ctx context.Context, userID, reference string, cause error) {
	s.logger.Error("payment verification failed",
		zap.String("reference", reference),
		zap.String("user_id", userID),
		zap.Error(cause))

	cart, err := s.cartRepo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("could not load cart for reservation release",
				zap.String("reference", reference), zap.Error(err))
		}
		return
	}

	if err := s.reservations.ReleaseCartReservation(ctx, cart.ID); err != nil {
		s.logger.Warn("reservation release failed",
			zap.String("reference", reference),
			zap.Uint("cart_id", cart.ID),
			zap.Error(err))
	}
}

func (s *checkoutServiceImpl) HandleWebhook(ctx context.Context, signature string, body []byte) error {
	if !s.validSignature(signature, body) {
		return apperr.InvalidState("invalid webhook signature")
	}

	var event dto.GatewayWebhook
	if err := json.Unmarshal(body, &event); err != nil {
		return apperr.InvalidState("unreadable webhook payload")
	}
	if event.ID == "" {
		return apperr.InvalidState("webhook event id is missing")
	}

	processed, err := s.webhookRepo.Exists(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if processed {
		return nil
	}

	if event.Event == webhookChargeSuccess {
		txn, err := s.txnRepo.FindByReference(ctx, s.db, event.Data.Reference)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("unknown payment reference")
			}
			return fmt.Errorf("find transaction: %w", err)
		}

		if _, err := s.VerifyPayment(ctx, txn.UserID, txn.Reference); err != nil {
			// the redirect path may have committed first; that is this
			// event's success case
			if apperr.KindOf(err) != apperr.KindDuplicateOrder {
				return err
			}
		}
	}

	return s.webhookRepo.MarkProcessed(ctx, event.ID, event.Event)
}

func (s *checkoutServiceImpl) validSignature(signature string, body []byte) bool {
	mac := hmac.New(sha512.New, []byte(s.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *checkoutServiceImpl) generateReference(ctx context.Context, tx *gorm.DB) (string, error) {
	for i := 0; i < referenceAttempts; i++ {
		candidate := "TXN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
		exists, err := s.txnRepo.ReferenceExists(ctx, tx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}

	return fmt.Sprintf("TXN-%d", time.Now().UnixNano()), nil
}
