package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"checkout-engine/internal/client"
	"checkout-engine/internal/dto"
	"checkout-engine/internal/model"
	"checkout-engine/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWebhookSecret = "whsec_test"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.ShippingDetail{},
		&model.Transaction{},
		&model.Order{},
		&model.OrderItem{},
		&model.WebhookEvent{},
	))

	return db
}

// stubGateway lets each test script the provider's behavior. The defaults
// make Initialize succeed and Verify fail loudly until a test sets it.
type stubGateway struct {
	mu          sync.Mutex
	initFunc    func(email string, amount decimal.Decimal, reference string) (*client.InitializeResponse, error)
	verifyFunc  func(reference string) (*client.VerifyResponse, error)
	initCalls   int
	verifyCalls int
}

func (s *stubGateway) Initialize(ctx context.Context, email string, amount decimal.Decimal, reference string) (*client.InitializeResponse, error) {
	s.mu.Lock()
	s.initCalls++
	fn := s.initFunc
	s.mu.Unlock()

	if fn != nil {
		return fn(email, amount, reference)
	}
	return &client.InitializeResponse{
		AuthorizationURL: "https://pay.example.com/" + reference,
		Reference:        reference,
	}, nil
}

func (s *stubGateway) Verify(ctx context.Context, reference string) (*client.VerifyResponse, error) {
	s.mu.Lock()
	s.verifyCalls++
	fn := s.verifyFunc
	s.mu.Unlock()

	if fn != nil {
		return fn(reference)
	}
	return nil, fmt.Errorf("stub verify not scripted for %s", reference)
}

func verifySuccess(amount decimal.Decimal) func(string) (*client.VerifyResponse, error) {
	return func(reference string) (*client.VerifyResponse, error) {
		return &client.VerifyResponse{
			Status:    client.VerifyStatusSuccess,
			Amount:    amount,
			Reference: reference,
		}, nil
	}
}

func verifyStatus(status client.VerifyStatus) func(string) (*client.VerifyResponse, error) {
	return func(reference string) (*client.VerifyResponse, error) {
		return &client.VerifyResponse{
			Status:    status,
			Reference: reference,
		}, nil
	}
}

type env struct {
	db           *gorm.DB
	gateway      *stubGateway
	productRepo  repository.ProductRepository
	cartRepo     repository.CartRepository
	shippingRepo repository.ShippingRepository
	txnRepo      repository.TransactionRepository
	orderRepo    repository.OrderRepository
	webhookRepo  repository.WebhookEventRepository
	carts        CartService
	shipping     ShippingService
	reservations ReservationService
	orders       OrderService
	checkout     CheckoutService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := newTestDB(t)
	gw := &stubGateway{}
	log := zap.NewNop()

	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	shippingRepo := repository.NewShippingRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	webhookRepo := repository.NewWebhookEventRepository(db)

	carts := NewCartService(db, cartRepo, productRepo)
	shipping := NewShippingService(db, shippingRepo)
	reservations := NewReservationService(db, cartRepo, productRepo, log)
	orders := NewOrderService(cartRepo, shippingRepo, orderRepo, productRepo)
	checkout := NewCheckoutService(
		db, gw,
		cartRepo, shippingRepo, txnRepo, webhookRepo,
		reservations, orders,
		testWebhookSecret,
		log,
	)

	return &env{
		db:           db,
		gateway:      gw,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
		shippingRepo: shippingRepo,
		txnRepo:      txnRepo,
		orderRepo:    orderRepo,
		webhookRepo:  webhookRepo,
		carts:        carts,
		shipping:     shipping,
		reservations: reservations,
		orders:       orders,
		checkout:     checkout,
	}
}

func (e *env) createProduct(t *testing.T, name, price string, stock, reserved int) *model.Product {
	t.Helper()

	product := &model.Product{
		Name:             name,
		Price:            decimal.RequireFromString(price),
		Active:           true,
		StockQuantity:    stock,
		ReservedQuantity: reserved,
	}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func (e *env) cartFor(t *testing.T, userID string) *model.Cart {
	t.Helper()

	cart, _, err := e.carts.Resolve(context.Background(), CartIdentity{UserID: userID})
	require.NoError(t, err)
	return cart
}

func (e *env) addItem(t *testing.T, cartID, productID uint, qty int) {
	t.Helper()
	require.NoError(t, e.carts.AddItem(context.Background(), cartID, productID, qty))
}

func (e *env) setShipping(t *testing.T, cartID uint, method string) {
	t.Helper()

	_, err := e.shipping.Set(context.Background(), cartID, &dto.ShippingRequest{
		FullName: "Ada Lovelace",
		Phone:    "+1555000111",
		Address:  "12 Analytical Way",
		City:     "London",
		Method:   method,
	})
	require.NoError(t, err)
}

func (e *env) productState(t *testing.T, productID uint) (stock, reserved int) {
	t.Helper()

	product, err := e.productRepo.FindByID(context.Background(), e.db, productID)
	require.NoError(t, err)
	return product.StockQuantity, product.ReservedQuantity
}

func (e *env) orderCount(t *testing.T, reference string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, e.db.Model(&model.Order{}).
		Where("transaction_reference = ?", reference).
		Count(&count).Error)
	return count
}

func (e *env) transactionCount(t *testing.T) int64 {
	t.Helper()

	var count int64
	require.NoError(t, e.db.Model(&model.Transaction{}).Count(&count).Error)
	return count
}
