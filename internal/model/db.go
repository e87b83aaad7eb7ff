package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID               uint            `gorm:"primaryKey"`
	Name             string          `gorm:"size:128;not null"`
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Active           bool            `gorm:"not null;default:true"`
	StockQuantity    int             `gorm:"not null;default:0"`
	ReservedQuantity int             `gorm:"not null;default:0"` // invariant: 0 <= reserved <= stock
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Cart belongs to exactly one identity: an authenticated user or a guest
// bearer token.
type Cart struct {
	ID             uint            `gorm:"primaryKey"`
	UserID         *string         `gorm:"size:64;uniqueIndex"`
	GuestToken     *string         `gorm:"size:128;uniqueIndex"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"`
	CartID    uint `gorm:"not null;uniqueIndex:idx_cart_product"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_product"`
	Quantity  int  `gorm:"not null"`
	// price at add time; totals are recomputed from the catalog until commit
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ShippingDetail struct {
	ID        uint            `gorm:"primaryKey"`
	CartID    uint            `gorm:"not null;uniqueIndex"`
	FullName  string          `gorm:"size:128;not null"`
	Phone     string          `gorm:"size:32"`
	Address   string          `gorm:"size:255;not null"`
	City      string          `gorm:"size:64;not null"`
	Method    string          `gorm:"size:32;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction is the local payment intent. It is created before the gateway
// is contacted so every reference has a matching record even if the call
// never returns.
type Transaction struct {
	ID            uint            `gorm:"primaryKey"`
	Reference     string          `gorm:"size:64;uniqueIndex;not null"`
	UserID        string          `gorm:"size:64;index;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentMethod string          `gorm:"size:32;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Order struct {
	ID                   uint            `gorm:"primaryKey"`
	OrderNumber          string          `gorm:"size:64;uniqueIndex;not null"`
	TransactionReference string          `gorm:"size:64;uniqueIndex;not null"` // at most one order per payment
	UserID               string          `gorm:"size:64;index;not null"`
	Subtotal             decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ShippingAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DiscountAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	FinalAmount          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Status               string          `gorm:"size:32;index;not null"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// OrderItem is an immutable snapshot of a cart item at commit time. Catalog
// price changes never retroactively alter a historical order.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey"`
	OrderID     uint            `gorm:"index;not null"`
	ProductID   uint            `gorm:"index;not null"`
	ProductName string          `gorm:"size:128;not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

const OrderStatusPaid = "PAID"

// CartItemDetail is a cart item joined with its current catalog row. Not a
// table; used for live totals and availability checks.
type CartItemDetail struct {
	ProductID    uint
	ProductName  string
	Quantity     int
	CurrentPrice decimal.Decimal
	Active       bool
}
