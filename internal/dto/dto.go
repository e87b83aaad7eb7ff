package dto

import "github.com/shopspring/decimal"

type AddItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartItemView struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartSummary struct {
	Items     []CartItemView  `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type ShippingRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Method   string `json:"method"`
}

type ShippingResponse struct {
	FullName string          `json:"full_name"`
	Phone    string          `json:"phone"`
	Address  string          `json:"address"`
	City     string          `json:"city"`
	Method   string          `json:"method"`
	Amount   decimal.Decimal `json:"amount"`
}

type InitiatePaymentResponse struct {
	AuthorizationURL string          `json:"authorization_url"`
	Reference        string          `json:"reference"`
	Amount           decimal.Decimal `json:"amount"`
}

type OrderSummary struct {
	OrderID     uint            `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Reference   string          `json:"reference"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	Status      string          `json:"status"`
}

// GatewayWebhook is the provider's event envelope as delivered to the
// webhook endpoint.
type GatewayWebhook struct {
	ID    string `json:"id"`
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}
