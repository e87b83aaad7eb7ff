package model

import "github.com/shopspring/decimal"

// ShippingRates maps a shipping method to its fixed amount.
var ShippingRates = map[string]decimal.Decimal{
	"standard": decimal.NewFromInt(4),
	"express":  decimal.RequireFromString("9.50"),
	"pickup":   decimal.Zero,
}

func ShippingRate(method string) (decimal.Decimal, bool) {
	amount, ok := ShippingRates[method]
	return amount, ok
}
