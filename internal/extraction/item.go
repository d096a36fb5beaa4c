package extraction

import "github.com/shopspring/decimal"

// Item is one purchased line of a receipt
type Item struct {
	Label      string              `json:"label"`
	Quantity   decimal.Decimal     `json:"quantity"`
	UnitPrice  decimal.NullDecimal `json:"unitPrice"`
	TotalPrice decimal.Decimal     `json:"totalPrice"`
	Selected   bool                `json:"selected"`
}

// unitPrice derives the per-unit price from a line total, rounded to cents.
// Returns an invalid NullDecimal when quantity is not positive.
func unitPrice(total, quantity decimal.Decimal) decimal.NullDecimal {
	if !quantity.IsPositive() {
		return decimal.NullDecimal{}
	}
	// Round is half away from zero
	return decimal.NewNullDecimal(total.Div(quantity).Round(2))
}
