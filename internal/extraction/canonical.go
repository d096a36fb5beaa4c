package extraction

import (
	"encoding/json"
	"fmt"
)

type canonicalItem struct {
	Label      string      `json:"label"`
	Quantity   json.Number `json:"quantity"`
	UnitPrice  json.Number `json:"unitPrice,omitempty"`
	TotalPrice json.Number `json:"totalPrice"`
}

type canonicalEnvelope struct {
	Items []canonicalItem `json:"items"`
}

// MarshalItems encodes items as {"items":[...]} with prices fixed to two
// decimals. A missing unit price is left out.
func MarshalItems(items []Item) ([]byte, error) {
	env := canonicalEnvelope{Items: make([]canonicalItem, 0, len(items))}
	for _, item := range items {
		c := canonicalItem{
			Label:      item.Label,
			Quantity:   json.Number(item.Quantity.String()),
			TotalPrice: json.Number(item.TotalPrice.StringFixed(2)),
		}
		if item.UnitPrice.Valid {
			c.UnitPrice = json.Number(item.UnitPrice.Decimal.StringFixed(2))
		}
		env.Items = append(env.Items, c)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshaling items: %w", err)
	}
	return data, nil
}
