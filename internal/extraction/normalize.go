package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Tier names the decode strategy that recovered items from a model response
type Tier string

const (
	TierObject  Tier = "object"  // the whole response is {"items": [...]}
	TierArray   Tier = "array"   // a bare [...] of items somewhere in the response
	TierWrapped Tier = "wrapped" // an {"items": [...]} object buried in the response
	TierNone    Tier = "none"
)

var (
	errNoItemsField = errors.New("missing items field")
	errNoBrackets   = errors.New("no bracketed array in response")
	errNoBraces     = errors.New("no braced object in response")
	errNoLabel      = errors.New("item has no label")
	errNoTotal      = errors.New("item has no total price")
	errOutOfRange   = errors.New("out of range")
)

const (
	// maxAmountScale is the most decimal places an amount may carry
	maxAmountScale = 20
	// maxAmountExponent bounds exponent notation such as 1e9
	maxAmountExponent = 9
)

// maxAmount is the largest quantity or price accepted from a model
var maxAmount = decimal.New(1, 9)

// wireItem is the loosely typed shape a model is asked to produce.
// Pointers distinguish missing fields from zero values.
type wireItem struct {
	Label      *string             `json:"label"`
	Quantity   *decimal.Decimal    `json:"quantity"`
	UnitPrice  decimal.NullDecimal `json:"unitPrice"`
	TotalPrice *decimal.Decimal    `json:"totalPrice"`
	// Amount is the older single-price schema; used only when totalPrice is absent
	Amount *decimal.Decimal `json:"amount"`
}

type wireEnvelope struct {
	Items *[]wireItem `json:"items"`
}

type decodeStrategy struct {
	tier   Tier
	decode func(raw string) ([]Item, error)
}

// strategies are tried in order; the first one without an error wins
var strategies = []decodeStrategy{
	{tier: TierObject, decode: decodeObject},
	{tier: TierArray, decode: decodeBracketedArray},
	{tier: TierWrapped, decode: decodeWrapped},
}

// Normalize recovers items from raw model output. It never fails: when no
// strategy can decode the response the result is empty.
func Normalize(raw string) []Item {
	items, _ := NormalizeTier(raw)
	return items
}

// NormalizeTier is Normalize that also reports which strategy succeeded
func NormalizeTier(raw string) ([]Item, Tier) {
	for _, s := range strategies {
		items, err := s.decode(raw)
		if err != nil {
			continue
		}
		return items, s.tier
	}
	return []Item{}, TierNone
}

func decodeObject(raw string) ([]Item, error) {
	var env wireEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, err
	}
	if env.Items == nil {
		return nil, errNoItemsField
	}
	return toItems(*env.Items)
}

func decodeBracketedArray(raw string) ([]Item, error) {
	sub, err := bracketed(raw)
	if err != nil {
		return nil, err
	}
	var wire []wireItem
	if err := json.Unmarshal([]byte(sub), &wire); err != nil {
		return nil, err
	}
	return toItems(wire)
}

// decodeWrapped looks for an items envelope the bracket search did not
// unwrap: [{"items": [...]}] or an object surrounded by prose.
func decodeWrapped(raw string) ([]Item, error) {
	if sub, err := bracketed(raw); err == nil {
		if items, err := decodeObject(sub); err == nil {
			return items, nil
		}
		if items, err := decodeEnvelopes(sub); err == nil {
			return items, nil
		}
	}

	sub, err := braced(raw)
	if err != nil {
		return nil, err
	}
	return decodeObject(sub)
}

func decodeEnvelopes(sub string) ([]Item, error) {
	var envs []wireEnvelope
	if err := json.Unmarshal([]byte(sub), &envs); err != nil {
		return nil, err
	}
	if len(envs) == 0 {
		return nil, errNoItemsField
	}

	items := make([]Item, 0)
	for _, env := range envs {
		if env.Items == nil {
			return nil, errNoItemsField
		}
		decoded, err := toItems(*env.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, decoded...)
	}
	return items, nil
}

// bracketed returns raw from the first '[' to the last ']' inclusive
func bracketed(raw string) (string, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end <= start {
		return "", errNoBrackets
	}
	return raw[start : end+1], nil
}

// braced returns raw from the first '{' to the last '}' inclusive
func braced(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return "", errNoBraces
	}
	return raw[start : end+1], nil
}

func toItems(wire []wireItem) ([]Item, error) {
	items := make([]Item, 0, len(wire))
	for i, w := range wire {
		item, err := w.toItem()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (w wireItem) toItem() (Item, error) {
	if w.Label == nil || strings.TrimSpace(*w.Label) == "" {
		return Item{}, errNoLabel
	}

	total := w.TotalPrice
	if total == nil {
		total = w.Amount
	}
	if total == nil {
		return Item{}, errNoTotal
	}
	if err := checkAmount("total price", *total); err != nil {
		return Item{}, err
	}

	quantity := decimal.NewFromInt(1)
	if w.Quantity != nil {
		if err := checkAmount("quantity", *w.Quantity); err != nil {
			return Item{}, err
		}
		quantity = *w.Quantity
	}

	if w.UnitPrice.Valid {
		if err := checkAmount("unit price", w.UnitPrice.Decimal); err != nil {
			return Item{}, err
		}
	}

	return Item{
		Label:      strings.TrimSpace(*w.Label),
		Quantity:   quantity,
		UnitPrice:  w.UnitPrice,
		TotalPrice: *total,
	}, nil
}

// checkAmount rejects negative values and values too large or too precise
// to be a receipt amount. The exponent is checked before any comparison,
// since comparing rescales both operands.
func checkAmount(name string, d decimal.Decimal) error {
	if exp := d.Exponent(); exp < -maxAmountScale || exp > maxAmountExponent {
		return fmt.Errorf("%s exponent %d: %w", name, exp, errOutOfRange)
	}
	if d.Abs().GreaterThan(maxAmount) {
		return fmt.Errorf("%s: %w", name, errOutOfRange)
	}
	if d.IsNegative() {
		return fmt.Errorf("negative %s %s", name, d)
	}
	return nil
}
