package receipt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-splitter/internal/extraction"
)

// ErrItemIndex is returned when a selection targets an item that does not exist
var ErrItemIndex = errors.New("item index out of range")

// Receipt is the result of one scan: the extracted items plus where they came from
type Receipt struct {
	ID          string            `json:"id"`
	Items       []extraction.Item `json:"items"`
	RawText     string            `json:"raw_text"`
	ImageData   []byte            `json:"-"`                      // Kept in blob storage, not the database
	ImageFile   string            `json:"image_file,omitempty"`   // Storage path of the image, if any
	ContentType string            `json:"content_type,omitempty"` // MIME type of the image
	Timestamp   time.Time         `json:"timestamp"`
}

// Assemble builds a receipt from extracted items. Every item starts unselected.
func Assemble(items []extraction.Item, rawText string, imageData []byte) *Receipt {
	return assembleAt(time.Now(), items, rawText, imageData)
}

func assembleAt(now time.Time, items []extraction.Item, rawText string, imageData []byte) *Receipt {
	copied := make([]extraction.Item, len(items))
	copy(copied, items)
	for i := range copied {
		copied[i].Selected = false
	}

	var image []byte
	if len(imageData) > 0 {
		image = make([]byte, len(imageData))
		copy(image, imageData)
	}

	return &Receipt{
		Items:     copied,
		RawText:   rawText,
		ImageData: image,
		Timestamp: now,
	}
}

// Total is the sum of every item's total price
func (r *Receipt) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// SelectedTotal is the sum of the selected items' total prices
func (r *Receipt) SelectedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		if item.Selected {
			total = total.Add(item.TotalPrice)
		}
	}
	return total
}

// SetSelected marks a single item as selected or not
func (r *Receipt) SetSelected(index int, selected bool) error {
	if index < 0 || index >= len(r.Items) {
		return fmt.Errorf("%w: %d", ErrItemIndex, index)
	}
	r.Items[index].Selected = selected
	return nil
}

// SetAllSelected selects or clears every item
func (r *Receipt) SetAllSelected(selected bool) {
	for i := range r.Items {
		r.Items[i].Selected = selected
	}
}

// Summary renders the selected items as shareable plain text
func (r *Receipt) Summary() string {
	var b strings.Builder
	b.WriteString("My items from the bill:\n\n")
	for _, item := range r.Items {
		if !item.Selected {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", item.Label, formatCurrency(item.TotalPrice))
	}
	fmt.Fprintf(&b, "\nTotal: %s", formatCurrency(r.SelectedTotal()))
	return b.String()
}

func formatCurrency(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
