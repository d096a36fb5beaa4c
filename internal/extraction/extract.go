package extraction

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// itemLineRe matches "<quantity> <label> [$]<price>", e.g. "2 Burger 12.99"
var itemLineRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s+(.+?)\s+\$?(\d+\.\d{2})$`)

// Extract turns candidate lines into items. Lines that do not look like
// "<quantity> <label> <price>" are skipped.
func Extract(lines []string) []Item {
	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		item, ok := extractLine(line)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

func extractLine(line string) (Item, bool) {
	match := itemLineRe.FindStringSubmatch(line)
	if match == nil {
		return Item{}, false
	}

	quantity, err := decimal.NewFromString(match[1])
	if err != nil {
		return Item{}, false
	}
	total, err := decimal.NewFromString(match[3])
	if err != nil {
		return Item{}, false
	}

	label := strings.TrimSpace(match[2])
	if label == "" {
		return Item{}, false
	}

	return Item{
		Label:      label,
		Quantity:   quantity,
		UnitPrice:  unitPrice(total, quantity),
		TotalPrice: total,
	}, true
}
