package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/superclaims/claims-processor/internal/entity"
)

// Plain-line table heuristic: a row is a description followed by a trailing
// monetary value. Only gets used when the model produced no line items.
var lineItemRow = regexp.MustCompile(`(?m)^\s*([A-Za-z][A-Za-z0-9 ()./&,-]{4,60}?)\s{2,}(?:rs\.?|inr|₹)?\s*([0-9][0-9,]*\.?\d{0,2})\s*$`)

const maxLineItems = 50

func matchLineItems(text string) []entity.LineItem {
	var items []entity.LineItem
	for _, m := range lineItemRow.FindAllStringSubmatch(text, -1) {
		desc := strings.TrimSpace(m[1])
		amt, err := decimal.NewFromString(strings.ReplaceAll(m[2], ",", ""))
		if err != nil || amt.IsZero() {
			continue
		}
		// Skip rows that are summary labels, those are captured as the total.
		lower := strings.ToLower(desc)
		if strings.Contains(lower, "total") || strings.Contains(lower, "payable") || strings.Contains(lower, "amount due") {
			continue
		}
		items = append(items, entity.LineItem{Description: desc, Amount: amt})
		if len(items) >= maxLineItems {
			break
		}
	}
	return items
}
