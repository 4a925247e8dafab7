package extract

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// jsonAmount accepts a monetary value however the model serialized it: a
// JSON number, or a string that may still carry currency noise.
type jsonAmount struct {
	decimal.Decimal
}

func (a *jsonAmount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	s = strings.Trim(s, `"`)
	s = strings.NewReplacer(",", "", "₹", "", "Rs.", "", "INR", "", " ", "").Replace(s)
	if s == "" {
		return fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", s, err)
	}
	a.Decimal = d
	return nil
}
