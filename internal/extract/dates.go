package extract

import (
	"strings"
	"time"

	"github.com/superclaims/claims-processor/internal/entity"
)

// Date layouts tried in order; the first successful parse wins. Ambiguous
// numeric dates (01/02/2025) resolve to the earlier layout in this list,
// which is a documented limitation rather than a bug to fix here.
var dateLayouts = []string{
	"2006-01-02",
	"02-Jan-2006",
	"02/Jan/2006",
	"02-Jan-06",
	"01/02/2006",
	"02/01/2006",
	"02-01-2006",
	"02-01-06",
}

// ParseDate parses a date string against the fixed layout list. Returns nil
// when nothing matches; callers treat that as a null field, never an error.
func ParseDate(s string) *entity.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := entity.DateOf(t)
			return &d
		}
	}
	return nil
}
