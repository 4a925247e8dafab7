package extract

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/entity"
)

// Provenance records which cascade tier produced each non-null field.
type Provenance map[string]constants.ExtractionTier

// The set helpers implement the cascade contract: a later tier never
// overwrites a value an earlier tier produced, and empty values never claim
// a provenance slot.

func setString(dst **string, v string, field string, tier constants.ExtractionTier, prov Provenance) {
	if *dst != nil {
		return
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	*dst = &v
	prov[field] = tier
}

func setAmount(dst **decimal.Decimal, v *decimal.Decimal, field string, tier constants.ExtractionTier, prov Provenance) {
	if *dst != nil || v == nil {
		return
	}
	*dst = v
	prov[field] = tier
}

func setDate(dst **entity.Date, v *entity.Date, field string, tier constants.ExtractionTier, prov Provenance) {
	if *dst != nil || v == nil {
		return
	}
	*dst = v
	prov[field] = tier
}

// meaningfulText reports whether there is enough text to extract from.
// Below this the tiers would only hallucinate structure out of noise.
func meaningfulText(text string) bool {
	return len(strings.TrimSpace(text)) >= 10
}
