package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/entity"
	"github.com/superclaims/claims-processor/internal/llm"
)

const billSystemPrompt = `You are an expert medical billing data extraction specialist with OCR text understanding.
Extract structured information from hospital bills and invoices, even from poorly formatted or scanned documents.

Rules:
- Return null ONLY if a field is genuinely not present after exhaustive search
- Numbers: digits only, no currency symbols or commas ("₹3,32,602.59" becomes 332602.59)
- Dates: always YYYY-MM-DD ("3-Feb-25" becomes "2025-02-03")
- Names: repair OCR spacing ("N ANDI RAWAT" becomes "NANDI RAWAT")
- For the total, prefer the value nearest "Total", "Grand Total", "Net Payable", "Amount Due"
- Parse itemized tables into line_items even when columns are misaligned
- Never invent data`

// Long bills get head and tail windows; totals live in the footer, patient
// identity in the header.
const (
	billChunkThreshold = 15000
	billHeadChars      = 8000
	billTailChars      = 7000
)

// BillExtractor turns bill text into a BillRecord via the tier cascade:
// model first, then deterministic patterns for remaining nulls, then
// filename inference for identity fields only.
type BillExtractor struct {
	completer llm.Completer
	logger    *slog.Logger
}

func NewBillExtractor(completer llm.Completer, logger *slog.Logger) *BillExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillExtractor{completer: completer, logger: logger}
}

type billPayload struct {
	HospitalName  *string     `json:"hospital_name"`
	TotalAmount   *jsonAmount `json:"total_amount"`
	DateOfService *string     `json:"date_of_service"`
	PatientName   *string     `json:"patient_name"`
	BillNumber    *string     `json:"bill_number"`
	LineItems     []struct {
		Description string      `json:"description"`
		Amount      *jsonAmount `json:"amount"`
	} `json:"line_items"`
}

// Extract runs the cascade over one bill section. It never returns an error:
// degraded tiers leave fields null and append to the errors slice.
func (e *BillExtractor) Extract(ctx context.Context, text, filename string) (entity.BillRecord, Provenance, []string) {
	var (
		rec  entity.BillRecord
		prov = Provenance{}
		errs []string
	)
	if !meaningfulText(text) {
		e.logger.Warn("extract.bill.no_text", "filename", filename, "chars", len(text))
		return rec, prov, errs
	}

	fixed := NormalizeOCRText(text)

	payload, err := e.extractLLM(ctx, fixed, filename)
	if err != nil {
		errs = append(errs, fmt.Sprintf("bill model extraction failed: %v", err))
		e.logger.Warn("extract.bill.llm_failed", "filename", filename, "error", err)
	} else {
		if payload.HospitalName != nil {
			setString(&rec.HospitalName, *payload.HospitalName, "hospital_name", constants.TierLLM, prov)
		}
		if payload.TotalAmount != nil {
			amt := payload.TotalAmount.Decimal
			setAmount(&rec.TotalAmount, &amt, "total_amount", constants.TierLLM, prov)
		}
		if payload.DateOfService != nil {
			setDate(&rec.DateOfService, ParseDate(*payload.DateOfService), "date_of_service", constants.TierLLM, prov)
		}
		if payload.PatientName != nil {
			setString(&rec.PatientName, *payload.PatientName, "patient_name", constants.TierLLM, prov)
		}
		if payload.BillNumber != nil {
			setString(&rec.BillNumber, *payload.BillNumber, "bill_number", constants.TierLLM, prov)
		}
		for _, li := range payload.LineItems {
			amount := decimal.Zero
			if li.Amount != nil {
				amount = li.Amount.Decimal
			}
			rec.LineItems = append(rec.LineItems, entity.LineItem{
				Description: li.Description,
				Amount:      amount,
			})
		}
		if len(rec.LineItems) > 0 {
			prov["line_items"] = constants.TierLLM
		}
	}

	// Tier 2: deterministic patterns for fields still null.
	setString(&rec.HospitalName, matchHospitalName(fixed), "hospital_name", constants.TierPattern, prov)
	setAmount(&rec.TotalAmount, matchTotalAmount(fixed), "total_amount", constants.TierPattern, prov)
	setString(&rec.PatientName, matchPatientName(fixed), "patient_name", constants.TierPattern, prov)
	setDate(&rec.DateOfService, ParseDate(firstMatch(fixed, billDatePatterns)), "date_of_service", constants.TierPattern, prov)
	setString(&rec.BillNumber, firstMatch(fixed, billNumberPatterns), "bill_number", constants.TierPattern, prov)
	if len(rec.LineItems) == 0 {
		rec.LineItems = matchLineItems(fixed)
		if len(rec.LineItems) > 0 {
			prov["line_items"] = constants.TierPattern
		}
	}

	// Tier 3: filename inference, identity fields only.
	setString(&rec.HospitalName, inferHospitalFromFilename(filename), "hospital_name", constants.TierFilename, prov)

	e.logger.Info("extract.bill.done",
		"filename", filename,
		"fields_filled", len(prov),
		"has_total", rec.TotalAmount != nil,
	)
	return rec, prov, errs
}

func (e *BillExtractor) extractLLM(ctx context.Context, text, filename string) (billPayload, error) {
	sampled := text
	if len(text) > billChunkThreshold {
		sampled = text[:billHeadChars] + "\n\n... [middle section omitted] ...\n\n" + text[len(text)-billTailChars:]
	}

	prompt := fmt.Sprintf(`Extract structured data from this hospital bill.

Filename: %s
Content:
---BEGIN DOCUMENT---
%s
---END DOCUMENT---

Return ONLY valid JSON with keys: hospital_name, total_amount, date_of_service (YYYY-MM-DD), patient_name, bill_number, line_items (array of {description, amount}). Use null for absent fields.`, filename, sampled)

	resp, err := e.completer.Complete(ctx, llm.Request{
		System:    billSystemPrompt,
		Prompt:    prompt,
		Schema:    llm.BuildBillSchema(),
		MaxTokens: 8000,
	})
	if err != nil {
		return billPayload{}, err
	}

	cleaned := llm.CleanJSONContent(resp.Content)
	if err := llm.ValidateJSONAgainstSchema(llm.BuildBillSchema(), cleaned); err != nil {
		return billPayload{}, fmt.Errorf("bill payload failed schema validation: %w", err)
	}
	var payload billPayload
	if err := json.Unmarshal(cleaned, &payload); err != nil {
		return billPayload{}, fmt.Errorf("parse bill payload: %w", err)
	}
	return payload, nil
}
