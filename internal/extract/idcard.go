package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/entity"
	"github.com/superclaims/claims-processor/internal/llm"
)

const idCardSystemPrompt = `You are an insurance document data extraction specialist.
Extract structured information from insurance ID cards and policy documents.

Focus on: policy holder name, policy/member number, insurance provider,
coverage details or plan type, validity dates.

Dates always in YYYY-MM-DD. Extract policy numbers exactly as shown. Use null
when a field is not clearly stated.`

// ID cards are short; only the leading text matters.
const idCardPreviewChars = 2000

var policyNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:policy|member)\s*(?:no|number|id)\s*[:\-]?\s*([A-Z0-9\-/]{4,30})`),
	regexp.MustCompile(`(?i)member\s*id\s*[:\-]?\s*([A-Z0-9\-/]{4,30})`),
}

var holderNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:policy\s*holder|member|insured)\s*(?:name)?\s*[:\-]\s*([A-Z][A-Za-z\s.]{3,50}?)(?:\n|\s{2,})`),
}

// IDCardExtractor follows the same cascade shape as the other extractors. ID
// cards are clean print rather than scans, so the pattern tier carries more
// weight here than it does for bills.
type IDCardExtractor struct {
	completer llm.Completer
	logger    *slog.Logger
}

func NewIDCardExtractor(completer llm.Completer, logger *slog.Logger) *IDCardExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &IDCardExtractor{completer: completer, logger: logger}
}

type idCardPayload struct {
	PolicyHolderName  *string `json:"policy_holder_name"`
	PolicyNumber      *string `json:"policy_number"`
	InsuranceProvider *string `json:"insurance_provider"`
	CoverageDetails   *string `json:"coverage_details"`
	ValidFrom         *string `json:"valid_from"`
	ValidUntil        *string `json:"valid_until"`
}

func (e *IDCardExtractor) Extract(ctx context.Context, text, filename string) (entity.IDCardRecord, Provenance, []string) {
	var (
		rec  entity.IDCardRecord
		prov = Provenance{}
		errs []string
	)
	if !meaningfulText(text) {
		e.logger.Warn("extract.idcard.no_text", "filename", filename, "chars", len(text))
		return rec, prov, errs
	}

	fixed := NormalizeOCRText(text)

	payload, err := e.extractLLM(ctx, fixed, filename)
	if err != nil {
		errs = append(errs, fmt.Sprintf("id card model extraction failed: %v", err))
		e.logger.Warn("extract.idcard.llm_failed", "filename", filename, "error", err)
	} else {
		if payload.PolicyHolderName != nil {
			setString(&rec.PolicyHolderName, *payload.PolicyHolderName, "policy_holder_name", constants.TierLLM, prov)
		}
		if payload.PolicyNumber != nil {
			setString(&rec.PolicyNumber, *payload.PolicyNumber, "policy_number", constants.TierLLM, prov)
		}
		if payload.InsuranceProvider != nil {
			setString(&rec.InsuranceProvider, *payload.InsuranceProvider, "insurance_provider", constants.TierLLM, prov)
		}
		if payload.CoverageDetails != nil {
			setString(&rec.CoverageDetails, *payload.CoverageDetails, "coverage_details", constants.TierLLM, prov)
		}
		if payload.ValidFrom != nil {
			setDate(&rec.ValidFrom, ParseDate(*payload.ValidFrom), "valid_from", constants.TierLLM, prov)
		}
		if payload.ValidUntil != nil {
			setDate(&rec.ValidUntil, ParseDate(*payload.ValidUntil), "valid_until", constants.TierLLM, prov)
		}
	}

	setString(&rec.PolicyHolderName, firstMatch(fixed, holderNamePatterns), "policy_holder_name", constants.TierPattern, prov)
	setString(&rec.PolicyNumber, firstMatch(fixed, policyNumberPatterns), "policy_number", constants.TierPattern, prov)

	e.logger.Info("extract.idcard.done",
		"filename", filename,
		"fields_filled", len(prov),
	)
	return rec, prov, errs
}

func (e *IDCardExtractor) extractLLM(ctx context.Context, text, filename string) (idCardPayload, error) {
	sampled := text
	if len(sampled) > idCardPreviewChars {
		sampled = sampled[:idCardPreviewChars]
	}

	prompt := fmt.Sprintf(`Extract structured data from this insurance ID card.

Filename: %s
Content:
%s

Return ONLY valid JSON with keys: policy_holder_name, policy_number, insurance_provider, coverage_details, valid_from (YYYY-MM-DD), valid_until (YYYY-MM-DD). Use null for absent fields.`, filename, sampled)

	resp, err := e.completer.Complete(ctx, llm.Request{
		System: idCardSystemPrompt,
		Prompt: prompt,
		Schema: llm.BuildIDCardSchema(),
	})
	if err != nil {
		return idCardPayload{}, err
	}

	cleaned := llm.CleanJSONContent(resp.Content)
	if err := llm.ValidateJSONAgainstSchema(llm.BuildIDCardSchema(), cleaned); err != nil {
		return idCardPayload{}, fmt.Errorf("id card payload failed schema validation: %w", err)
	}
	var payload idCardPayload
	if err := json.Unmarshal(cleaned, &payload); err != nil {
		return idCardPayload{}, fmt.Errorf("parse id card payload: %w", err)
	}
	return payload, nil
}
