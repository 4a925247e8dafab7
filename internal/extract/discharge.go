package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/entity"
	"github.com/superclaims/claims-processor/internal/llm"
)

const dischargeSystemPrompt = `You are a medical records data extraction specialist.
Extract structured information from hospital discharge summaries.

Focus on: patient full name, primary diagnosis, admission date, discharge date,
treating physician, procedures performed, prescribed medications.

Dates always in YYYY-MM-DD. Maintain medical accuracy; use null when a field
is genuinely absent. Never invent data.`

const (
	dischargeChunkThreshold = 10000
	dischargeSectionChars   = 5000
	dischargeHeadChars      = 2000
	dischargeTailChars      = 5000
)

// DischargeExtractor extracts a DischargeRecord through the same cascade as
// the bill extractor. The filename tier contributes nothing here: no
// discharge field is identity-like enough to infer from a name.
type DischargeExtractor struct {
	completer llm.Completer
	logger    *slog.Logger
}

func NewDischargeExtractor(completer llm.Completer, logger *slog.Logger) *DischargeExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DischargeExtractor{completer: completer, logger: logger}
}

type dischargePayload struct {
	PatientName       *string  `json:"patient_name"`
	Diagnosis         *string  `json:"diagnosis"`
	AdmissionDate     *string  `json:"admission_date"`
	DischargeDate     *string  `json:"discharge_date"`
	TreatingPhysician *string  `json:"treating_physician"`
	Procedures        []string `json:"procedures"`
	Medications       []string `json:"medications"`
}

func (e *DischargeExtractor) Extract(ctx context.Context, text, filename string) (entity.DischargeRecord, Provenance, []string) {
	var (
		rec  entity.DischargeRecord
		prov = Provenance{}
		errs []string
	)
	if !meaningfulText(text) {
		e.logger.Warn("extract.discharge.no_text", "filename", filename, "chars", len(text))
		return rec, prov, errs
	}

	fixed := NormalizeOCRText(text)

	payload, err := e.extractLLM(ctx, fixed, filename)
	if err != nil {
		errs = append(errs, fmt.Sprintf("discharge model extraction failed: %v", err))
		e.logger.Warn("extract.discharge.llm_failed", "filename", filename, "error", err)
	} else {
		if payload.PatientName != nil {
			setString(&rec.PatientName, *payload.PatientName, "patient_name", constants.TierLLM, prov)
		}
		if payload.Diagnosis != nil {
			setString(&rec.Diagnosis, *payload.Diagnosis, "diagnosis", constants.TierLLM, prov)
		}
		if payload.AdmissionDate != nil {
			setDate(&rec.AdmissionDate, ParseDate(*payload.AdmissionDate), "admission_date", constants.TierLLM, prov)
		}
		if payload.DischargeDate != nil {
			setDate(&rec.DischargeDate, ParseDate(*payload.DischargeDate), "discharge_date", constants.TierLLM, prov)
		}
		if payload.TreatingPhysician != nil {
			setString(&rec.TreatingPhysician, *payload.TreatingPhysician, "treating_physician", constants.TierLLM, prov)
		}
		rec.Procedures = payload.Procedures
		rec.Medications = payload.Medications
		if len(rec.Procedures) > 0 {
			prov["procedures"] = constants.TierLLM
		}
		if len(rec.Medications) > 0 {
			prov["medications"] = constants.TierLLM
		}
	}

	setString(&rec.PatientName, firstMatch(fixed, dischargeNamePatterns), "patient_name", constants.TierPattern, prov)
	setString(&rec.Diagnosis, firstMatch(fixed, diagnosisPatterns), "diagnosis", constants.TierPattern, prov)
	setDate(&rec.AdmissionDate, ParseDate(firstMatch(fixed, admissionDatePatterns)), "admission_date", constants.TierPattern, prov)
	setDate(&rec.DischargeDate, ParseDate(firstMatch(fixed, dischargeDatePatterns)), "discharge_date", constants.TierPattern, prov)

	e.logger.Info("extract.discharge.done",
		"filename", filename,
		"fields_filled", len(prov),
	)
	return rec, prov, errs
}

func (e *DischargeExtractor) extractLLM(ctx context.Context, text, filename string) (dischargePayload, error) {
	sampled := text
	if len(text) > dischargeChunkThreshold {
		// Prefer the explicit discharge summary section when one exists.
		if pos := strings.Index(strings.ToLower(text), "discharge summary"); pos > 0 {
			end := pos + dischargeSectionChars
			if end > len(text) {
				end = len(text)
			}
			sampled = text[pos:end]
		} else {
			sampled = text[:dischargeHeadChars] + "\n\n... [middle] ...\n\n" + text[len(text)-dischargeTailChars:]
		}
	}

	prompt := fmt.Sprintf(`Extract structured data from this medical discharge summary.

Filename: %s
Content:
%s

Return ONLY valid JSON with keys: patient_name, diagnosis, admission_date (YYYY-MM-DD), discharge_date (YYYY-MM-DD), treating_physician, procedures (array of strings), medications (array of strings). Use null for absent fields.`, filename, sampled)

	resp, err := e.completer.Complete(ctx, llm.Request{
		System:    dischargeSystemPrompt,
		Prompt:    prompt,
		Schema:    llm.BuildDischargeSchema(),
		MaxTokens: 6000,
	})
	if err != nil {
		return dischargePayload{}, err
	}

	cleaned := llm.CleanJSONContent(resp.Content)
	if err := llm.ValidateJSONAgainstSchema(llm.BuildDischargeSchema(), cleaned); err != nil {
		return dischargePayload{}, fmt.Errorf("discharge payload failed schema validation: %w", err)
	}
	var payload dischargePayload
	if err := json.Unmarshal(cleaned, &payload); err != nil {
		return dischargePayload{}, fmt.Errorf("parse discharge payload: %w", err)
	}
	return payload, nil
}
