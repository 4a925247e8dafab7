package validate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/entity"
	"github.com/superclaims/claims-processor/internal/llm"
)

const validationSystemPrompt = `You are an insurance claim validation specialist.
Analyze the provided documents and identify any inconsistencies, missing
information, or suspicious patterns that would affect claim processing.

Consider: patient name consistency, date alignment and logical ordering,
amount reasonability, required document presence, data completeness.`

// Config carries the validation thresholds. Zero values get defaults from
// NewValidator.
type Config struct {
	// Edit distance above which two patient names are a high discrepancy.
	NameDistanceMax int
	// Amounts above this are implausible for a single hospital stay.
	AmountCeiling decimal.Decimal
	// Days the bill's service date may fall outside the admission period.
	ServiceDateBufferDays int
}

// Validator cross-checks all extracted records of one claim. Every rule runs
// independently; the narrative model pass only contributes prose and soft
// warnings, never is_valid itself.
type Validator struct {
	cfg       Config
	completer llm.Completer
	logger    *slog.Logger
}

func NewValidator(cfg Config, completer llm.Completer, logger *slog.Logger) *Validator {
	if cfg.NameDistanceMax <= 0 {
		cfg.NameDistanceMax = 3
	}
	if cfg.AmountCeiling.IsZero() {
		cfg.AmountCeiling = decimal.NewFromInt(10_000_000)
	}
	if cfg.ServiceDateBufferDays <= 0 {
		cfg.ServiceDateBufferDays = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{cfg: cfg, completer: completer, logger: logger}
}

// Validate derives a ValidationResult from the full record set of one claim.
// is_valid is: required documents present AND no high-severity discrepancy.
func (v *Validator) Validate(ctx context.Context, records []entity.ExtractedRecord) entity.ValidationResult {
	v.logger.Info("validate.start", "record_count", len(records))

	result := entity.ValidationResult{
		MissingDocuments: v.checkRequiredDocuments(records),
	}
	nameDiscrepancies, nameWarnings := v.checkNameConsistency(records)
	result.Discrepancies = append(result.Discrepancies, nameDiscrepancies...)
	result.Discrepancies = append(result.Discrepancies, v.checkDateLogic(records)...)
	result.Discrepancies = append(result.Discrepancies, v.checkAmountSanity(records)...)
	result.Warnings = append(result.Warnings, nameWarnings...)
	result.Warnings = append(result.Warnings, v.checkCompleteness(records)...)

	result.IsValid = len(result.MissingDocuments) == 0 && !result.HighSeverity()

	result.Summary = v.narrativePass(ctx, records, &result)

	v.logger.Info("validate.done",
		"is_valid", result.IsValid,
		"discrepancies", len(result.Discrepancies),
		"warnings", len(result.Warnings),
		"missing_documents", len(result.MissingDocuments),
	)
	return result
}

func (v *Validator) checkRequiredDocuments(records []entity.ExtractedRecord) []constants.DocumentKind {
	present := map[constants.DocumentKind]bool{}
	for _, r := range records {
		present[r.Kind] = true
	}
	var missing []constants.DocumentKind
	for _, kind := range constants.RequiredKinds {
		if !present[kind] {
			missing = append(missing, kind)
		}
	}
	return missing
}

// checkNameConsistency grades each name pair in one pass: distance above the
// threshold is a high discrepancy, minor drift such as honorifics or OCR
// noise stays a warning and never becomes a discrepancy.
func (v *Validator) checkNameConsistency(records []entity.ExtractedRecord) ([]entity.Discrepancy, []string) {
	type namedDoc struct {
		filename string
		name     string
	}
	var names []namedDoc
	for _, r := range records {
		if n := r.PatientName(); n != nil && strings.TrimSpace(*n) != "" {
			names = append(names, namedDoc{filename: r.Filename, name: *n})
		}
	}
	if len(names) < 2 {
		return nil, nil
	}

	var (
		out      []entity.Discrepancy
		warnings []string
	)
	ref := names[0]
	for _, nd := range names[1:] {
		dist := nameDistance(ref.name, nd.name)
		switch {
		case dist == 0:
		case dist <= v.cfg.NameDistanceMax:
			warnings = append(warnings, fmt.Sprintf("Minor patient name variation between %s and %s: %q vs %q", ref.filename, nd.filename, ref.name, nd.name))
		default:
			out = append(out, entity.Discrepancy{
				Field:       "patient_name",
				Description: fmt.Sprintf("Patient name mismatch: %q in %s vs %q in %s", nd.name, nd.filename, ref.name, ref.filename),
				Severity:    constants.SeverityHigh,
				Documents:   []string{ref.filename, nd.filename},
			})
		}
	}
	return out, warnings
}

func (v *Validator) checkDateLogic(records []entity.ExtractedRecord) []entity.Discrepancy {
	var (
		admission *entity.Date
		discharge *entity.Date
		service   *entity.Date
		billFile  string
		dsFile    string
	)
	for _, r := range records {
		switch r.Kind {
		case constants.KindDischargeSummary:
			if r.Discharge != nil {
				admission, discharge, dsFile = r.Discharge.AdmissionDate, r.Discharge.DischargeDate, r.Filename
			}
		case constants.KindBill:
			if r.Bill != nil {
				service, billFile = r.Bill.DateOfService, r.Filename
			}
		}
	}

	var out []entity.Discrepancy
	if admission != nil && discharge != nil && discharge.Before(admission.Time) {
		out = append(out, entity.Discrepancy{
			Field:       "dates",
			Description: fmt.Sprintf("Discharge date (%s) is before admission date (%s)", discharge, admission),
			Severity:    constants.SeverityHigh,
			Documents:   []string{dsFile},
		})
	}
	if service != nil && admission != nil && discharge != nil {
		lo := admission.AddDate(0, 0, -v.cfg.ServiceDateBufferDays)
		hi := discharge.AddDate(0, 0, v.cfg.ServiceDateBufferDays)
		if service.Before(lo) || service.After(hi) {
			out = append(out, entity.Discrepancy{
				Field:       "date_of_service",
				Description: fmt.Sprintf("Service date (%s) is outside admission period (%s to %s)", service, admission, discharge),
				Severity:    constants.SeverityMedium,
				Documents:   []string{billFile, dsFile},
			})
		}
	}
	return out
}

func (v *Validator) checkAmountSanity(records []entity.ExtractedRecord) []entity.Discrepancy {
	var out []entity.Discrepancy
	for _, r := range records {
		if r.Kind != constants.KindBill || r.Bill == nil || r.Bill.TotalAmount == nil {
			continue
		}
		amt := *r.Bill.TotalAmount
		switch {
		case amt.LessThanOrEqual(decimal.Zero):
			out = append(out, entity.Discrepancy{
				Field:       "total_amount",
				Description: fmt.Sprintf("Bill amount is zero or negative: %s", amt),
				Severity:    constants.SeverityHigh,
				Documents:   []string{r.Filename},
			})
		case amt.GreaterThan(v.cfg.AmountCeiling):
			out = append(out, entity.Discrepancy{
				Field:       "total_amount",
				Description: fmt.Sprintf("Bill amount is implausibly high: %s", amt),
				Severity:    constants.SeverityHigh,
				Documents:   []string{r.Filename},
			})
		}
	}
	return out
}

func (v *Validator) checkCompleteness(records []entity.ExtractedRecord) []string {
	var warnings []string
	for _, r := range records {
		var missing []string
		switch r.Kind {
		case constants.KindBill:
			if r.Bill == nil {
				continue
			}
			if r.Bill.HospitalName == nil {
				missing = append(missing, "hospital_name")
			}
			if r.Bill.TotalAmount == nil {
				missing = append(missing, "total_amount")
			}
			if r.Bill.PatientName == nil {
				missing = append(missing, "patient_name")
			}
			if r.Bill.DateOfService == nil {
				missing = append(missing, "date_of_service")
			}
		case constants.KindDischargeSummary:
			if r.Discharge == nil {
				continue
			}
			if r.Discharge.PatientName == nil {
				missing = append(missing, "patient_name")
			}
			if r.Discharge.Diagnosis == nil {
				missing = append(missing, "diagnosis")
			}
			if r.Discharge.AdmissionDate == nil {
				missing = append(missing, "admission_date")
			}
			if r.Discharge.DischargeDate == nil {
				missing = append(missing, "discharge_date")
			}
		}
		if len(missing) > 0 {
			warnings = append(warnings, fmt.Sprintf("Missing critical fields in %s: %s", r.Filename, strings.Join(missing, ", ")))
		}
	}
	return warnings
}

// narrativePass asks the model for a short quality summary. A clean claim
// skips the call; any failure degrades to an empty summary.
func (v *Validator) narrativePass(ctx context.Context, records []entity.ExtractedRecord, result *entity.ValidationResult) string {
	if len(result.Discrepancies) == 0 && len(result.MissingDocuments) == 0 && len(result.Warnings) == 0 {
		return "All rule-based validations passed. No additional concerns identified."
	}
	if v.completer == nil {
		return ""
	}

	var docs []string
	for _, r := range records {
		switch r.Kind {
		case constants.KindBill:
			if r.Bill != nil {
				docs = append(docs, fmt.Sprintf("Bill: patient=%s, amount=%s, date=%s",
					strDeref(r.Bill.PatientName), amtDeref(r.Bill.TotalAmount), dateDeref(r.Bill.DateOfService)))
			}
		case constants.KindDischargeSummary:
			if r.Discharge != nil {
				docs = append(docs, fmt.Sprintf("Discharge: patient=%s, dates=%s to %s",
					strDeref(r.Discharge.PatientName), dateDeref(r.Discharge.AdmissionDate), dateDeref(r.Discharge.DischargeDate)))
			}
		case constants.KindIDCard:
			if r.IDCard != nil {
				docs = append(docs, fmt.Sprintf("ID Card: holder=%s, policy=%s",
					strDeref(r.IDCard.PolicyHolderName), strDeref(r.IDCard.PolicyNumber)))
			}
		}
	}

	var issues []string
	for i, d := range result.Discrepancies {
		if i == 3 {
			break
		}
		issues = append(issues, d.Description)
	}

	prompt := fmt.Sprintf(`Analyze this insurance claim validation:

Documents: %s

Missing documents: %d
Discrepancies: %d
Key issues: %s

Provide a 1-2 sentence summary: overall data quality assessment and whether the claim should proceed.`,
		strings.Join(docs, "; "),
		len(result.MissingDocuments),
		len(result.Discrepancies),
		strings.Join(issues, ", "),
	)

	resp, err := v.completer.Complete(ctx, llm.Request{
		System:      validationSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		v.logger.Warn("validate.narrative_failed", "error", err)
		return ""
	}
	return strings.TrimSpace(resp.Content)
}

func strDeref(s *string) string {
	if s == nil {
		return "unknown"
	}
	return *s
}

func amtDeref(d *decimal.Decimal) string {
	if d == nil {
		return "unknown"
	}
	return d.String()
}

func dateDeref(d *entity.Date) string {
	if d == nil {
		return "unknown"
	}
	return d.String()
}
