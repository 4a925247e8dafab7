package classify

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

const systemPrompt = `You are a medical insurance document classifier.
Your task is to identify the PRIMARY document type based on its filename and content samples.

IMPORTANT: medical PDFs often contain MULTIPLE sections. You will see samples from the
beginning, middle, and end of the document. Classify based on the DOMINANT content.

Document Types:
1. bill - hospital bills, invoices, medical bills, payment receipts
2. discharge_summary - hospital discharge summaries, medical reports, treatment summaries
3. id_card - insurance ID cards, policy cards, member cards
4. unknown - cannot determine or does not fit the above categories

Key Indicators:
- bill: invoice numbers, itemized charges, billing amounts, payment details
- discharge_summary: diagnosis, admission/discharge dates, treatment procedures, surgeon names
- id_card: member ID, policy numbers, insurance company branding

Consider the ENTIRE content provided, not just the first page.

Examples:

Filename: "apollo_hospital_bill_12345.pdf"
Content: "INVOICE... Patient Name... Total Amount... Consultation Charges..."
Type: bill

Filename: "discharge_summary_john_doe.pdf"
Content: "DISCHARGE SUMMARY... Diagnosis: Fracture... Admission Date... Treatment provided..."
Type: discharge_summary

Filename: "insurance_card_front.pdf"
Content: "MEMBER ID: 123456... Policy Number... Valid Through..."
Type: id_card

Filename: "document_001.pdf"
Content: "..."
Type: unknown`

// Window sizes for sampling long documents. Anything at or under
// sampleThreshold is sent whole.
const (
	sampleThreshold = 6000
	headWindow      = 2000
	middleWindow    = 1500
	tailWindow      = 2000
)

// Config holds the classifier's tunable threshold.
type Config struct {
	// Discharge markers required in a bill's text before a secondary
	// discharge_summary section is assumed.
	SectionKeywordMin int
}

// Classifier assigns a DocumentKind to each acquired text. The model call is
// the primary path; on any model failure it degrades to keyword and filename
// heuristics rather than failing the document.
type Classifier struct {
	cfg       Config
	completer llm.Completer
	logger    *slog.Logger
}

func NewClassifier(cfg Config, completer llm.Completer, logger *slog.Logger) *Classifier {
	if cfg.SectionKeywordMin <= 0 {
		cfg.SectionKeywordMin = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{cfg: cfg, completer: completer, logger: logger}
}

type classificationPayload struct {
	DocumentType string  `json:"document_type"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

// Classify labels one document. It never returns an error: an unclassifiable
// document comes back as KindUnknown with low confidence, and multi-section
// detection runs regardless of which path produced the label.
func (c *Classifier) Classify(ctx context.Context, filename, text string) entity.ClassifiedDocument {
	doc, err := c.classifyLLM(ctx, filename, text)
	if err != nil {
		c.logger.Warn("classify.llm_failed",
			"filename", filename,
			"error", err,
		)
		doc = fallbackClassification(filename, text)
		c.logger.Info("classify.fallback_used",
			"filename", filename,
			"kind", doc.Kind,
			"confidence", doc.Confidence,
		)
	}

	attachSections(&doc, text, c.cfg.SectionKeywordMin)

	c.logger.Info("classify.done",
		"filename", filename,
		"kind", doc.Kind,
		"confidence", doc.Confidence,
		"additional_section", doc.HasAdditionalSection,
	)
	return doc
}

func (c *Classifier) classifyLLM(ctx context.Context, filename, text string) (entity.ClassifiedDocument, error) {
	resp, err := c.completer.Complete(ctx, llm.Request{
		System:    systemPrompt,
		Prompt:    buildPrompt(filename, text),
		Schema:    llm.BuildClassificationSchema(),
		MaxTokens: 500,
	})
	if err != nil {
		return entity.ClassifiedDocument{}, err
	}

	var payload classificationPayload
	if err := json.Unmarshal(llm.CleanJSONContent(resp.Content), &payload); err != nil {
		return entity.ClassifiedDocument{}, fmt.Errorf("parse classification: %w", err)
	}

	kind := constants.ParseDocumentKind(payload.DocumentType)
	if kind == constants.KindUnknown && payload.DocumentType != string(constants.KindUnknown) {
		c.logger.Warn("classify.invalid_kind",
			"filename", filename,
			"kind", payload.DocumentType,
		)
	}

	confidence := payload.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.5
	}

	return entity.ClassifiedDocument{
		Filename:   filename,
		Kind:       kind,
		Confidence: confidence,
		Reasoning:  payload.Reasoning,
	}, nil
}

// buildPrompt samples beginning, middle and end of long documents so a
// trailing section still influences the label.
func buildPrompt(filename, text string) string {
	sampled := text
	if len(text) > sampleThreshold {
		mid := len(text) / 2
		midEnd := mid + middleWindow
		if midEnd > len(text) {
			midEnd = len(text)
		}
		sampled = fmt.Sprintf("=== BEGINNING ===\n%s\n\n=== MIDDLE ===\n%s\n\n=== END ===\n%s",
			text[:headWindow],
			text[mid:midEnd],
			text[len(text)-tailWindow:],
		)
	}

	var b strings.Builder
	b.WriteString("Classify this document:\n\n")
	b.WriteString("Filename: " + filename + "\n\n")
	b.WriteString("Content:\n" + sampled + "\n\n")
	b.WriteString(`Respond ONLY with valid JSON (no markdown):
{
  "document_type": "bill|discharge_summary|id_card|unknown",
  "confidence": 0.0-1.0,
  "reasoning": "brief explanation"
}`)
	return b.String()
}
