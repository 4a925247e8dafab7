package decision

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

const decisionSystemPrompt = `You are an insurance claim adjudication specialist.
Make final decisions on insurance claims based on document validation results.

Decision criteria:
1. All required documents must be present
2. No high-severity data discrepancies
3. Patient information must be consistent
4. Dates must be logical and aligned
5. Bill amounts must be reasonable

When approving, state the approved amount. When rejecting, clearly explain
the reasons. When uncertain, recommend manual review.`

// Engine turns a validated claim into a terminal ClaimDecision. Status,
// confidence and approved amount come only from the ordered rules below; the
// model contributes prose alone, with a deterministic template standing in
// when it fails.
type Engine struct {
	completer llm.Completer
	logger    *slog.Logger
}

func NewEngine(completer llm.Completer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{completer: completer, logger: logger}
}

// Decide evaluates the rules in order; the first match is terminal.
func (e *Engine) Decide(ctx context.Context, records []entity.ExtractedRecord, validation entity.ValidationResult) entity.ClaimDecision {
	status, factors, amount, confidence := applyRules(records, validation)

	reason := e.reasoning(ctx, records, validation, status, factors)

	decision := entity.ClaimDecision{
		Status:          status,
		Reason:          reason,
		Confidence:      confidence,
		DecisionFactors: factors,
	}
	if status == constants.StatusApproved {
		decision.ApprovedAmount = amount
	}

	e.logger.Info("decision.done",
		"status", status,
		"confidence", confidence,
		"factors", len(factors),
	)
	return decision
}

func applyRules(records []entity.ExtractedRecord, validation entity.ValidationResult) (constants.ClaimStatus, []string, *decimal.Decimal, float64) {
	var factors []string

	// Rule 1: missing required documents is a certain rejection.
	if len(validation.MissingDocuments) > 0 {
		names := make([]string, len(validation.MissingDocuments))
		for i, k := range validation.MissingDocuments {
			names[i] = string(k)
		}
		factors = append(factors, fmt.Sprintf("Missing required documents: %s", strings.Join(names, ", ")))
		return constants.StatusRejected, factors, nil, 1.0
	}

	// Rule 2: any high-severity discrepancy rejects, with confidence eroding
	// as the count grows (one clear problem is more certain than five noisy
	// ones).
	var high []entity.Discrepancy
	for _, d := range validation.Discrepancies {
		if d.Severity == constants.SeverityHigh {
			high = append(high, d)
		}
	}
	if len(high) > 0 {
		for _, d := range high {
			factors = append(factors, fmt.Sprintf("High-severity issue: %s", d.Description))
		}
		confidence := 0.95 - 0.05*float64(len(high)-1)
		if confidence < 0.7 {
			confidence = 0.7
		}
		return constants.StatusRejected, factors, nil, confidence
	}

	// Rule 3: warnings or lesser discrepancies defer to a human.
	if len(validation.Warnings) > 0 || len(validation.Discrepancies) > 0 {
		for i, w := range validation.Warnings {
			if i == 3 {
				break
			}
			factors = append(factors, fmt.Sprintf("Warning: %s", w))
		}
		for _, d := range validation.Discrepancies {
			factors = append(factors, fmt.Sprintf("Discrepancy (%s): %s", d.Severity, d.Description))
		}
		factors = append(factors, "Ambiguities require manual review")
		confidence := 0.8 - 0.05*float64(len(validation.Warnings)+len(validation.Discrepancies))
		if confidence < 0.5 {
			confidence = 0.5
		}
		return constants.StatusPendingReview, factors, billAmount(records), confidence
	}

	// Rule 4: clean claim approves for the bill total.
	amount := billAmount(records)
	if amount == nil {
		factors = append(factors, "No valid bill amount found")
		factors = append(factors, "Ambiguities require manual review")
		return constants.StatusPendingReview, factors, nil, 0.5
	}
	factors = append(factors,
		"All required documents present",
		"No discrepancies found",
		fmt.Sprintf("Bill amount: %s", amount),
	)
	return constants.StatusApproved, factors, amount, approvalConfidence(records)
}

func billAmount(records []entity.ExtractedRecord) *decimal.Decimal {
	for _, r := range records {
		if r.Kind == constants.KindBill && r.Bill != nil && r.Bill.TotalAmount != nil && r.Bill.TotalAmount.IsPositive() {
			return r.Bill.TotalAmount
		}
	}
	return nil
}

// approvalConfidence starts near certainty and discounts for weak document
// classification confidence.
func approvalConfidence(records []entity.ExtractedRecord) float64 {
	confidence := 0.95
	if len(records) == 0 {
		return confidence
	}
	sum := 0.0
	for _, r := range records {
		sum += r.Confidence
	}
	avg := sum / float64(len(records))
	confidence += (avg - 0.9) * 0.5
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0.8 {
		confidence = 0.8
	}
	return confidence
}

func (e *Engine) reasoning(ctx context.Context, records []entity.ExtractedRecord, validation entity.ValidationResult, status constants.ClaimStatus, factors []string) string {
	if e.completer == nil {
		return templateReason(status, factors)
	}

	var docLines []string
	for _, r := range records {
		docLines = append(docLines, fmt.Sprintf("- %s (%s)", r.Filename, r.Kind))
	}

	var instruction string
	switch status {
	case constants.StatusApproved:
		instruction = "APPROVED. Explain why this claim meets all requirements and is approved for payment."
	case constants.StatusRejected:
		instruction = "REJECTED. Explain why this claim does not meet requirements and must be rejected."
	default:
		instruction = "PENDING MANUAL REVIEW. Explain why this claim requires additional human review."
	}

	prompt := fmt.Sprintf(`This insurance claim has been %s

Documents submitted:
%s

Validation results:
- Valid: %t
- Missing documents: %d
- Issues: %d

Decision factors:
%s

Write a clear, professional 2-3 sentence explanation that states the decision
upfront and explains the key reasons, using the decision factors above.
Response format: "This claim is [status]. [Reasoning]"`,
		instruction,
		strings.Join(docLines, "\n"),
		validation.IsValid,
		len(validation.MissingDocuments),
		len(validation.Discrepancies),
		"- "+strings.Join(factors, "\n- "),
	)

	resp, err := e.completer.Complete(ctx, llm.Request{
		System:      decisionSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   500,
		Temperature: 0.2,
	})
	if err != nil {
		e.logger.Warn("decision.reasoning_failed", "error", err)
		return templateReason(status, factors)
	}

	reason := strings.TrimSpace(resp.Content)
	lower := strings.ToLower(reason)
	if !strings.HasPrefix(lower, "approved") && !strings.HasPrefix(lower, "rejected") &&
		!strings.HasPrefix(lower, "pending") && !strings.HasPrefix(lower, "this claim") {
		reason = fmt.Sprintf("This claim is %s. %s", status, reason)
	}
	return reason
}

func templateReason(status constants.ClaimStatus, factors []string) string {
	return fmt.Sprintf("This claim is %s. %s", status, strings.Join(factors, " "))
}
