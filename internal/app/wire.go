package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/superclaims/claims-processor/internal/classify"
	"github.com/superclaims/claims-processor/internal/common"
	"github.com/superclaims/claims-processor/internal/decision"
	"github.com/superclaims/claims-processor/internal/extract"
	"github.com/superclaims/claims-processor/internal/llm"
	"github.com/superclaims/claims-processor/internal/llm/openai"
	"github.com/superclaims/claims-processor/internal/ocr"
	"github.com/superclaims/claims-processor/internal/pipeline"
	"github.com/superclaims/claims-processor/internal/validate"
)

// BuildOrchestrator wires the full pipeline from configuration: the OCR
// acquirer, the rate-gated retrying model client, the per-kind extractors,
// the validator and the decision engine.
func BuildOrchestrator(cfg *common.Config, logger *slog.Logger) (*pipeline.Orchestrator, error) {
	completer := buildCompleter(cfg.LLM, logger)

	acquirer := ocr.NewAcquirer(ocr.Config{
		Pdftotext:  cfg.OCR.Pdftotext,
		Pdftoppm:   cfg.OCR.Pdftoppm,
		Tesseract:  cfg.OCR.Tesseract,
		Language:   cfg.OCR.Language,
		DPI:        cfg.OCR.DPI,
		MaxPages:   cfg.OCR.MaxPages,
		TriggerMin: cfg.OCR.TriggerMin,
		TempDir:    cfg.OCR.TempDir,
	}, logger)

	classifier := classify.NewClassifier(classify.Config{
		SectionKeywordMin: cfg.Validation.MultiSectionKeywords,
	}, completer, logger)

	ceiling, err := decimal.NewFromString(cfg.Validation.AmountCeiling)
	if err != nil {
		return nil, fmt.Errorf("parse AMOUNT_CEILING %q: %w", cfg.Validation.AmountCeiling, err)
	}
	validator := validate.NewValidator(validate.Config{
		NameDistanceMax:       cfg.Validation.NameDistanceMax,
		AmountCeiling:         ceiling,
		ServiceDateBufferDays: cfg.Validation.ServiceDateBufferDay,
	}, completer, logger)

	return pipeline.NewOrchestrator(
		pipeline.Config{
			DocumentWorkers: int64(cfg.Pipeline.DocumentWorkers),
			ClaimTimeout:    cfg.Pipeline.ClaimTimeout,
		},
		acquirer,
		classifier,
		extract.NewBillExtractor(completer, logger),
		extract.NewDischargeExtractor(completer, logger),
		extract.NewIDCardExtractor(completer, logger),
		validator,
		decision.NewEngine(completer, logger),
		logger,
	), nil
}

// buildCompleter assembles the Completer chain: HTTP client, rate gate
// directly in front of it, retry with exponential backoff on the outside.
// The gate sits inside the retrier so every attempt, not just the first,
// waits for admission.
func buildCompleter(cfg common.LLMConfig, logger *slog.Logger) llm.Completer {
	client := openai.NewClient(openai.Config{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	}, logger)

	gated := llm.NewGate(client, cfg.RatePerSec, cfg.RateBurst)
	return llm.NewRetrier(gated, cfg.MaxRetries, 2*time.Second, logger)
}
