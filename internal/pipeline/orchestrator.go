package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/classify"
	"github.com/superclaims/claims-processor/internal/common"
	"github.com/superclaims/claims-processor/internal/entity"
	"github.com/superclaims/claims-processor/internal/extract"
)

// The orchestrator consumes its stages through interfaces so each can be
// substituted independently.
type (
	Acquirer interface {
		Acquire(ctx context.Context, content []byte, filename string) entity.RawText
	}
	Classifier interface {
		Classify(ctx context.Context, filename, text string) entity.ClassifiedDocument
	}
	BillExtractor interface {
		Extract(ctx context.Context, text, filename string) (entity.BillRecord, extract.Provenance, []string)
	}
	DischargeExtractor interface {
		Extract(ctx context.Context, text, filename string) (entity.DischargeRecord, extract.Provenance, []string)
	}
	IDCardExtractor interface {
		Extract(ctx context.Context, text, filename string) (entity.IDCardRecord, extract.Provenance, []string)
	}
	Validator interface {
		Validate(ctx context.Context, records []entity.ExtractedRecord) entity.ValidationResult
	}
	Decider interface {
		Decide(ctx context.Context, records []entity.ExtractedRecord, validation entity.ValidationResult) entity.ClaimDecision
	}
)

// Config bounds the orchestrator's concurrency and overall claim budget.
type Config struct {
	// Maximum documents in acquisition/classification at once.
	DocumentWorkers int64
	// Wall-clock budget for one claim; on expiry the orchestrator returns
	// whatever partial data it has.
	ClaimTimeout time.Duration
}

// Orchestrator drives one claim through acquisition, classification,
// extraction, validation and decision. Claims are fully independent; nothing
// here is shared across them except the admission semaphore.
type Orchestrator struct {
	cfg        Config
	acquirer   Acquirer
	classifier Classifier
	bills      BillExtractor
	discharges DischargeExtractor
	idCards    IDCardExtractor
	validator  Validator
	engine     Decider
	sem        *semaphore.Weighted
	logger     *slog.Logger
}

func NewOrchestrator(
	cfg Config,
	acquirer Acquirer,
	classifier Classifier,
	bills BillExtractor,
	discharges DischargeExtractor,
	idCards IDCardExtractor,
	validator Validator,
	engine Decider,
	logger *slog.Logger,
) *Orchestrator {
	if cfg.DocumentWorkers <= 0 {
		cfg.DocumentWorkers = 4
	}
	if cfg.ClaimTimeout <= 0 {
		cfg.ClaimTimeout = 120 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:        cfg,
		acquirer:   acquirer,
		classifier: classifier,
		bills:      bills,
		discharges: discharges,
		idCards:    idCards,
		validator:  validator,
		engine:     engine,
		sem:        semaphore.NewWeighted(cfg.DocumentWorkers),
		logger:     logger,
	}
}

// classifiedDoc pairs a document's acquisition output with its label,
// retaining the submission index for ordered assembly.
type classifiedDoc struct {
	index      int
	raw        entity.RawText
	classified entity.ClassifiedDocument
}

// Process runs the full pipeline for one claim. It always returns a
// structured result: per-document failures become error entries and a total
// absence of usable data yields a pending_review decision, never an error.
func (o *Orchestrator) Process(ctx context.Context, req entity.ClaimRequest) entity.ClaimResult {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = req.RequestID
	}
	log := o.logger.With("request_id", rid)
	log.Info("pipeline.claim.start", "document_count", len(req.Documents))

	ctx, cancel := context.WithTimeout(ctx, o.cfg.ClaimTimeout)
	defer cancel()

	result := entity.ClaimResult{RequestID: req.RequestID}

	docs, stageErrs := o.acquireAndClassify(ctx, req.Documents)
	result.Errors = append(result.Errors, stageErrs...)

	records, extractErrs := o.extractAll(ctx, docs)
	result.Errors = append(result.Errors, extractErrs...)
	result.Documents = records

	if len(records) == 0 {
		result.Validation = entity.ValidationResult{
			IsValid: false,
			Summary: "No usable documents survived acquisition and classification.",
		}
		result.Decision = entity.ClaimDecision{
			Status:          constants.StatusPendingReview,
			Reason:          "insufficient data: no document could be read or classified",
			Confidence:      1.0,
			DecisionFactors: []string{"No usable documents in claim"},
		}
		result.ProcessingTimeMS = time.Since(start).Milliseconds()
		log.Warn("pipeline.claim.no_usable_documents", "errors", len(result.Errors))
		return result
	}

	result.Validation = o.validator.Validate(ctx, records)
	result.Decision = o.engine.Decide(ctx, records, result.Validation)
	result.ProcessingTimeMS = time.Since(start).Milliseconds()

	log.Info("pipeline.claim.done",
		"status", result.Decision.Status,
		"records", len(records),
		"errors", len(result.Errors),
		"elapsed_ms", result.ProcessingTimeMS,
	)
	return result
}

// acquireAndClassify runs acquisition and classification per document under
// the worker semaphore. One slow document never stalls the others; on claim
// timeout the finished documents are returned and the rest become errors.
func (o *Orchestrator) acquireAndClassify(ctx context.Context, uploads []entity.UploadedDocument) ([]classifiedDoc, []string) {
	type outcome struct {
		doc classifiedDoc
		err error
	}
	results := make(chan outcome, len(uploads))

	for i, upload := range uploads {
		go func(idx int, up entity.UploadedDocument) {
			if err := o.sem.Acquire(ctx, 1); err != nil {
				results <- outcome{err: fmt.Errorf("%s: claim deadline reached before processing started", up.Filename)}
				return
			}
			defer o.sem.Release(1)

			raw := o.acquirer.Acquire(ctx, up.Content, up.Filename)
			if raw.Method == constants.MethodFailed {
				results <- outcome{err: fmt.Errorf("%s: %w", up.Filename, common.ErrUnreadable)}
				return
			}

			classified := o.classifier.Classify(ctx, up.Filename, raw.Text)
			results <- outcome{doc: classifiedDoc{index: idx, raw: raw, classified: classified}}
		}(i, upload)
	}

	var (
		done    []classifiedDoc
		errs    []string
		pending = len(uploads)
	)
	for pending > 0 {
		select {
		case out := <-results:
			pending--
			if out.err != nil {
				errs = append(errs, out.err.Error())
				continue
			}
			done = append(done, out.doc)
		case <-ctx.Done():
			// Best effort: whatever finished stays in; the stragglers are
			// recorded, not waited for.
			errs = append(errs, fmt.Sprintf("claim timeout: %d document(s) did not finish acquisition/classification", pending))
			pending = 0
		}
	}

	// Submission order, regardless of completion order.
	ordered := make([]classifiedDoc, 0, len(done))
	for idx := range uploads {
		for _, d := range done {
			if d.index == idx {
				ordered = append(ordered, d)
				break
			}
		}
	}
	return ordered, errs
}

// extractAll fans each classified section out to its kind's extractor. The
// extractors themselves degrade internally, so every section yields a record.
func (o *Orchestrator) extractAll(ctx context.Context, docs []classifiedDoc) ([]entity.ExtractedRecord, []string) {
	type sectionJob struct {
		doc     classifiedDoc
		section entity.Section
		primary bool
	}
	var jobs []sectionJob
	var errs []string
	for _, d := range docs {
		if d.classified.Kind == constants.KindUnknown {
			errs = append(errs, fmt.Sprintf("%s: unclassifiable document excluded from extraction", d.classified.Filename))
			continue
		}
		for _, s := range d.classified.Sections {
			jobs = append(jobs, sectionJob{
				doc:     d,
				section: s,
				primary: s.Kind == d.classified.Kind,
			})
		}
	}

	records := make([]entity.ExtractedRecord, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(int(o.cfg.DocumentWorkers))
	for i, job := range jobs {
		g.Go(func() error {
			records[i] = o.extractSection(gctx, job.doc, job.section, job.primary)
			return nil
		})
	}
	_ = g.Wait()

	return records, errs
}

func (o *Orchestrator) extractSection(ctx context.Context, doc classifiedDoc, section entity.Section, primary bool) entity.ExtractedRecord {
	rec := entity.ExtractedRecord{
		Filename:  doc.classified.Filename,
		Kind:      section.Kind,
		Reasoning: doc.classified.Reasoning,
		Method:    doc.raw.Method,
	}
	if primary {
		rec.Confidence = doc.classified.Confidence
	} else {
		rec.Confidence = classify.SecondarySectionConfidence()
	}

	switch section.Kind {
	case constants.KindBill:
		bill, prov, errs := o.bills.Extract(ctx, section.Text, doc.classified.Filename)
		rec.Bill, rec.Provenance, rec.Errors = &bill, prov, errs
	case constants.KindDischargeSummary:
		ds, prov, errs := o.discharges.Extract(ctx, section.Text, doc.classified.Filename)
		rec.Discharge, rec.Provenance, rec.Errors = &ds, prov, errs
	case constants.KindIDCard:
		card, prov, errs := o.idCards.Extract(ctx, section.Text, doc.classified.Filename)
		rec.IDCard, rec.Provenance, rec.Errors = &card, prov, errs
	}
	return rec
}
