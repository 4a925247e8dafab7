package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/common"
	"github.com/superclaims/claims-processor/internal/entity"
	"github.com/superclaims/claims-processor/internal/extract"
)

// Stage fakes. Acquisition and classification key off the filename so each
// test document can take its own path through the pipeline.

type fakeAcquirer struct {
	delay    time.Duration
	failFor  map[string]bool
	acquired atomic.Int32
}

func (f *fakeAcquirer) Acquire(ctx context.Context, _ []byte, filename string) entity.RawText {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return entity.RawText{Filename: filename, Method: constants.MethodFailed}
		}
	}
	f.acquired.Add(1)
	if f.failFor[filename] {
		return entity.RawText{Filename: filename, Method: constants.MethodFailed}
	}
	return entity.RawText{
		Filename:  filename,
		Text:      "text of " + filename,
		Method:    constants.MethodPrimary,
		CharCount: 1000,
	}
}

type fakeClassifier struct {
	kinds    map[string]constants.DocumentKind
	sections map[string][]entity.Section
}

func (f *fakeClassifier) Classify(_ context.Context, filename, text string) entity.ClassifiedDocument {
	kind, ok := f.kinds[filename]
	if !ok {
		kind = constants.KindUnknown
	}
	doc := entity.ClassifiedDocument{
		Filename:   filename,
		Kind:       kind,
		Confidence: 0.9,
		Sections:   []entity.Section{{Kind: kind, Text: text}},
	}
	if extra, ok := f.sections[filename]; ok {
		doc.Sections = extra
		doc.HasAdditionalSection = len(extra) > 1
	}
	return doc
}

type fakeBillExtractor struct{ calls atomic.Int32 }

func (f *fakeBillExtractor) Extract(_ context.Context, _, _ string) (entity.BillRecord, extract.Provenance, []string) {
	f.calls.Add(1)
	name := "Mary Philo"
	return entity.BillRecord{PatientName: &name}, extract.Provenance{"patient_name": constants.TierLLM}, nil
}

type fakeDischargeExtractor struct{ calls atomic.Int32 }

func (f *fakeDischargeExtractor) Extract(_ context.Context, _, _ string) (entity.DischargeRecord, extract.Provenance, []string) {
	f.calls.Add(1)
	return entity.DischargeRecord{}, extract.Provenance{}, nil
}

type fakeIDCardExtractor struct{ calls atomic.Int32 }

func (f *fakeIDCardExtractor) Extract(_ context.Context, _, _ string) (entity.IDCardRecord, extract.Provenance, []string) {
	f.calls.Add(1)
	return entity.IDCardRecord{}, extract.Provenance{}, nil
}

type fakeValidator struct{ result entity.ValidationResult }

func (f *fakeValidator) Validate(_ context.Context, _ []entity.ExtractedRecord) entity.ValidationResult {
	return f.result
}

type fakeDecider struct{ decision entity.ClaimDecision }

func (f *fakeDecider) Decide(_ context.Context, _ []entity.ExtractedRecord, _ entity.ValidationResult) entity.ClaimDecision {
	return f.decision
}

func newTestOrchestrator(cfg Config, acq Acquirer, cls Classifier) (*Orchestrator, *fakeBillExtractor, *fakeDischargeExtractor, *fakeIDCardExtractor) {
	bills := &fakeBillExtractor{}
	discharges := &fakeDischargeExtractor{}
	idCards := &fakeIDCardExtractor{}
	orch := NewOrchestrator(
		cfg,
		acq,
		cls,
		bills,
		discharges,
		idCards,
		&fakeValidator{result: entity.ValidationResult{IsValid: true}},
		&fakeDecider{decision: entity.ClaimDecision{Status: constants.StatusApproved, Confidence: 0.95}},
		nil,
	)
	return orch, bills, discharges, idCards
}

func uploads(names ...string) []entity.UploadedDocument {
	docs := make([]entity.UploadedDocument, len(names))
	for i, n := range names {
		docs[i] = entity.UploadedDocument{Filename: n, Content: []byte("%PDF-1.4")}
	}
	return docs
}

func TestOrchestrator_HappyPath(t *testing.T) {
	acq := &fakeAcquirer{}
	cls := &fakeClassifier{kinds: map[string]constants.DocumentKind{
		"bill.pdf":      constants.KindBill,
		"discharge.pdf": constants.KindDischargeSummary,
		"card.pdf":      constants.KindIDCard,
	}}
	orch, bills, discharges, idCards := newTestOrchestrator(Config{}, acq, cls)

	result := orch.Process(context.Background(), entity.ClaimRequest{
		RequestID: "req-1",
		Documents: uploads("bill.pdf", "discharge.pdf", "card.pdf"),
	})

	if result.RequestID != "req-1" {
		t.Errorf("request id = %q", result.RequestID)
	}
	if len(result.Documents) != 3 {
		t.Fatalf("records = %d, want 3", len(result.Documents))
	}
	if bills.calls.Load() != 1 || discharges.calls.Load() != 1 || idCards.calls.Load() != 1 {
		t.Errorf("extractor calls = %d/%d/%d, want 1/1/1", bills.calls.Load(), discharges.calls.Load(), idCards.calls.Load())
	}
	if result.Decision.Status != constants.StatusApproved {
		t.Errorf("status = %s", result.Decision.Status)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if result.ProcessingTimeMS < 0 {
		t.Errorf("processing time = %d", result.ProcessingTimeMS)
	}
}

func TestOrchestrator_SubmissionOrderPreserved(t *testing.T) {
	names := []string{"c.pdf", "a.pdf", "b.pdf", "d.pdf"}
	kinds := map[string]constants.DocumentKind{}
	for _, n := range names {
		kinds[n] = constants.KindBill
	}
	// A small worker pool plus per-document work makes completion order
	// diverge from submission order.
	acq := &fakeAcquirer{delay: 5 * time.Millisecond}
	orch, _, _, _ := newTestOrchestrator(Config{DocumentWorkers: 2}, acq, &fakeClassifier{kinds: kinds})

	result := orch.Process(context.Background(), entity.ClaimRequest{
		RequestID: "req-order",
		Documents: uploads(names...),
	})

	if len(result.Documents) != len(names) {
		t.Fatalf("records = %d, want %d", len(result.Documents), len(names))
	}
	for i, rec := range result.Documents {
		if rec.Filename != names[i] {
			t.Errorf("record %d = %s, want %s", i, rec.Filename, names[i])
		}
	}
}

func TestOrchestrator_MultiSectionFanOut(t *testing.T) {
	acq := &fakeAcquirer{}
	cls := &fakeClassifier{
		kinds: map[string]constants.DocumentKind{
			"combined.pdf":  constants.KindBill,
			"discharge.pdf": constants.KindDischargeSummary,
		},
		sections: map[string][]entity.Section{
			"combined.pdf": {
				{Kind: constants.KindBill, Text: "bill part"},
				{Kind: constants.KindDischargeSummary, Text: "discharge part"},
			},
		},
	}
	orch, bills, discharges, _ := newTestOrchestrator(Config{}, acq, cls)

	result := orch.Process(context.Background(), entity.ClaimRequest{
		RequestID: "req-2",
		Documents: uploads("combined.pdf", "discharge.pdf"),
	})

	if len(result.Documents) != 3 {
		t.Fatalf("records = %d, want 3 (two sections + one standalone)", len(result.Documents))
	}
	if bills.calls.Load() != 1 || discharges.calls.Load() != 2 {
		t.Errorf("extractor calls = bills %d, discharges %d, want 1 and 2", bills.calls.Load(), discharges.calls.Load())
	}

	// The secondary section keeps the source filename with a distinct kind
	// and the fixed secondary confidence.
	var secondary *entity.ExtractedRecord
	for i := range result.Documents {
		rec := &result.Documents[i]
		if rec.Filename == "combined.pdf" && rec.Kind == constants.KindDischargeSummary {
			secondary = rec
		}
	}
	if secondary == nil {
		t.Fatal("no discharge record derived from the combined document")
	}
	if secondary.Confidence != 0.85 {
		t.Errorf("secondary confidence = %f, want 0.85", secondary.Confidence)
	}
}

func TestOrchestrator_UnreadableDocumentContinues(t *testing.T) {
	acq := &fakeAcquirer{failFor: map[string]bool{"corrupt.pdf": true}}
	cls := &fakeClassifier{kinds: map[string]constants.DocumentKind{
		"bill.pdf":      constants.KindBill,
		"discharge.pdf": constants.KindDischargeSummary,
	}}
	orch, _, _, _ := newTestOrchestrator(Config{}, acq, cls)

	result := orch.Process(context.Background(), entity.ClaimRequest{
		RequestID: "req-3",
		Documents: uploads("corrupt.pdf", "bill.pdf", "discharge.pdf"),
	})

	if len(result.Documents) != 2 {
		t.Fatalf("records = %d, want 2 surviving documents", len(result.Documents))
	}
	var recorded bool
	for _, e := range result.Errors {
		if strings.Contains(e, "corrupt.pdf") && strings.Contains(e, "unreadable") {
			recorded = true
		}
	}
	if !recorded {
		t.Errorf("failed acquisition not recorded as unreadable: %v", result.Errors)
	}
	if result.Decision.Status != constants.StatusApproved {
		t.Errorf("partial failure blocked the claim: %s", result.Decision.Status)
	}
}

func TestOrchestrator_UnknownKindExcluded(t *testing.T) {
	acq := &fakeAcquirer{}
	cls := &fakeClassifier{kinds: map[string]constants.DocumentKind{
		"bill.pdf": constants.KindBill,
		// mystery.pdf classifies as unknown.
	}}
	orch, bills, _, _ := newTestOrchestrator(Config{}, acq, cls)

	result := orch.Process(context.Background(), entity.ClaimRequest{
		RequestID: "req-4",
		Documents: uploads("bill.pdf", "mystery.pdf"),
	})

	if len(result.Documents) != 1 {
		t.Fatalf("records = %d, want 1", len(result.Documents))
	}
	if bills.calls.Load() != 1 {
		t.Errorf("bill extractor calls = %d, want 1", bills.calls.Load())
	}
	var excluded bool
	for _, e := range result.Errors {
		if strings.Contains(e, "mystery.pdf") {
			excluded = true
		}
	}
	if !excluded {
		t.Errorf("unknown document exclusion not recorded: %v", result.Errors)
	}
}

func TestOrchestrator_NoUsableDocuments(t *testing.T) {
	acq := &fakeAcquirer{failFor: map[string]bool{"a.pdf": true, "b.pdf": true}}
	orch, _, _, _ := newTestOrchestrator(Config{}, acq, &fakeClassifier{})

	result := orch.Process(context.Background(), entity.ClaimRequest{
		RequestID: "req-5",
		Documents: uploads("a.pdf", "b.pdf"),
	})

	if result.Decision.Status != constants.StatusPendingReview {
		t.Fatalf("status = %s, want pending_review", result.Decision.Status)
	}
	if !strings.Contains(result.Decision.Reason, "insufficient data") {
		t.Errorf("reason = %q, want insufficient data", result.Decision.Reason)
	}
	if result.Validation.IsValid {
		t.Error("empty claim validated as valid")
	}
	if len(result.Errors) != 2 {
		t.Errorf("errors = %v, want one per failed document", result.Errors)
	}
}

func TestOrchestrator_LogsContextCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	orch := NewOrchestrator(
		Config{},
		&fakeAcquirer{},
		&fakeClassifier{kinds: map[string]constants.DocumentKind{"bill.pdf": constants.KindBill}},
		&fakeBillExtractor{},
		&fakeDischargeExtractor{},
		&fakeIDCardExtractor{},
		&fakeValidator{result: entity.ValidationResult{IsValid: true}},
		&fakeDecider{decision: entity.ClaimDecision{Status: constants.StatusApproved}},
		logger,
	)

	ctx := common.WithRequestID(context.Background(), "corr-from-ctx")
	orch.Process(ctx, entity.ClaimRequest{RequestID: "req-fallback", Documents: uploads("bill.pdf")})

	if !strings.Contains(buf.String(), "request_id=corr-from-ctx") {
		t.Errorf("log output does not carry the context correlation id:\n%s", buf.String())
	}
}

func TestOrchestrator_ClaimTimeoutBestEffort(t *testing.T) {
	// Documents one worker wide, each slower than the claim budget allows
	// for all of them: the first finishes, the rest are recorded as errors.
	acq := &fakeAcquirer{delay: 60 * time.Millisecond}
	kinds := map[string]constants.DocumentKind{
		"a.pdf": constants.KindBill,
		"b.pdf": constants.KindBill,
		"c.pdf": constants.KindBill,
	}
	orch, _, _, _ := newTestOrchestrator(Config{
		DocumentWorkers: 1,
		ClaimTimeout:    100 * time.Millisecond,
	}, acq, &fakeClassifier{kinds: kinds})

	start := time.Now()
	result := orch.Process(context.Background(), entity.ClaimRequest{
		RequestID: "req-6",
		Documents: uploads("a.pdf", "b.pdf", "c.pdf"),
	})
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Fatalf("orchestrator did not honor the claim budget: %s", elapsed)
	}
	if len(result.Documents) >= 3 {
		t.Errorf("all documents finished despite the timeout: %d", len(result.Documents))
	}
	var timedOut bool
	for _, e := range result.Errors {
		if strings.Contains(e, "timeout") || strings.Contains(e, "deadline") {
			timedOut = true
		}
	}
	if !timedOut {
		t.Errorf("timeout not recorded in errors: %v", result.Errors)
	}
}
