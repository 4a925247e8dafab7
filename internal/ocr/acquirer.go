package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/entity"
)

// Config controls the text-acquisition cascade.
type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Language   string // tesseract language, default "eng"
	DPI        int    // rasterization DPI for scanned PDFs, default 300
	MaxPages   int    // page cap for the OCR fallback, 0 = no limit
	TriggerMin int    // char count below which OCR kicks in, default 500
	TempDir    string // working dir for temp files; "" = system default
}

// Acquirer turns uploaded document bytes into plain text. The primary text
// layer is tried first; image-based documents (detected by a short primary
// result) go through rasterize+OCR. Acquire never fails: on total failure
// the result carries method "failed" and empty text.
type Acquirer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewAcquirer builds an Acquirer with defaults filled in.
func NewAcquirer(cfg Config, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.TriggerMin <= 0 {
		cfg.TriggerMin = 500
	}
	return &Acquirer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Acquire extracts the text of one document. The returned RawText always
// has Filename set; Method records which cascade stage produced the text.
func (a *Acquirer) Acquire(ctx context.Context, content []byte, filename string) entity.RawText {
	res := entity.RawText{Filename: filename, Method: constants.MethodFailed}

	path, cleanup, err := a.stage(content)
	if err != nil {
		a.logger.Error("ocr.acquire.stage_failed", "filename", filename, "error", err)
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}
	defer cleanup()

	text, pages, warns, err := a.pdfToText(ctx, path)
	if err != nil {
		a.logger.Warn("ocr.acquire.primary_failed", "filename", filename, "error", err)
		warns = append(warns, err.Error())
		text = ""
	}
	res.Warnings = append(res.Warnings, warns...)

	if len(strings.TrimSpace(text)) >= a.cfg.TriggerMin {
		res.Text = text
		res.Method = constants.MethodPrimary
		res.Pages = pages
		res.CharCount = len(text)
		a.logger.Info("ocr.acquire.ok",
			"filename", filename, "method", res.Method, "chars", res.CharCount, "pages", pages)
		return res
	}

	// Too little text: presume an image-based document and OCR it. OCR
	// failures degrade to the primary output rather than aborting.
	a.logger.Warn("ocr.acquire.primary_insufficient",
		"filename", filename, "chars", len(strings.TrimSpace(text)), "threshold", a.cfg.TriggerMin)

	ocrText, ocrPages, ocrWarns, err := a.pdfToOCR(ctx, path)
	res.Warnings = append(res.Warnings, ocrWarns...)
	if err != nil || strings.TrimSpace(ocrText) == "" {
		if err != nil {
			a.logger.Warn("ocr.acquire.ocr_failed", "filename", filename, "error", err)
			res.Warnings = append(res.Warnings, err.Error())
		}
		if strings.TrimSpace(text) == "" {
			return res
		}
		res.Text = text
		res.Method = constants.MethodPrimary
		res.Pages = pages
		res.CharCount = len(text)
		return res
	}

	res.Text = ocrText
	res.Method = constants.MethodOCR
	res.Pages = ocrPages
	res.CharCount = len(ocrText)
	a.logger.Info("ocr.acquire.ok",
		"filename", filename, "method", res.Method, "chars", res.CharCount, "pages", ocrPages)
	return res
}

// stage writes the uploaded bytes to a temp file the external binaries can
// read. Callers must invoke cleanup.
func (a *Acquirer) stage(content []byte) (string, func(), error) {
	f, err := os.CreateTemp(a.cfg.TempDir, "claim-doc-*.pdf")
	if err != nil {
		return "", func() {}, fmt.Errorf("stage temp file: %w", err)
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}

func (a *Acquirer) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := a.runner.Run(ctx, a.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}
	text = string(out)
	// A form-feed \f is used as page separator by default.
	pages = 1 + strings.Count(text, "\f")
	return text, pages, nil, nil
}

func (a *Acquirer) pdfToOCR(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp(a.cfg.TempDir, "claim-pp-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			a.logger.Warn("ocr.acquire.tmp_cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := a.runner.Run(ctx, a.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", a.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if a.cfg.MaxPages > 0 && len(matches) > a.cfg.MaxPages {
		matches = matches[:a.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		txt, w, err := a.tesseractOCR(ctx, img)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
		warns = append(warns, w...)
	}
	pages = len(matches)
	return b.String(), pages, warns, nil
}

func (a *Acquirer) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	// tesseract <file> stdout -l <lang> --psm 6
	args := []string{path, "stdout", "-l", a.cfg.Language, "--psm", "6"}
	out, errb, err := a.runner.Run(ctx, a.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}
