// claims-batch processes every PDF in a directory as one claim and prints
// the structured result, optionally writing an XLSX audit workbook. Useful
// for exercising the pipeline without the HTTP layer.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/superclaims/claims-processor/internal/app"
	"github.com/superclaims/claims-processor/internal/common"
	"github.com/superclaims/claims-processor/internal/entity"
	"github.com/superclaims/claims-processor/internal/export"
)

func main() {
	dir := flag.String("dir", ".", "directory containing the claim's PDF documents")
	xlsxOut := flag.String("xlsx", "", "optional path to write the XLSX audit workbook")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req, err := loadClaim(*dir)
	if err != nil {
		logger.Error("load claim", "error", err)
		os.Exit(1)
	}
	logger.Info("claim loaded", "request_id", req.RequestID, "documents", len(req.Documents))

	orch, err := app.BuildOrchestrator(cfg, logger)
	if err != nil {
		logger.Error("wiring failed", "error", err)
		os.Exit(1)
	}

	result := orch.Process(ctx, req)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}

	if *xlsxOut != "" {
		book, err := export.NewService(logger).ExportClaimXLSX(result)
		if err != nil {
			logger.Error("export failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxOut, book, 0o644); err != nil {
			logger.Error("write workbook", "error", err)
			os.Exit(1)
		}
		logger.Info("workbook written", "path", *xlsxOut)
	}
}

func loadClaim(dir string) (entity.ClaimRequest, error) {
	req := entity.ClaimRequest{RequestID: uuid.New().String()}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return req, fmt.Errorf("read directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	if len(names) == 0 {
		return req, fmt.Errorf("no PDF documents in %s", dir)
	}

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return req, fmt.Errorf("read %s: %w", name, err)
		}
		req.Documents = append(req.Documents, entity.UploadedDocument{Filename: name, Content: content})
	}
	return req, nil
}
