package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/common"
	"github.com/superclaims/claims-processor/internal/entity"
	"github.com/superclaims/claims-processor/internal/export"
)

// ClaimProcessor is the pipeline as the HTTP layer sees it.
type ClaimProcessor interface {
	Process(ctx context.Context, req entity.ClaimRequest) entity.ClaimResult
}

// Server is the thin HTTP intake over the pipeline. It validates uploads,
// assigns the claim its request id and returns the structured result; the
// pipeline itself never produces an HTTP-level failure for a parseable claim.
type Server struct {
	cfg      common.ServerConfig
	pipeline ClaimProcessor
	exporter *export.Service
	logger   *slog.Logger
	mux      *http.ServeMux
}

func New(cfg common.ServerConfig, orch ClaimProcessor, exporter *export.Service, logger *slog.Logger) *Server {
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = 10 << 20
	}
	if cfg.MaxFilesPerScan <= 0 {
		cfg.MaxFilesPerScan = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		pipeline: orch,
		exporter: exporter,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /process-claim", s.handleProcessClaim)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe blocks until ctx is cancelled, then drains in-flight
// requests before returning.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listen", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProcessClaim(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Correlation-ID")
	if requestID == "" {
		requestID = uuid.New().String()
	}
	ctx := common.WithRequestID(r.Context(), requestID)
	log := s.logger.With("request_id", requestID)

	req, err := s.parseClaim(r, requestID)
	if err != nil {
		log.Warn("server.claim.bad_request", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	log.Info("server.claim.received", "documents", len(req.Documents))

	result := s.pipeline.Process(ctx, req)

	w.Header().Set("X-Correlation-ID", requestID)
	if r.URL.Query().Get("export") == "xlsx" {
		book, err := s.exporter.ExportClaimXLSX(result)
		if err != nil {
			log.Error("server.claim.export_failed", "error", err)
			writeError(w, http.StatusInternalServerError, errors.New("audit export failed"))
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="claim-%s.xlsx"`, requestID))
		_, _ = w.Write(book)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) parseClaim(r *http.Request, requestID string) (entity.ClaimRequest, error) {
	req := entity.ClaimRequest{RequestID: requestID}

	limit := s.cfg.MaxFileBytes * int64(s.cfg.MaxFilesPerScan)
	r.Body = http.MaxBytesReader(nil, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		return req, fmt.Errorf("parse multipart form: %w", err)
	}

	files := r.MultipartForm.File["documents"]
	if len(files) == 0 {
		return req, errors.New("at least one document is required")
	}
	if len(files) > s.cfg.MaxFilesPerScan {
		return req, fmt.Errorf("too many documents: %d (max %d)", len(files), s.cfg.MaxFilesPerScan)
	}

	for _, fh := range files {
		if fh.Size > s.cfg.MaxFileBytes {
			return req, fmt.Errorf("%s exceeds the size limit of %d bytes", fh.Filename, s.cfg.MaxFileBytes)
		}
		ext := constants.NormalizeExt(filepath.Ext(fh.Filename))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			return req, fmt.Errorf("%s: unsupported file type", fh.Filename)
		}
		f, err := fh.Open()
		if err != nil {
			return req, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return req, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		req.Documents = append(req.Documents, entity.UploadedDocument{
			Filename: fh.Filename,
			Content:  content,
		})
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
