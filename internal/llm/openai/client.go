package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/superclaims/claims-processor/internal/common"
	"github.com/superclaims/claims-processor/internal/llm"
)

// Client talks to an OpenAI-compatible chat/completions endpoint. It is the
// only Completer that leaves the process; wrap it with llm.NewGate and
// llm.NewRetrier at wiring time.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient builds a Client. The http.Client carries the call timeout.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	cfg.setDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

// Complete implements llm.Completer. Failures are classified so the retry
// layer acts correctly: 429/5xx and network errors are transient; refusals,
// content filtering and malformed payloads are permanent.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	rid := uuid.New().String()
	start := time.Now()

	messages := []map[string]any{}
	if req.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.System})
	}
	user := req.Prompt
	if req.Schema != nil {
		user += "\n\nReturn ONLY JSON that matches this schema. No markdown, no explanations.\nJSON Schema:\n" + mustJSON(req.Schema)
	}
	messages = append(messages, map[string]any{"role": "user", "content": user})

	temp := req.Temperature
	if temp == 0 {
		temp = c.cfg.Temperature
	}
	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": temp,
		"messages":    messages,
	}
	if req.Schema != nil {
		body["response_format"] = map[string]any{"type": "json_object"}
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}

	c.log.Info("llm.complete.request",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", temp,
		"prompt_len", len(req.Prompt),
		"structured", req.Schema != nil,
	)

	raw, err := c.post(ctx, strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions", body)
	if err != nil {
		c.log.Error("llm.complete.http_error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.Response{}, err
	}

	var cc struct {
		Choices []struct {
			FinishReason string `json:"finish_reason"`
			Message      struct {
				Content string `json:"content"`
				Refusal string `json:"refusal"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.complete.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds())
		return llm.Response{}, common.Permanent(fmt.Errorf("decode response: %w", err))
	}
	if len(cc.Choices) == 0 {
		return llm.Response{}, common.Permanent(fmt.Errorf("no choices in response"))
	}

	choice := cc.Choices[0]
	if choice.Message.Refusal != "" || choice.FinishReason == "content_filter" {
		// Refusals do not improve on retry; the caller falls through to
		// the next cascade tier instead.
		c.log.Warn("llm.complete.refused",
			"req_id", rid, "finish_reason", choice.FinishReason,
			"elapsed_ms", time.Since(start).Milliseconds())
		return llm.Response{}, common.Permanent(fmt.Errorf("model refused request: %s", choice.FinishReason))
	}

	c.log.Info("llm.complete.ok",
		"req_id", rid,
		"content_len", len(choice.Message.Content),
		"tokens", cc.Usage.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.Response{
		Content:    strings.TrimSpace(choice.Message.Content),
		TokensUsed: cc.Usage.TotalTokens,
	}, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, common.Permanent(fmt.Errorf("marshal request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, common.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, common.Transient(fmt.Errorf("llm http error: %w", err))
	}
	defer func(Body io.ReadCloser) {
		if cerr := Body.Close(); cerr != nil {
			c.log.Warn("llm response body close error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return buf.Bytes(), nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, common.Transient(fmt.Errorf("llm status %d: %s", resp.StatusCode, buf.String()))
	default:
		return nil, common.Permanent(fmt.Errorf("llm status %d: %s", resp.StatusCode, buf.String()))
	}
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
