package llm

import "context"

// Request is one completion call against the language-model service.
type Request struct {
	System      string
	Prompt      string
	Schema      map[string]any // optional JSON-Schema constraint on the output
	MaxTokens   int
	Temperature float32
}

// Response carries the raw model output. Callers validate and decode it;
// the transport layer makes no promises about well-formed JSON.
type Response struct {
	Content    string
	TokensUsed int
}

// Completer is the interface every pipeline stage depends on for language
// model calls. Implementations must classify failures as transient or
// permanent (internal/common) so the retry policy can act on them.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
