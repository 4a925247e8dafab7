package llm

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/superclaims/claims-processor/internal/common"
)

// Gate is the shared admission control in front of the language-model
// service. All concurrent claims funnel through one Gate so parallel
// document processing cannot flood the external API.
type Gate struct {
	next    Completer
	limiter *rate.Limiter
}

// NewGate wraps next with a token-bucket limiter.
func NewGate(next Completer, perSecond float64, burst int) *Gate {
	if perSecond <= 0 {
		perSecond = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &Gate{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Complete implements Completer.
func (g *Gate) Complete(ctx context.Context, req Request) (Response, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return Response{}, common.WrapError(err, "llm admission gate")
	}
	return g.next.Complete(ctx, req)
}
