package llm

import (
	"context"

	"github.com/firebase/genkit/go/ai"

	"github.com/painminer/painminer/internal/retry"
)

// Middlewares returns the model-call middleware chain applied to every
// genkit flow. The teacher's flow files all call ai.WithMiddleware(getMiddlewares()...)
// but never define getMiddlewares anywhere in the tree; this realizes that
// hook as a retry wrapper around transient model failures (timeouts,
// 429s, 5xx), matching the retry policy documented for LLM calls.
func Middlewares(policy retry.Policy) []ai.ModelMiddleware {
	return []ai.ModelMiddleware{retryMiddleware(policy)}
}

func retryMiddleware(policy retry.Policy) ai.ModelMiddleware {
	return func(next ai.ModelFunc) ai.ModelFunc {
		return func(ctx context.Context, req *ai.ModelRequest, cb ai.ModelStreamCallback) (*ai.ModelResponse, error) {
			var resp *ai.ModelResponse
			err := retry.Do(ctx, policy, func() error {
				var callErr error
				resp, callErr = next(ctx, req, cb)
				return callErr
			})
			return resp, err
		}
	}
}
