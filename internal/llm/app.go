// Package llm is the single gateway every pipeline stage uses to talk to a
// language model, whether that model is served through Google's Gemini
// plugin or any OpenAI-compatible endpoint.
package llm

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/painminer/painminer/internal/config"
	"github.com/painminer/painminer/internal/retry"
)

// App wraps the model gateway for one LLM provider. Exactly one of g or
// generic is non-nil, selected by LLMConfig.Provider at construction time.
type App struct {
	g       *genkit.Genkit
	generic *genericClient
	cfg     config.LLMConfig
	policy  retry.Policy
}

// NewApp initializes the model gateway. A "gemini" provider routes through
// genkit's googlegenai plugin, matching the teacher's NewSecurityProxyWithGenkit
// wiring; a "generic" provider talks directly to an OpenAI-compatible
// endpoint via openai-go, since genkit carries no first-class compat plugin
// for it.
func NewApp(ctx context.Context, cfg config.LLMConfig, policy retry.Policy) (*App, error) {
	switch cfg.Provider {
	case "gemini", "":
		g := genkit.Init(
			ctx,
			genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: cfg.ApiKey}),
			genkit.WithDefaultModel("googleai/"+cfg.ModelMain),
		)
		return &App{g: g, cfg: cfg, policy: policy}, nil
	case "generic":
		opts := []option.RequestOption{option.WithAPIKey(cfg.ApiKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		client := openai.NewClient(opts...)
		return &App{generic: &genericClient{client: client}, cfg: cfg, policy: policy}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Genkit exposes the underlying genkit app for flow files that define
// genkit.DefineFlow/genkit.DefineTool. Returns nil for the generic provider;
// flows built against the generic provider call GenerateJSON directly
// instead of going through genkit.GenerateData.
func (a *App) Genkit() *genkit.Genkit { return a.g }

// ModelForTask resolves a pipeline task to a concrete model name for
// whichever provider is active.
func (a *App) ModelForTask(task, tier string) string {
	return a.cfg.ModelForTask(task, tier)
}

// Trace runs fn under a genkit.Run trace span when the gemini provider is
// active (mirroring the teacher's detective_flow.go sub-step tracing), and
// calls fn directly for the generic provider, which has no trace sink.
func Trace[T any](ctx context.Context, a *App, name string, fn func() (T, error)) (T, error) {
	if a.g != nil {
		return genkit.Run(ctx, name, fn)
	}
	return fn()
}

// GenerateJSON asks the model to produce a JSON document matching T and
// decodes it. For the gemini provider this is genkit.GenerateData[T] under
// a retry middleware; for the generic provider it is a direct chat
// completion with tolerant JSON extraction.
func GenerateJSON[T any](ctx context.Context, a *App, model, prompt string) (*T, error) {
	if a.g != nil {
		result, _, err := genkit.GenerateData[T](
			ctx, a.g,
			ai.WithModelName(model),
			ai.WithPrompt(prompt),
			ai.WithMiddleware(Middlewares(a.policy)...),
		)
		if err != nil {
			return nil, fmt.Errorf("gemini generate: %w", err)
		}
		return result, nil
	}
	return generateJSON[T](ctx, a.generic, a.policy, model, prompt)
}
