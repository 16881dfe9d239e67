package llm

import (
	"context"
	"fmt"

	"github.com/painminer/painminer/internal/domain"
)

// ExtractedPainEvent is the raw shape the model returns, before
// enrichment/classification turns it into a domain.PainEvent.
type ExtractedPainEvent struct {
	Actor             string   `json:"actor"`
	Context           string   `json:"context"`
	Problem           string   `json:"problem"`
	CurrentWorkaround string   `json:"current_workaround"`
	Frequency         string   `json:"frequency"`
	EmotionalSignal   string   `json:"emotional_signal"`
	MentionedTools    []string `json:"mentioned_tools"`
	Confidence        float64  `json:"confidence"`
	EvidenceSources   []string `json:"evidence_sources"`
}

// ExtractorResponse is the Pain Extractor's raw model output.
type ExtractorResponse struct {
	Events []ExtractedPainEvent `json:"events"`
}

// ExtractPainEvents lifts structured pain events out of a single post (and
// optionally its top comments), matching the teacher's single-call flow
// shape (analyst_flow.go): build prompt, GenerateData, return.
func ExtractPainEvents(ctx context.Context, app *App, p *domain.Post, comments []*domain.Comment) (*ExtractorResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before pain extraction: %w", err)
	}

	prompt := buildExtractorPrompt(p, comments)
	model := app.ModelForTask("extraction", "main")

	return Trace(ctx, app, "extractPainEvents", func() (*ExtractorResponse, error) {
		result, err := GenerateJSON[ExtractorResponse](ctx, app, model, prompt)
		if err != nil {
			return nil, fmt.Errorf("pain extraction LLM failed: %w", err)
		}
		return result, nil
	})
}
