package embed

import (
	"strings"

	"github.com/painminer/painminer/internal/domain"
)

const maxEmbeddingTextLen = 2000

// InputText builds the embedding input for one pain event: actor, context,
// problem, and workaround joined with " | ", truncated conservatively and
// preferring to keep context+problem when a cut is needed.
func InputText(e *domain.PainEvent) string {
	parts := []string{e.Actor, e.Context, e.ProblemSummary, e.Workaround}
	text := strings.Join(nonEmpty(parts), " | ")
	if len(text) <= maxEmbeddingTextLen {
		return text
	}

	core := strings.Join(nonEmpty([]string{e.Context, e.ProblemSummary}), " | ")
	if len(core) > maxEmbeddingTextLen {
		return core[:maxEmbeddingTextLen]
	}
	return core
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
