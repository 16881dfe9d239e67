package llm

import (
	"fmt"
	"strings"

	"github.com/painminer/painminer/internal/domain"
)

const maxCommentCharsInPrompt = 500

// buildExtractorPrompt renders the pain-extraction prompt. When comments is
// non-empty the model is additionally told to use them for specificity and
// to report which evidence it drew on.
func buildExtractorPrompt(p *domain.Post, comments []*domain.Comment) string {
	var commentBlock strings.Builder
	if len(comments) > 0 {
		commentBlock.WriteString("\n=== TOP COMMENTS ===\n")
		for i, c := range comments {
			commentBlock.WriteString(fmt.Sprintf("%d. %s\n", i+1, truncateComment(c.Body)))
		}
	}

	commentInstruction := ""
	if len(comments) > 0 {
		commentInstruction = `Use the comments to sharpen specificity and to confirm the post's claim with
independent evidence. Set evidence_sources to ["post"], ["comments"], or
["post","comments"] depending on where the pain actually shows up.`
	} else {
		commentInstruction = `No comments are available. Set evidence_sources to ["post"].`
	}

	return fmt.Sprintf(
		`You are a literal, conservative analyst extracting concrete user pain points from
a single forum post. Do not give advice. Do not summarize generically. Only
report pain that is explicitly stated or unambiguously implied by the text.
An empty list is a valid and expected answer for posts with no real pain.

=== POST (%s) ===
Title: %s
Body: %s
%s

=== INSTRUCTIONS ===
%s

For each distinct pain event found, report:
- actor: who experiences it (role/persona, not a name)
- context: the situation/workflow it occurs in
- problem: the concrete problem, one or two sentences
- current_workaround: what they do today to cope, or "" if none mentioned
- frequency: how often it happens, in the author's own words or a short
  free-text estimate (e.g. "daily", "every sprint", "once a year")
- emotional_signal: a short phrase capturing the tone (e.g. "mild annoyance",
  "exasperated", "resigned")
- mentioned_tools: array of tool/product names mentioned
- confidence: 0.0-1.0, how confident you are this is a real, specific pain
- evidence_sources: array, subset of ["post","comments"]

=== CRITICAL OUTPUT RULES ===
1. Return ONLY valid JSON, no prose before or after.
2. Start directly with "{" and end directly with "}".
3. No markdown code fences.

Return JSON:
{
  "events": [
    {
      "actor": "...",
      "context": "...",
      "problem": "...",
      "current_workaround": "...",
      "frequency": "...",
      "emotional_signal": "...",
      "mentioned_tools": ["..."],
      "confidence": 0.0,
      "evidence_sources": ["post"]
    }
  ]
}`,
		p.SourceType, p.Title, p.Body, commentBlock.String(), commentInstruction,
	)
}

func truncateComment(body string) string {
	if len(body) <= maxCommentCharsInPrompt {
		return body
	}
	return body[:maxCommentCharsInPrompt] + "..."
}
