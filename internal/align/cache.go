package align

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/painminer/painminer/internal/llm"
)

func encodeForCache(candidates []llm.AlignmentCandidate) (string, error) {
	b, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("marshal alignment candidates: %w", err)
	}
	return string(b), nil
}

func decodeCached(raw string) ([]llm.AlignmentCandidate, error) {
	var candidates []llm.AlignmentCandidate
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return nil, fmt.Errorf("unmarshal cached alignment: %w", err)
	}
	return candidates, nil
}

var nowUTC = func() time.Time { return time.Now().UTC() }
