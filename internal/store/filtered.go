package store

import (
	"fmt"

	"github.com/painminer/painminer/internal/domain"
)

// SaveFilterResult records the Signal Filter's verdict for a post. A post
// is filtered at most once; a second call overwrites the prior verdict,
// which only happens if filtering is deliberately re-run.
func (s *Store) SaveFilterResult(f *domain.FilteredPost) error {
	reasons, err := toJSON(f.Reasons)
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}
	matchedPatterns, err := toJSON(f.MatchedPatterns)
	if err != nil {
		return fmt.Errorf("marshal matched patterns: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO filtered_posts
		(post_id, passed, keyword_score, pattern_score, length_score, emotion_score, composite_score,
		 matched_patterns, reasons, filtered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(post_id) DO UPDATE SET
			passed=excluded.passed, keyword_score=excluded.keyword_score, pattern_score=excluded.pattern_score,
			length_score=excluded.length_score, emotion_score=excluded.emotion_score,
			composite_score=excluded.composite_score, matched_patterns=excluded.matched_patterns,
			reasons=excluded.reasons, filtered_at=excluded.filtered_at`,
		f.PostID, f.Passed, f.KeywordScore, f.PatternScore, f.LengthScore, f.EmotionScore, f.CompositeScore,
		matchedPatterns, reasons, formatTime(f.FilteredAt))
	if err != nil {
		return fmt.Errorf("save filter result: %w", err)
	}
	return nil
}
