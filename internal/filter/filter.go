// Package filter implements the Signal Filter: a rule-based heuristic gate
// that turns raw posts into scored filtered_post rows without ever calling
// an LLM.
package filter

import (
	"strings"
	"time"

	"github.com/painminer/painminer/internal/config"
	"github.com/painminer/painminer/internal/domain"
)

// familyWeight assigns each keyword family a contribution weight, mirroring
// the documented frustration/inefficiency/workflow/cost split. Families not
// listed here default to 0.7.
var familyWeight = map[string]float64{
	"manual_workflow":     0.9,
	"tool_gap":            0.8,
	"integration_pain":    0.7,
	"pricing_frustration": 0.6,
	"data_loss":           1.0,
}

const (
	lengthBonusSmall = 200
	lengthBonusLarge = 500
)

// Evaluate runs the full gate cascade against one post and returns the
// resulting filtered_post row: quality gate, exclusion gate, keyword match,
// pain-pattern scan, emotional intensity, type-specific thresholds, and the
// weighted composite. Evaluate never returns an error: every post gets a
// row, Passed reflects whether it cleared every gate.
func Evaluate(p *domain.Post, cfg config.FilterConfig) *domain.FilteredPost {
	f := &domain.FilteredPost{PostID: p.ID, FilteredAt: time.Now().UTC()}
	body := p.Title + " " + p.Body
	bodyLower := strings.ToLower(body)

	// Quality gate: reject posts too short or absurdly long before spending
	// any more cycles on them.
	if len(p.Body) < cfg.MinBodyLength {
		f.Reasons = append(f.Reasons, "below_min_length")
		return f
	}
	if len(p.Body) > cfg.MaxBodyLength {
		f.Reasons = append(f.Reasons, "above_max_length")
		return f
	}

	// Exclusion gate: spam/promotional posts are rejected outright, before
	// any scoring.
	if hit, pattern := matchesAny(bodyLower, cfg.ExclusionPatterns); hit {
		f.Reasons = append(f.Reasons, "excluded:"+pattern)
		return f
	}

	f.KeywordScore, f.Reasons = keywordScore(bodyLower, cfg.KeywordFamilies, f.Reasons)
	f.PatternScore, f.MatchedPatterns, f.Reasons = patternScore(bodyLower, cfg, f.Reasons)
	f.EmotionScore = emotionScore(bodyLower, cfg.EmotionPatterns, len(body))
	f.LengthScore = qualityBase(len(p.Body), p.Score, p.NumComments)

	f.CompositeScore = clip01(0.4*f.KeywordScore + 0.3*f.PatternScore + 0.2*f.EmotionScore + 0.1*f.LengthScore)

	thresholds := cfg.TypeThresholds[classifyPostType(p.Subreddit, p.Score, p.NumComments)]

	f.Passed = f.KeywordScore >= thresholds.MinKeywordScore &&
		f.EmotionScore >= thresholds.MinEmotionScore &&
		f.CompositeScore >= cfg.PassThreshold
	if !f.Passed {
		f.Reasons = append(f.Reasons, "below_pass_threshold")
	}
	return f
}

// keywordScore counts hits across every configured family, weights each
// family's hit ratio (hits/3, capped at 1) by its family weight, and
// normalizes the sum by the number of configured families, so a post that
// hits more families scores higher and the result stays within [0,1].
func keywordScore(bodyLower string, families map[string][]string, reasons []string) (float64, []string) {
	var weighted float64
	hitFamilies := 0
	for family, terms := range families {
		weight := familyWeight[family]
		if weight == 0 {
			weight = 0.7
		}
		hits := 0
		for _, term := range terms {
			if strings.Contains(bodyLower, term) {
				hits++
			}
		}
		if hits > 0 {
			hitFamilies++
			weighted += weight * clip01(float64(hits)/3.0)
			reasons = append(reasons, "matched_family:"+family)
		}
	}
	if hitFamilies == 0 {
		return 0, reasons
	}
	return clip01(weighted / float64(len(families))), reasons
}

// patternScore scans for the required and strong-signal pain-pattern lists.
// Both lists must clear their configured minimum hit count or the pattern
// term contributes nothing to the composite, even if the other list matched.
func patternScore(bodyLower string, cfg config.FilterConfig, reasons []string) (float64, []string, []string) {
	requiredHits, requiredMatched := countMatches(bodyLower, cfg.RequiredPainPatterns)
	strongHits, strongMatched := countMatches(bodyLower, cfg.StrongSignalPatterns)

	matched := append(requiredMatched, strongMatched...)
	if len(matched) > 0 {
		reasons = append(reasons, "matched_patterns")
	}

	minRequired := cfg.MinRequiredPatternHits
	if minRequired <= 0 {
		minRequired = 1
	}
	minStrong := cfg.MinStrongSignalHits
	if minStrong <= 0 {
		minStrong = 1
	}

	if requiredHits < minRequired || strongHits < minStrong {
		return 0, matched, reasons
	}

	requiredRatio := clip01(float64(requiredHits) / float64(minRequired))
	strongRatio := clip01(float64(strongHits) / float64(minStrong))
	return clip01(0.6*requiredRatio + 0.4*strongRatio), matched, reasons
}

func countMatches(bodyLower string, patterns []string) (int, []string) {
	var matched []string
	for _, pat := range patterns {
		if strings.Contains(bodyLower, pat) {
			matched = append(matched, pat)
		}
	}
	return len(matched), matched
}

func matchesAny(bodyLower string, patterns []string) (bool, string) {
	for _, pat := range patterns {
		if strings.Contains(bodyLower, pat) {
			return true, pat
		}
	}
	return false, ""
}

// emotionScore is a weighted hit density over an ~100-token denominator,
// clipped to [0,1].
func emotionScore(bodyLower string, patterns []string, bodyLen int) float64 {
	if len(patterns) == 0 || bodyLen == 0 {
		return 0
	}
	hits := 0
	for _, pat := range patterns {
		if strings.Contains(bodyLower, pat) {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	tokens := float64(bodyLen) / 5.0 // rough chars-per-token estimate
	denom := tokens / 100.0
	if denom < 1 {
		denom = 1
	}
	return clip01(float64(hits) / denom * 2.0)
}

// qualityBase blends a base quality signal (upvotes/comments) with bonuses
// at the two documented length thresholds. It is the composite's
// quality_base term, independent of any pain-specific signal.
func qualityBase(bodyLen, score, numComments int) float64 {
	base := clip01(float64(score)/50.0)*0.6 + clip01(float64(numComments)/20.0)*0.4
	bonus := 0.0
	if bodyLen >= lengthBonusSmall {
		bonus += 0.15
	}
	if bodyLen >= lengthBonusLarge {
		bonus += 0.15
	}
	return clip01(base + bonus)
}

// classifyPostType buckets a post into the type whose thresholds govern its
// pass rule: known technical/business subreddits route directly, a high
// comment-to-score ratio (lots of discussion relative to upvotes) reads as
// "discussion", and everything else falls back to "general".
func classifyPostType(subreddit string, score, numComments int) string {
	switch subreddit {
	case "sysadmin", "devops", "dataengineering", "ExperiencedDevs":
		return "technical"
	case "Entrepreneur", "SaaS", "smallbusiness", "freelance":
		return "business"
	}
	if score > 0 && float64(numComments)/float64(score) > 0.5 {
		return "discussion"
	}
	return "general"
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
