package config

import "time"

// DefaultFilter returns the Signal Filter's baseline keyword families,
// emotion patterns, and gate thresholds. Values are tuned to match the
// pipeline's documented worked examples, not arbitrary numbers.
func DefaultFilter() FilterConfig {
	return FilterConfig{
		KeywordFamilies: map[string][]string{
			"manual_workflow": {
				"every time i have to", "manually", "copy paste", "copy-paste",
				"spreadsheet", "by hand", "tedious", "repetitive",
			},
			"tool_gap": {
				"is there a tool", "does anything exist", "looking for a tool",
				"wish there was", "no good way to", "can't find a tool",
			},
			"integration_pain": {
				"doesn't integrate", "no api for", "have to export", "sync manually",
				"webhook", "zapier workaround",
			},
			"pricing_frustration": {
				"too expensive", "can't justify the price", "pricing is insane",
				"only need one feature", "paying for features i don't use",
			},
			"data_loss": {
				"lost my data", "no backup", "disappeared", "corrupted", "wiped",
			},
		},
		EmotionPatterns: []string{
			"so frustrating", "driving me crazy", "at my wit's end", "fed up",
			"rant", "vent", "why is this so hard", "i hate that",
		},
		ExclusionPatterns: []string{
			"buy now", "limited time offer", "click here", "use code",
			"dm me for", "check out my", "subscribe to my channel",
			"affiliate link", "use my referral",
		},
		RequiredPainPatterns: []string{
			"every time i have to", "every single time", "every single week",
			"every week", "every day", "wish there was", "is there a tool",
			"no good way to", "there has to be a better way",
		},
		StrongSignalPatterns: []string{
			"wasted hours", "wasted so much time", "at my wit's end",
			"driving me crazy", "so frustrating", "i hate that", "sick of",
			"fed up",
		},
		MinRequiredPatternHits: 1,
		MinStrongSignalHits:    1,
		MinBodyLength:          80,
		MaxBodyLength:          20000,
		PassThreshold:          0.3,
		TypeThresholds: map[string]TypeThreshold{
			"technical":  {MinKeywordScore: 0.15, MinEmotionScore: 0.05},
			"business":   {MinKeywordScore: 0.1, MinEmotionScore: 0.1},
			"discussion": {MinKeywordScore: 0.1, MinEmotionScore: 0.15},
			"general":    {MinKeywordScore: 0.1, MinEmotionScore: 0.1},
		},
	}
}

// DefaultCluster returns per-source DBSCAN tuning. Hacker News threads tend
// to be terser and more homogeneous than Reddit, so HN gets a tighter eps
// and a lower min_samples floor.
func DefaultCluster() ClusterConfig {
	return ClusterConfig{
		Eps: map[string]float64{
			"reddit":     0.28,
			"hackernews": 0.22,
		},
		MinSamples: map[string]int{
			"reddit":     3,
			"hackernews": 2,
		},
	}
}

// DefaultAlignment returns the Cross-Source Aligner's batching and cache
// freshness knobs.
func DefaultAlignment() AlignmentConfig {
	return AlignmentConfig{
		MinClusterSize: 3,
		BatchSize:      10,
		CacheMaxAgeSec: 7 * 24 * 60 * 60,
	}
}

// DefaultScore returns the Viability Scorer's pre-gate thresholds.
func DefaultScore() ScoreConfig {
	return ScoreConfig{
		MinClusterSize:       4,
		MinUniqueAuthors:     3,
		MinCrossSubreddits:   1,
		MinAvgFrequencyScore: 3.0,
	}
}

// DefaultShortlist returns the Decision Shortlist's hard filters and
// candidate count bounds.
func DefaultShortlist() ShortlistConfig {
	return ShortlistConfig{
		MinTotalScore:  7.0,
		MinClusterSize: 6,
		MinTrustLevel:  0.7,
		MinCandidates:  3,
		MaxCandidates:  5,
		ReportDir:      "reports",
	}
}

// DefaultPipeline returns the cooperative-scheduling pacing knobs: one
// delay/retry policy per external dependency, matching the documented
// concurrency model (no parallel workers within a stage, fixed or dynamic
// sleeps between calls).
func DefaultPipeline() PipelineConfig {
	return PipelineConfig{
		RedditDelay:        2 * time.Second,
		HNDelay:            1 * time.Second,
		ExtractionDelayMin: 3 * time.Second,
		ExtractionDelayMax: 7 * time.Second,
		EmbeddingDelay:      500 * time.Millisecond,
		MaxRetries:         5,
		RetryBaseDelay:     1 * time.Second,
		RetryMaxDelay:      120 * time.Second,
		HTTPTimeout:        10 * time.Second,
	}
}

// DefaultSubreddits is the starter watch list for the Reddit source.
func DefaultSubreddits() []string {
	return []string{
		"smallbusiness", "freelance", "sysadmin", "devops", "dataengineering",
		"productivity", "Entrepreneur", "SaaS",
	}
}

// DefaultTrustLevel maps a subreddit to a coarse trust tier used by the
// Decision Shortlist when weighing evidence from a cluster's source mix.
// Subreddits not listed here default to "standard".
func DefaultTrustLevel(subreddit string) string {
	switch subreddit {
	case "sysadmin", "devops", "dataengineering", "ExperiencedDevs":
		return "high"
	case "Entrepreneur", "SaaS", "smallbusiness":
		return "standard"
	default:
		return "standard"
	}
}

// TrustLevelScore maps a trust tier name to the numeric [0,1] trust_level
// the Decision Shortlist's hard filter and final-score formula use.
func TrustLevelScore(tier string) float64 {
	switch tier {
	case "high":
		return 0.9
	case "standard":
		return 0.7
	default:
		return 0.5
	}
}

// DefaultSubredditAudience is a coarse estimate of a subreddit's active
// membership, used by the Viability Scorer to derive a market tier
// before the 0.1% penetration estimate is applied. Hacker News has no
// per-story audience concept, so callers fall back to a flat estimate for
// that source.
func DefaultSubredditAudience(subreddit string) int {
	switch subreddit {
	case "sysadmin", "devops":
		return 800_000
	case "Entrepreneur", "SaaS":
		return 1_200_000
	case "smallbusiness":
		return 1_800_000
	case "freelance":
		return 500_000
	case "dataengineering":
		return 180_000
	case "productivity":
		return 1_100_000
	default:
		return 100_000
	}
}
