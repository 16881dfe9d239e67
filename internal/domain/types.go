// Package domain holds the entities that flow through the nine pipeline
// stages: raw community posts in, a decision-ready shortlist out.
package domain

import "time"

// SourceType distinguishes the two community platforms the pipeline mines.
type SourceType string

const (
	SourceReddit     SourceType = "reddit"
	SourceHackerNews SourceType = "hackernews"
	// SourceAligned marks a virtual cluster synthesized from an
	// AlignedProblem spanning two or more real clusters.
	SourceAligned SourceType = "aligned"
)

// Post is a raw submission fetched from a community source, before any
// filtering or extraction has run over it.
type Post struct {
	ID           int64          `json:"id"`
	SourceType   SourceType     `json:"source_type"`
	ExternalID   string         `json:"external_id"`
	Subreddit    string         `json:"subreddit,omitempty"` // empty for Hacker News
	Title        string         `json:"title"`
	Body         string         `json:"body"`
	URL          string         `json:"url"`
	Author       string         `json:"author"`
	Score        int            `json:"score"`
	NumComments  int            `json:"num_comments"`
	CreatedAt    time.Time      `json:"created_at"`
	FetchedAt    time.Time      `json:"fetched_at"`
	PlatformData map[string]any `json:"platform_data,omitempty"`
}

// Comment is a single reply fetched under a Post, capped per source at
// ingest time (20 for Reddit, 10 for Hacker News).
type Comment struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"post_id"`
	ExternalID string    `json:"external_id"`
	Body       string    `json:"body"`
	Author     string    `json:"author"`
	Score      int       `json:"score"`
	CreatedAt  time.Time `json:"created_at"`
}

// FilteredPost is the Signal Filter's verdict on one Post: whether it
// passed the composite gate, and the scores that produced the verdict.
type FilteredPost struct {
	PostID          int64     `json:"post_id"`
	Passed          bool      `json:"passed"`
	KeywordScore    float64   `json:"keyword_score"`
	PatternScore    float64   `json:"pattern_score"`
	LengthScore     float64   `json:"length_score"`
	EmotionScore    float64   `json:"emotion_score"`
	CompositeScore  float64   `json:"composite_score"`
	MatchedPatterns []string  `json:"matched_patterns,omitempty"`
	Reasons         []string  `json:"reasons,omitempty"`
	FilteredAt      time.Time `json:"filtered_at"`
}

// PainType classifies the nature of a pain point extracted from a post.
type PainType string

const (
	PainTypeManualWorkflow   PainType = "manual_workflow"
	PainTypeToolGap          PainType = "tool_gap"
	PainTypeIntegrationPain  PainType = "integration_pain"
	PainTypePricingFrustration PainType = "pricing_frustration"
	PainTypeDataLoss         PainType = "data_loss"
	PainTypeOther            PainType = "other"
)

// PainEvent is one pain point the extractor identified inside a post (and
// optionally its comments).
type PainEvent struct {
	ID                 int64     `json:"id"`
	PostID             int64     `json:"post_id"`
	PainType           PainType  `json:"pain_type"`
	Actor              string    `json:"actor"`
	ProblemSummary     string    `json:"problem_summary"`
	Context            string    `json:"context"`
	EmotionalIntensity float64   `json:"emotional_intensity"` // 0.0-1.0
	FrequencyScore     float64   `json:"frequency_score"`     // 1-10, mapped from the reported frequency phrase
	MentionedTools     []string  `json:"mentioned_tools,omitempty"`
	Workaround         string    `json:"workaround,omitempty"`
	Confidence         float64   `json:"confidence"`
	CommentsUsed       int       `json:"comments_used"`
	CreatedAt          time.Time `json:"created_at"`
}

// PainEmbedding is the vector representation of a PainEvent's extraction
// text, one row per event, persisted so repeated runs reuse the vector
// instead of paying for it again.
type PainEmbedding struct {
	PainEventID int64     `json:"pain_event_id"`
	Vector      []float32 `json:"vector"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClusterStatus is the lifecycle state of a Cluster after LLM validation.
type ClusterStatus string

const (
	ClusterStatusPending   ClusterStatus = "pending"
	ClusterStatusValidated ClusterStatus = "validated"
	ClusterStatusMerged    ClusterStatus = "merged"
	ClusterStatusDiscarded ClusterStatus = "discarded"
)

// Cluster groups pain events from a single source that DBSCAN judged to be
// the same underlying problem. ID is stable across runs: "{source}_{NN}".
type Cluster struct {
	ID                     string        `json:"id"`
	SourceType             SourceType    `json:"source_type"`
	PainEventIDs           []int64       `json:"pain_event_ids"`
	Summary                string        `json:"summary"`
	RepresentativeProblems []string      `json:"representative_problems,omitempty"`
	AvgFrequency           float64       `json:"avg_frequency"`
	UniqueAuthors          int           `json:"unique_authors"`
	UniqueSubreddits       int           `json:"unique_subreddits"`
	WorkflowConfidence     float64       `json:"workflow_confidence"` // 0.0-1.0, from LLM validation
	CoherenceScore         float64       `json:"coherence_score"`     // 0.0-1.0, from LLM summarization
	AlignedProblemID       int64         `json:"aligned_problem_id,omitempty"`
	AlignmentStatus        AlignmentStatus `json:"alignment_status"`
	Status                 ClusterStatus `json:"status"`
	CreatedAt              time.Time     `json:"created_at"`
}

// AlignmentStatus tracks a validated cluster's progress through the
// Cross-Source Aligner, independent of its validation Status.
type AlignmentStatus string

const (
	AlignmentUnprocessed AlignmentStatus = "unprocessed"
	AlignmentProcessed   AlignmentStatus = "processed"
	AlignmentAligned     AlignmentStatus = "aligned"
)

// Size reports the cluster's current event count, kept equal to
// len(PainEventIDs) by construction (TESTABLE PROPERTIES: size = |pain_event_ids|).
func (c *Cluster) Size() int { return len(c.PainEventIDs) }

// AlignedEvidence is one quote the Cross-Source Aligner cited to justify
// grouping clusters from different platforms into one AlignedProblem.
type AlignedEvidence struct {
	Source string `json:"source"`
	Quote  string `json:"quote"`
}

// AlignedProblem groups clusters from two or more source platforms that
// the Cross-Source Aligner judged to describe the same underlying
// problem despite surface differences in tone or maturity. ClusterIDs
// always spans at least two distinct platforms (TESTABLE PROPERTIES:
// |sources| >= 2).
type AlignedProblem struct {
	ID                   int64             `json:"id"`
	APCode               string            `json:"ap_code"` // "AP_01" style display id
	ClusterIDs           []string          `json:"cluster_ids"`
	PlatformSources      []string          `json:"platform_sources"` // e.g. ["reddit", "hackernews"]
	CoreProblem          string            `json:"core_problem"`
	WhyTheyLookDifferent string            `json:"why_they_look_different"`
	Evidence             []AlignedEvidence `json:"evidence,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

// MarketTier is the Opportunity Mapper's coarse sizing bucket, used by the
// Viability Scorer to normalize the "market" rule-based signal.
type MarketTier string

const (
	MarketTierNiche      MarketTier = "niche"
	MarketTierMainstream MarketTier = "mainstream"
	MarketTierEmerging   MarketTier = "emerging"
)

// Opportunity is one candidate micro-product, mapped from either a single
// validated Cluster or an AlignedProblem spanning both sources.
type Opportunity struct {
	ID                int64      `json:"id"`
	ClusterID         string     `json:"cluster_id,omitempty"`
	AlignedProblemID  int64      `json:"aligned_problem_id,omitempty"`
	Title             string     `json:"title"`
	ProblemStatement  string     `json:"problem_statement"`
	TargetUser        string     `json:"target_user"`
	ProposedSolution  string     `json:"proposed_solution"`
	MarketTier        MarketTier `json:"market_tier"`
	MentionedTools    []string   `json:"mentioned_tools,omitempty"`
	KillerRisks       []string   `json:"killer_risks,omitempty"`
	MarketScore       float64    `json:"market_score"`
	CompetitionScore  float64    `json:"competition_score"`
	ClusterScore      float64    `json:"cluster_score"`
	WorkflowScore     float64    `json:"workflow_score"`
	RubricScore       float64    `json:"rubric_score"`
	ViabilityScore    float64    `json:"viability_score"`
	Recommendation    string     `json:"recommendation,omitempty"`
	CrossSourceAligned bool      `json:"cross_source_aligned"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ShortlistEntry is one opportunity that survived the final selection
// pass, carrying the score and validation boost that earned it a slot.
type ShortlistEntry struct {
	Opportunity     Opportunity `json:"opportunity"`
	ValidationBoost float64     `json:"validation_boost"`
	FinalScore      float64     `json:"final_score"`
	Rank            int         `json:"rank"`
	Pitch           string      `json:"pitch"`
}
