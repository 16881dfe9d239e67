package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full set of knobs the pipeline reads at startup. Only the
// LLM and store sections are required; source credentials are optional and
// missing ones disable that source rather than failing startup.
type Config struct {
	LLM      LLMConfig        `yaml:"llm"`
	Reddit   RedditConfig     `yaml:"reddit"`
	HN       HackerNewsConfig `yaml:"hackernews"`
	Store    StoreConfig      `yaml:"store"`
	Filter    FilterConfig     `yaml:"filter"`
	Cluster   ClusterConfig    `yaml:"cluster"`
	Alignment AlignmentConfig  `yaml:"alignment"`
	Score     ScoreConfig      `yaml:"score"`
	Shortlist ShortlistConfig  `yaml:"shortlist"`
	Pipeline  PipelineConfig   `yaml:"pipeline"`
}

// LLMConfig mirrors the teacher's provider/model split: a "gemini" provider
// wired through genkit's googlegenai plugin, or a "generic" provider for
// any OpenAI-compatible chat/embeddings endpoint.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "gemini" or "generic"
	ApiKey   string `yaml:"apiKey"`

	// Models per task tier, used as fallbacks for TaskMapping.
	ModelMain   string `yaml:"modelMain"`
	ModelMedium string `yaml:"modelMedium"`
	ModelSmall  string `yaml:"modelSmall"`

	EmbeddingModel string `yaml:"embeddingModel"`

	// Generic-provider only.
	BaseURL string `yaml:"baseUrl"`
	Format  string `yaml:"format"` // "openai", "ollama", "raw"

	TaskMapping map[string]string `yaml:"taskMapping"`
}

// ModelForTask resolves a task name ("extraction", "clustering", "scoring",
// "shortlist", ...) to a concrete model name: a task_mapping override wins,
// otherwise falls back to the named tier.
func (c LLMConfig) ModelForTask(task string, tier string) string {
	if name, ok := c.TaskMapping[task]; ok && name != "" {
		return name
	}
	switch tier {
	case "small":
		return c.ModelSmall
	case "medium":
		return c.ModelMedium
	default:
		return c.ModelMain
	}
}

// RedditConfig holds OAuth2 client-credentials for the Reddit API. Empty
// ClientID/ClientSecret disables the Reddit source with a warning.
type RedditConfig struct {
	ClientID     string   `yaml:"clientId"`
	ClientSecret string   `yaml:"clientSecret"`
	UserAgent    string   `yaml:"userAgent"`
	Subreddits   []string `yaml:"subreddits"`
}

// HackerNewsConfig holds HN ingestion knobs. HN's Firebase API is
// unauthenticated, so there is no credential to validate here.
type HackerNewsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// StoreConfig points at the SQLite database file backing the pipeline.
type StoreConfig struct {
	DSN string `yaml:"dsn"`
}

// FilterConfig carries the Signal Filter's keyword families, pain-pattern
// lists, and gate thresholds.
type FilterConfig struct {
	KeywordFamilies map[string][]string `yaml:"keywordFamilies"`
	EmotionPatterns []string            `yaml:"emotionPatterns"`

	// ExclusionPatterns reject spam/promotional posts outright (gate step 2).
	ExclusionPatterns []string `yaml:"exclusionPatterns"`

	// RequiredPainPatterns and StrongSignalPatterns back the pain-pattern
	// scan (gate step 4). A post needs at least MinRequiredPatternHits from
	// the first list and MinStrongSignalHits from the second before the
	// pattern term contributes to the composite.
	RequiredPainPatterns   []string `yaml:"requiredPainPatterns"`
	StrongSignalPatterns   []string `yaml:"strongSignalPatterns"`
	MinRequiredPatternHits int      `yaml:"minRequiredPatternHits"`
	MinStrongSignalHits    int      `yaml:"minStrongSignalHits"`

	MinBodyLength int     `yaml:"minBodyLength"`
	MaxBodyLength int     `yaml:"maxBodyLength"`
	PassThreshold float64 `yaml:"passThreshold"`

	// TypeThresholds holds the per-post-type minima from gate step 7, keyed
	// by "technical", "business", "discussion", "general".
	TypeThresholds map[string]TypeThreshold `yaml:"typeThresholds"`
}

// TypeThreshold is the keyword/emotion floor a post's classified type must
// clear alongside the composite pass threshold.
type TypeThreshold struct {
	MinKeywordScore float64 `yaml:"minKeywordScore"`
	MinEmotionScore float64 `yaml:"minEmotionScore"`
}

// ClusterConfig carries per-source DBSCAN tuning, keyed by source type
// ("reddit"/"hackernews").
type ClusterConfig struct {
	Eps        map[string]float64 `yaml:"eps"`
	MinSamples map[string]int     `yaml:"minSamples"`
}

// AlignmentConfig carries the Cross-Source Aligner's batching and caching
// knobs.
type AlignmentConfig struct {
	MinClusterSize int   `yaml:"minClusterSize"`
	BatchSize      int   `yaml:"batchSize"`
	CacheMaxAgeSec int64 `yaml:"cacheMaxAgeSec"`
}

// ScoreConfig carries the Viability Scorer's pre-gate thresholds.
type ScoreConfig struct {
	MinClusterSize       int     `yaml:"minClusterSize"`
	MinUniqueAuthors     int     `yaml:"minUniqueAuthors"`
	MinCrossSubreddits   int     `yaml:"minCrossSubreddits"`
	MinAvgFrequencyScore float64 `yaml:"minAvgFrequencyScore"`
}

// ShortlistConfig carries the Decision Shortlist's hard filters and
// candidate count bounds.
type ShortlistConfig struct {
	MinTotalScore  float64  `yaml:"minTotalScore"`
	MinClusterSize int      `yaml:"minClusterSize"`
	MinTrustLevel  float64  `yaml:"minTrustLevel"`
	IgnoreList     []string `yaml:"ignoreList"`
	MinCandidates  int      `yaml:"minCandidates"`
	MaxCandidates  int      `yaml:"maxCandidates"`
	ReportDir      string   `yaml:"reportDir"`
}

// PipelineConfig holds the cooperative-scheduling pacing knobs: inter-call
// delays and retry policy, one per external dependency.
type PipelineConfig struct {
	RedditDelay        time.Duration `yaml:"redditDelay"`
	HNDelay            time.Duration `yaml:"hnDelay"`
	ExtractionDelayMin time.Duration `yaml:"extractionDelayMin"`
	ExtractionDelayMax time.Duration `yaml:"extractionDelayMax"`
	EmbeddingDelay     time.Duration `yaml:"embeddingDelay"`
	MaxRetries         int           `yaml:"maxRetries"`
	RetryBaseDelay     time.Duration `yaml:"retryBaseDelay"`
	RetryMaxDelay      time.Duration `yaml:"retryMaxDelay"`
	HTTPTimeout        time.Duration `yaml:"httpTimeout"`
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Load reads .env (if present) and the process environment into a Config,
// falling back to the Default* functions in defaults.go for anything not
// overridden by environment variables. LLM model names are the only hard
// requirement; missing source credentials degrade gracefully instead of
// failing startup.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	modelMain := os.Getenv("LLM_MODEL_MAIN")
	modelSmall := os.Getenv("LLM_MODEL_SMALL")
	if modelMain == "" {
		return nil, errors.New("LLM_MODEL_MAIN environment variable is required but not set")
	}
	if modelSmall == "" {
		return nil, errors.New("LLM_MODEL_SMALL environment variable is required but not set")
	}

	cfg := &Config{
		LLM: LLMConfig{
			Provider:       getEnvOrDefault("LLM_PROVIDER", "gemini"),
			ApiKey:         os.Getenv("LLM_API_KEY"),
			ModelMain:      modelMain,
			ModelMedium:    getEnvOrDefault("LLM_MODEL_MEDIUM", modelMain),
			ModelSmall:     modelSmall,
			EmbeddingModel: getEnvOrDefault("EMBEDDING_MODEL", "text-embedding-3-small"),
			BaseURL:        os.Getenv("LLM_BASE_URL"),
			Format:         getEnvOrDefault("LLM_FORMAT", "openai"),
		},
		Reddit: RedditConfig{
			ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
			ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
			UserAgent:    getEnvOrDefault("REDDIT_USER_AGENT", "painminer/1.0"),
		},
		HN: HackerNewsConfig{
			Enabled: true,
		},
		Store: StoreConfig{
			DSN: getEnvOrDefault("STORE_DSN", "painminer.db"),
		},
	}

	cfg.Filter = DefaultFilter()
	cfg.Cluster = DefaultCluster()
	cfg.Alignment = DefaultAlignment()
	cfg.Score = DefaultScore()
	cfg.Shortlist = DefaultShortlist()
	cfg.Pipeline = DefaultPipeline()
	cfg.Reddit.Subreddits = DefaultSubreddits()

	if err := loadYAMLOverrides(cfg, getEnvOrDefault("CONFIG_FILE", "painminer.yaml")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadYAMLOverrides merges tuning knobs (keyword families, pain patterns,
// cluster epsilons, threshold values, ...) from an optional YAML file on top
// of the Default* values already on cfg. A missing file is not an error:
// env vars and defaults already produced a usable Config. yaml.Unmarshal
// only touches fields present in the document, so secrets already read from
// the environment survive a partial file.
func loadYAMLOverrides(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// SourcesEnabled reports which sources have usable credentials, and
// whether at least one source is usable at all.
func (c *Config) SourcesEnabled() (reddit, hn, any bool) {
	reddit = c.Reddit.ClientID != "" && c.Reddit.ClientSecret != ""
	hn = c.HN.Enabled
	return reddit, hn, reddit || hn
}
