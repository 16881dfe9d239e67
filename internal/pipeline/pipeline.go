// Package pipeline wires the nine mining stages into one cooperative,
// single-threaded driver: each stage runs to completion before the next
// starts, matching the teacher's detective_flow.go sequential-with-
// graceful-degradation shape rather than any worker-pool concurrency.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/painminer/painminer/internal/align"
	"github.com/painminer/painminer/internal/cluster"
	"github.com/painminer/painminer/internal/config"
	"github.com/painminer/painminer/internal/domain"
	"github.com/painminer/painminer/internal/embed"
	"github.com/painminer/painminer/internal/extract"
	"github.com/painminer/painminer/internal/filter"
	"github.com/painminer/painminer/internal/ingest"
	"github.com/painminer/painminer/internal/llm"
	"github.com/painminer/painminer/internal/notify"
	"github.com/painminer/painminer/internal/opportunity"
	"github.com/painminer/painminer/internal/ratelimit"
	"github.com/painminer/painminer/internal/score"
	"github.com/painminer/painminer/internal/shortlist"
	"github.com/painminer/painminer/internal/store"
)

// Stage names the nine mining stages plus the "all" pseudo-stage, matching
// the CLI's --stage flag values exactly.
type Stage string

const (
	StageFetch             Stage = "fetch"
	StageFilter            Stage = "filter"
	StageExtract           Stage = "extract"
	StageEmbed             Stage = "embed"
	StageCluster           Stage = "cluster"
	StageAlignment         Stage = "alignment"
	StageMapOpportunities  Stage = "map_opportunities"
	StageScore             Stage = "score"
	StageDecisionShortlist Stage = "decision_shortlist"
	StageAll               Stage = "all"
)

// Runner holds everything a pipeline stage needs: the store, the LLM
// gateway, config, and an optional dashboard hub to narrate progress to.
// The Limit* fields mirror the CLI's --limit-* flags. The cluster,
// alignment, and map_opportunities stages process their full work queue
// each run (matching spec.md's "idempotent partial pipeline" model), so
// Runner has no field for --limit-clusters or --limit-opportunities and
// those two flags have no effect.
type Runner struct {
	App          *llm.App
	Store        *store.Store
	Cfg          *config.Config
	Hub          *notify.Hub // nil disables live progress broadcast
	Limit        int         // deprecated generic cap, kept as the filter/extract fallback
	LimitSources int         // --limit-sources: caps how many ingest sources run this pass
	LimitPosts   int         // --limit-posts: caps filter/extract queue size
	LimitEvents  int         // --limit-events: caps how many pain events embed this pass
	ReportLimit  int         // --report-limit: overrides Shortlist.MaxCandidates when > 0
	MinScore     float64     // --min-score: overrides Shortlist.MinTotalScore when > 0
	StopOnError  bool        // --stop-on-error: abort "all" at the first failed stage (default behavior)
	Logger       *slog.Logger
}

func (r *Runner) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) notifyStart(stage string) {
	if r.Hub != nil {
		r.Hub.StageStarted(stage)
	}
}

func (r *Runner) notifyDone(stage string, stats interface{}) {
	if r.Hub != nil {
		r.Hub.StageFinished(stage, stats)
	}
}

func (r *Runner) notifyFailed(stage string, err error) {
	if r.Hub != nil {
		r.Hub.StageFailed(stage, err)
	}
}

// Run executes one named stage (or every stage in pipeline order for
// StageAll), logging and broadcasting progress around each.
func (r *Runner) Run(ctx context.Context, stage Stage) error {
	if stage == StageAll {
		for _, s := range []Stage{
			StageFetch, StageFilter, StageExtract, StageEmbed, StageCluster,
			StageAlignment, StageMapOpportunities, StageScore, StageDecisionShortlist,
		} {
			if err := r.Run(ctx, s); err != nil {
				if r.StopOnError {
					return fmt.Errorf("stage %s: %w", s, err)
				}
				r.log().Error("stage failed, continuing to next stage", "stage", s, "error", err)
			}
		}
		return nil
	}

	log := r.log().With("stage", string(stage))
	log.Info("stage started")
	r.notifyStart(string(stage))

	var err error
	switch stage {
	case StageFetch:
		err = r.runFetch(ctx, log)
	case StageFilter:
		err = r.runFilter(ctx, log)
	case StageExtract:
		err = r.runExtract(ctx, log)
	case StageEmbed:
		err = r.runEmbed(ctx, log)
	case StageCluster:
		err = r.runCluster(ctx, log)
	case StageAlignment:
		err = r.runAlignment(ctx, log)
	case StageMapOpportunities:
		err = r.runMapOpportunities(ctx, log)
	case StageScore:
		err = r.runScore(ctx, log)
	case StageDecisionShortlist:
		err = r.runDecisionShortlist(ctx, log)
	default:
		err = fmt.Errorf("unknown stage %q", stage)
	}

	if err != nil {
		log.Error("stage failed", "error", err)
		r.notifyFailed(string(stage), err)
		return err
	}
	log.Info("stage finished")
	return nil
}

func (r *Runner) runFetch(ctx context.Context, log *slog.Logger) error {
	redditOK, hnOK, _ := r.Cfg.SourcesEnabled()

	var sources []ingest.Source
	if redditOK {
		sources = append(sources, ingest.NewRedditSource(r.Cfg.Reddit, r.Cfg.Pipeline))
	} else {
		log.Warn("reddit source disabled, missing credentials")
	}
	if hnOK {
		sources = append(sources, ingest.NewHackerNewsSource(r.Cfg.Pipeline))
	}
	if r.LimitSources > 0 && r.LimitSources < len(sources) {
		sources = sources[:r.LimitSources]
	}

	for _, src := range sources {
		stats, err := src.FetchAll(ctx, r.Store)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", src.Name(), err)
		}
		log.Info("source fetched", "source", src.Name(), "fetched", stats.PostsFetched, "stored", stats.PostsStored)
		r.notifyDone("fetch:"+src.Name(), stats)
	}
	return nil
}

func (r *Runner) runFilter(ctx context.Context, log *slog.Logger) error {
	limit := r.postLimitOr(500)
	posts, err := r.Store.ListPostsWithoutFilterResult(limit)
	if err != nil {
		return fmt.Errorf("list unfiltered posts: %w", err)
	}

	passed := 0
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		result := filter.Evaluate(p, r.Cfg.Filter)
		if err := r.Store.SaveFilterResult(result); err != nil {
			return fmt.Errorf("save filter result for post %d: %w", p.ID, err)
		}
		if result.Passed {
			passed++
		}
	}
	log.Info("filter pass complete", "considered", len(posts), "passed", passed)
	r.notifyDone("filter", map[string]int{"considered": len(posts), "passed": passed})
	return nil
}

func (r *Runner) runExtract(ctx context.Context, log *slog.Logger) error {
	limit := r.postLimitOr(200)
	posts, err := r.Store.ListPassedPostsWithoutExtraction(limit)
	if err != nil {
		return fmt.Errorf("list posts for extraction: %w", err)
	}

	events, failed := 0, 0
	for i, p := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		commentCap := 20
		if p.Subreddit == "" {
			commentCap = 10 // Hacker News convention
		}
		comments, err := r.Store.ListComments(p.ID, commentCap)
		if err != nil {
			return fmt.Errorf("list comments for post %d: %w", p.ID, err)
		}

		resp, err := llm.ExtractPainEvents(ctx, r.App, p, comments)
		if err != nil {
			failed++
			log.Warn("extraction failed for post, skipping", "post_id", p.ID, "error", err)
		} else {
			for _, raw := range resp.Events {
				event := extract.Enrich(p.ID, extract.ExtractedEvidence{Event: raw})
				if event == nil {
					continue
				}
				if _, err := r.Store.CreatePainEvent(event); err != nil {
					return fmt.Errorf("save pain event for post %d: %w", p.ID, err)
				}
				events++
			}
		}

		if i < len(posts)-1 {
			if err := ratelimit.DynamicDelay(ctx, r.Cfg.Pipeline.ExtractionDelayMin, r.Cfg.Pipeline.ExtractionDelayMax); err != nil {
				return err
			}
		}
	}
	log.Info("extraction pass complete", "posts", len(posts), "events", events, "failed", failed)
	r.notifyDone("extract", map[string]int{"posts": len(posts), "events": events, "failed": failed})
	return nil
}

func (r *Runner) runEmbed(ctx context.Context, log *slog.Logger) error {
	e, err := embed.New(r.Cfg.LLM, r.App.Genkit())
	if err != nil {
		return fmt.Errorf("build embedder: %w", err)
	}

	var total struct{ embedded, cached, failed int }
	for _, source := range []domain.SourceType{domain.SourceReddit, domain.SourceHackerNews} {
		events, err := r.Store.ListPainEventsBySource(source)
		if err != nil {
			return fmt.Errorf("list pain events for %s: %w", source, err)
		}
		if r.LimitEvents > 0 && r.LimitEvents < len(events) {
			events = events[:r.LimitEvents]
		}
		embedded, cached, failed, err := embed.Run(ctx, e, r.Store, events)
		if err != nil {
			return fmt.Errorf("embed %s events: %w", source, err)
		}
		total.embedded += embedded
		total.cached += cached
		total.failed += failed

		if embedded > 0 {
			time.Sleep(r.Cfg.Pipeline.EmbeddingDelay)
		}
	}
	log.Info("embedding pass complete", "embedded", total.embedded, "cached", total.cached, "failed", total.failed)
	r.notifyDone("embed", total)
	return nil
}

func (r *Runner) runCluster(ctx context.Context, log *slog.Logger) error {
	for _, source := range []domain.SourceType{domain.SourceReddit, domain.SourceHackerNews} {
		eps := r.Cfg.Cluster.Eps[string(source)]
		minSamples := r.Cfg.Cluster.MinSamples[string(source)]
		stats, err := cluster.Run(ctx, r.App, r.Store, source, eps, minSamples)
		if err != nil {
			return fmt.Errorf("cluster %s: %w", source, err)
		}
		log.Info("clustering pass complete", "source", source, "candidates", stats.Candidates, "accepted", stats.Accepted)
		r.notifyDone("cluster:"+string(source), stats)
	}
	return nil
}

func (r *Runner) runAlignment(ctx context.Context, log *slog.Logger) error {
	stats, err := align.Run(ctx, r.App, r.Store, r.Cfg.Alignment)
	if err != nil {
		return fmt.Errorf("align: %w", err)
	}
	log.Info("alignment pass complete", "batches", stats.BatchesConsidered, "aligned", stats.Aligned)
	r.notifyDone("alignment", stats)
	return nil
}

func (r *Runner) runMapOpportunities(ctx context.Context, log *slog.Logger) error {
	stats, err := opportunity.Run(ctx, r.App, r.Store)
	if err != nil {
		return fmt.Errorf("map opportunities: %w", err)
	}
	log.Info("opportunity mapping pass complete", "considered", stats.ClustersConsidered+stats.AlignedConsidered, "viable", stats.Viable)
	r.notifyDone("map_opportunities", stats)
	return nil
}

func (r *Runner) runScore(ctx context.Context, log *slog.Logger) error {
	stats, err := score.Run(ctx, r.App, r.Store, r.Cfg.Score)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}
	log.Info("viability scoring pass complete", "considered", stats.Considered, "scored", stats.Scored, "abandoned", stats.Abandoned)
	r.notifyDone("score", stats)
	return nil
}

func (r *Runner) runDecisionShortlist(ctx context.Context, log *slog.Logger) error {
	cfg := r.Cfg.Shortlist
	if r.ReportLimit > 0 {
		cfg.MaxCandidates = r.ReportLimit
	}
	if r.MinScore > 0 {
		cfg.MinTotalScore = r.MinScore
	}
	result, err := shortlist.Run(ctx, r.App, r.Store, cfg)
	if err != nil {
		return fmt.Errorf("build shortlist: %w", err)
	}
	mdPath, jsonPath, err := shortlist.Export(result, r.Cfg.Shortlist.ReportDir, time.Now())
	if err != nil {
		return fmt.Errorf("export shortlist: %w", err)
	}
	log.Info("decision shortlist complete", "report_id", result.ReportID, "entries", len(result.Entries), "markdown", mdPath, "json", jsonPath)
	if r.Hub != nil {
		r.Hub.Broadcast(notify.EventShortlist, result.Entries)
	}
	r.notifyDone("decision_shortlist", map[string]interface{}{"report_id": result.ReportID, "entries": len(result.Entries), "markdown": mdPath, "json": jsonPath})
	return nil
}

func (r *Runner) postLimitOr(fallback int) int {
	if r.LimitPosts > 0 {
		return r.LimitPosts
	}
	if r.Limit > 0 {
		return r.Limit
	}
	return fallback
}
