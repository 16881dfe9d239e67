// Package align implements the Cross-Source Aligner: it finds clusters
// from different source platforms that describe the same underlying
// problem despite differences in tone or maturity, and groups them into
// AlignedProblem rows that downstream stages treat as virtual clusters.
package align

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/painminer/painminer/internal/config"
	"github.com/painminer/painminer/internal/domain"
	"github.com/painminer/painminer/internal/llm"
	"github.com/painminer/painminer/internal/store"
)

// Stats reports one aligner pass.
type Stats struct {
	BatchesConsidered int
	BatchesSkipped    int // single-source batches, nothing to align
	Aligned           int
	Processed         int
}

// Run reads every cluster still unprocessed by the aligner, batches them,
// and asks the model to find cross-source matches within each batch.
func Run(ctx context.Context, app *llm.App, st *store.Store, cfg config.AlignmentConfig) (Stats, error) {
	var stats Stats

	clusters, err := st.ListUnprocessedClusters()
	if err != nil {
		return stats, fmt.Errorf("list unprocessed clusters: %w", err)
	}

	eligible := make([]*domain.Cluster, 0, len(clusters))
	for _, c := range clusters {
		if c.Size() >= cfg.MinClusterSize {
			eligible = append(eligible, c)
		}
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	for start := 0; start < len(eligible); start += batchSize {
		end := start + batchSize
		if end > len(eligible) {
			end = len(eligible)
		}
		batch := eligible[start:end]

		if err := runBatch(ctx, app, st, batch, cfg, &stats); err != nil {
			return stats, fmt.Errorf("align batch: %w", err)
		}
	}

	return stats, nil
}

func runBatch(ctx context.Context, app *llm.App, st *store.Store, batch []*domain.Cluster, cfg config.AlignmentConfig, stats *Stats) error {
	stats.BatchesConsidered++

	bySource := groupBySource(batch)
	if len(bySource) < 2 {
		stats.BatchesSkipped++
		return markAllProcessed(st, batch, stats)
	}

	key := batchCacheKey(batch)
	candidates, err := cachedOrFetch(ctx, app, st, key, bySource, cfg.CacheMaxAgeSec)
	if err != nil {
		return err
	}

	byName := clusterIndex(batch)
	aligned := map[string]bool{}

	for _, c := range candidates {
		clusterIDs := resolveClusterIDs(c.ClusterNames, byName)
		if len(clusterIDs) < 2 {
			continue
		}
		if distinctSourceTypes(clusterIDs, byName) < 2 {
			// The model named clusters that all came from the same source
			// platform; an aligned problem must span at least two.
			continue
		}

		ap := &domain.AlignedProblem{
			APCode:               c.APCode,
			ClusterIDs:           clusterIDs,
			PlatformSources:      c.Sources,
			CoreProblem:          c.CoreProblem,
			WhyTheyLookDifferent: c.WhyTheyLookDifferent,
			Evidence:             c.Evidence,
			CreatedAt:            nowUTC(),
		}
		id, err := st.CreateAlignedProblem(ap)
		if err != nil {
			return fmt.Errorf("create aligned problem: %w", err)
		}
		for _, clusterID := range clusterIDs {
			if err := st.MarkClusterAligned(clusterID, id); err != nil {
				return fmt.Errorf("mark cluster aligned: %w", err)
			}
			aligned[clusterID] = true
		}
		stats.Aligned++
	}

	for _, c := range batch {
		if aligned[c.ID] {
			continue
		}
		if err := st.MarkClusterProcessed(c.ID); err != nil {
			return fmt.Errorf("mark cluster processed: %w", err)
		}
		stats.Processed++
	}
	return nil
}

func markAllProcessed(st *store.Store, batch []*domain.Cluster, stats *Stats) error {
	for _, c := range batch {
		if err := st.MarkClusterProcessed(c.ID); err != nil {
			return fmt.Errorf("mark cluster processed: %w", err)
		}
		stats.Processed++
	}
	return nil
}

func cachedOrFetch(ctx context.Context, app *llm.App, st *store.Store, key string, bySource map[domain.SourceType][]*domain.Cluster, maxAgeSec int64) ([]llm.AlignmentCandidate, error) {
	if cached, ok, err := st.CachedAlignment(key, maxAgeSec); err != nil {
		return nil, fmt.Errorf("lookup alignment cache: %w", err)
	} else if ok {
		return decodeCached(cached)
	}

	candidates, err := llm.AlignBatch(ctx, app, bySource)
	if err != nil {
		return nil, fmt.Errorf("align batch LLM call: %w", err)
	}
	if raw, err := encodeForCache(candidates); err == nil {
		_ = st.CacheAlignment(key, raw)
	}
	return candidates, nil
}

func groupBySource(clusters []*domain.Cluster) map[domain.SourceType][]*domain.Cluster {
	out := map[domain.SourceType][]*domain.Cluster{}
	for _, c := range clusters {
		out[c.SourceType] = append(out[c.SourceType], c)
	}
	return out
}

func clusterIndex(clusters []*domain.Cluster) map[string]*domain.Cluster {
	out := make(map[string]*domain.Cluster, len(clusters))
	for _, c := range clusters {
		out[c.ID] = c
	}
	return out
}

// distinctSourceTypes counts how many different source platforms the given
// cluster ids span, enforcing the aligned-problem invariant independently
// of whether the model actually honored "align only across different
// sources".
func distinctSourceTypes(clusterIDs []string, byName map[string]*domain.Cluster) int {
	seen := map[domain.SourceType]bool{}
	for _, id := range clusterIDs {
		if c, ok := byName[id]; ok {
			seen[c.SourceType] = true
		}
	}
	return len(seen)
}

func resolveClusterIDs(names []string, byName map[string]*domain.Cluster) []string {
	var out []string
	for _, name := range names {
		if _, ok := byName[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// batchCacheKey derives a deterministic key from the batch's cluster ids
// and summaries, so an unchanged batch of clusters is never re-sent to the
// model within the cache's freshness window.
func batchCacheKey(batch []*domain.Cluster) string {
	ids := make([]string, len(batch))
	for i, c := range batch {
		ids[i] = c.ID
	}
	sort.Strings(ids)

	var b strings.Builder
	byID := clusterIndex(batch)
	for _, id := range ids {
		b.WriteString(id)
		b.WriteByte('|')
		b.WriteString(byID[id].Summary)
		b.WriteByte('\n')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
