package align

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/painminer/painminer/internal/domain"
)

func TestGroupBySourceSplitsByPlatform(t *testing.T) {
	clusters := []*domain.Cluster{
		{ID: "reddit_01", SourceType: domain.SourceReddit},
		{ID: "hackernews_01", SourceType: domain.SourceHackerNews},
		{ID: "reddit_02", SourceType: domain.SourceReddit},
	}
	grouped := groupBySource(clusters)
	assert.Len(t, grouped[domain.SourceReddit], 2)
	assert.Len(t, grouped[domain.SourceHackerNews], 1)
}

func TestResolveClusterIDsDropsUnknownNames(t *testing.T) {
	byName := clusterIndex([]*domain.Cluster{
		{ID: "reddit_01"},
		{ID: "hackernews_03"},
	})
	ids := resolveClusterIDs([]string{"reddit_01", "hackernews_03", "ghost_99"}, byName)
	assert.Equal(t, []string{"reddit_01", "hackernews_03"}, ids)
}

func TestBatchCacheKeyIsStableAndOrderIndependent(t *testing.T) {
	a := []*domain.Cluster{
		{ID: "reddit_01", Summary: "export friction"},
		{ID: "hackernews_02", Summary: "export friction, HN tone"},
	}
	b := []*domain.Cluster{a[1], a[0]} // same clusters, reversed order

	assert.Equal(t, batchCacheKey(a), batchCacheKey(b))
}

func TestBatchCacheKeyChangesWithSummary(t *testing.T) {
	a := []*domain.Cluster{{ID: "reddit_01", Summary: "export friction"}}
	b := []*domain.Cluster{{ID: "reddit_01", Summary: "a different problem entirely"}}

	assert.NotEqual(t, batchCacheKey(a), batchCacheKey(b))
}

func TestDistinctSourceTypesCountsUniquePlatforms(t *testing.T) {
	byName := clusterIndex([]*domain.Cluster{
		{ID: "reddit_01", SourceType: domain.SourceReddit},
		{ID: "reddit_02", SourceType: domain.SourceReddit},
		{ID: "hackernews_01", SourceType: domain.SourceHackerNews},
	})
	assert.Equal(t, 1, distinctSourceTypes([]string{"reddit_01", "reddit_02"}, byName))
	assert.Equal(t, 2, distinctSourceTypes([]string{"reddit_01", "hackernews_01"}, byName))
}
