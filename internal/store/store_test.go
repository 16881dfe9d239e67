package store

import (
	"testing"
	"time"

	"github.com/painminer/painminer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationIdempotent(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.migrate())
}

func TestAllTablesExist(t *testing.T) {
	s := openTestStore(t)
	tables := []string{
		"posts", "comments", "filtered_posts", "pain_events", "pain_embeddings",
		"embedding_cache", "clusters", "cluster_members", "aligned_problems",
		"alignment_cache", "opportunities", "schema_migrations",
	}
	for _, name := range tables {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count)
		require.NoError(t, err)
		assert.Equalf(t, 1, count, "table %s not found", name)
	}
}

func TestUpsertPostIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	p := &domain.Post{
		SourceType: domain.SourceReddit,
		ExternalID: "abc123",
		Subreddit:  "sysadmin",
		Title:      "Every week I manually reconcile two spreadsheets",
		Body:       "It takes hours and I always make mistakes.",
		Author:     "throwaway1",
		CreatedAt:  now,
	}

	id1, err := s.UpsertPost(p)
	require.NoError(t, err)
	assert.NotZero(t, id1)

	id2, err := s.UpsertPost(p)
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "re-ingesting the same post must not create a duplicate row")

	got, err := s.GetPost(id1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sysadmin", got.Subreddit)
}

func TestGetPostNotFound(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetPost(999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFilterAndPassedQueues(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	passed := &domain.Post{SourceType: domain.SourceReddit, ExternalID: "p1", Title: "passed", CreatedAt: now}
	rejected := &domain.Post{SourceType: domain.SourceReddit, ExternalID: "p2", Title: "rejected", CreatedAt: now}
	passedID, err := s.UpsertPost(passed)
	require.NoError(t, err)
	rejectedID, err := s.UpsertPost(rejected)
	require.NoError(t, err)

	unfiltered, err := s.ListPostsWithoutFilterResult(10)
	require.NoError(t, err)
	assert.Len(t, unfiltered, 2)

	require.NoError(t, s.SaveFilterResult(&domain.FilteredPost{PostID: passedID, Passed: true, CompositeScore: 0.8, FilteredAt: now}))
	require.NoError(t, s.SaveFilterResult(&domain.FilteredPost{PostID: rejectedID, Passed: false, CompositeScore: 0.1, FilteredAt: now}))

	unfiltered, err = s.ListPostsWithoutFilterResult(10)
	require.NoError(t, err)
	assert.Empty(t, unfiltered)

	queue, err := s.ListPassedPosts(10)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, passedID, queue[0].ID)
}

func TestPainEventAndEmbeddingRoundTrip(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	postID, err := s.UpsertPost(&domain.Post{SourceType: domain.SourceHackerNews, ExternalID: "hn1", Title: "t", CreatedAt: now})
	require.NoError(t, err)

	eventID, err := s.CreatePainEvent(&domain.PainEvent{
		PostID:             postID,
		PainType:           domain.PainTypeToolGap,
		ProblemSummary:     "No good way to track this",
		MentionedTools:     []string{"Zapier", "Airtable"},
		EmotionalIntensity: 0.6,
		FrequencyScore:     5,
		CreatedAt:          now,
	})
	require.NoError(t, err)
	assert.NotZero(t, eventID)

	events, err := s.GetPainEventsByIDs([]int64{eventID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []string{"Zapier", "Airtable"}, events[0].MentionedTools)

	vec := []float32{0.1, 0.2, 0.3}
	require.NoError(t, s.SavePainEmbedding(&domain.PainEmbedding{PainEventID: eventID, Vector: vec, Model: "test-embed", CreatedAt: now}))

	byHN, err := s.ListEmbeddingsBySource(domain.SourceHackerNews)
	require.NoError(t, err)
	require.Len(t, byHN, 1)
	assert.Equal(t, vec, byHN[0].Vector)
}

func TestEmbeddingCacheMiss(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.CachedEmbedding("nonexistent-hash", "model")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.CacheEmbedding("hash1", "model", []float32{1, 2, 3}))
	vec, ok, err := s.CachedEmbedding("hash1", "model")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, vec)
}

func TestSaveAndGetCluster(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	postID, err := s.UpsertPost(&domain.Post{SourceType: domain.SourceReddit, ExternalID: "r1", CreatedAt: now})
	require.NoError(t, err)
	eventID, err := s.CreatePainEvent(&domain.PainEvent{PostID: postID, PainType: domain.PainTypeOther, ProblemSummary: "x", CreatedAt: now})
	require.NoError(t, err)

	c := &domain.Cluster{
		ID:           "reddit_01",
		SourceType:   domain.SourceReddit,
		PainEventIDs: []int64{eventID},
		Summary:      "test cluster",
		Status:       domain.ClusterStatusPending,
		CreatedAt:    now,
	}
	require.NoError(t, s.SaveCluster(c))

	got, err := s.GetCluster("reddit_01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []int64{eventID}, got.PainEventIDs)

	clusters, err := s.ListClustersBySource(domain.SourceReddit)
	require.NoError(t, err)
	assert.Len(t, clusters, 1)
}
