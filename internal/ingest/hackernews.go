package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/painminer/painminer/internal/config"
	"github.com/painminer/painminer/internal/domain"
	"github.com/painminer/painminer/internal/ratelimit"
	"github.com/painminer/painminer/internal/retry"
	"github.com/painminer/painminer/internal/store"
)

const hnAPIBase = "https://hacker-news.firebaseio.com/v0"

// maxHNCommentsPerStory caps how many top-level comments are ingested per
// story.
const maxHNCommentsPerStory = 10

// maxHNStories bounds one pass so a single run never walks the entire
// front page plus "new" list unbounded.
const maxHNStories = 100

// HackerNewsSource fetches new stories ("Ask HN" and regular stories) and
// their top comments from the unauthenticated Firebase API.
type HackerNewsSource struct {
	pace    config.PipelineConfig
	client  *http.Client
	limiter *ratelimit.Limiter
	log     *slog.Logger
}

func NewHackerNewsSource(pace config.PipelineConfig) *HackerNewsSource {
	return &HackerNewsSource{
		pace:    pace,
		client:  &http.Client{Timeout: pace.HTTPTimeout},
		limiter: ratelimit.New(pace.HNDelay),
		log:     slog.Default().With("source", "hackernews"),
	}
}

func (h *HackerNewsSource) Name() string { return "hackernews" }

type hnItem struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	By    string `json:"by"`
	Time  int64  `json:"time"`
	Text  string `json:"text"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	Kids  []int  `json:"kids"`
	Dead  bool   `json:"dead"`
	Deleted bool `json:"deleted"`
}

func (h *HackerNewsSource) FetchAll(ctx context.Context, st *store.Store) (Stats, error) {
	var stats Stats
	policy := retry.Policy{MaxAttempts: h.pace.MaxRetries, BaseDelay: h.pace.RetryBaseDelay, MaxDelay: h.pace.RetryMaxDelay}

	var ids []int
	err := retry.Do(ctx, policy, func() error {
		return h.getJSON(ctx, hnAPIBase+"/newstories.json", &ids)
	})
	if err != nil {
		return stats, fmt.Errorf("fetch new story ids: %w", err)
	}
	if len(ids) > maxHNStories {
		ids = ids[:maxHNStories]
	}

	for _, id := range ids {
		if err := h.limiter.Wait(ctx); err != nil {
			return stats, fmt.Errorf("rate limit wait: %w", err)
		}

		var item hnItem
		err := retry.Do(ctx, policy, func() error {
			return h.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", hnAPIBase, id), &item)
		})
		if err != nil {
			h.log.Warn("fetch item failed", "id", id, "error", err)
			stats.Errors++
			continue
		}
		if item.Dead || item.Deleted || item.Title == "" {
			continue
		}
		stats.PostsFetched++

		p := &domain.Post{
			SourceType:  domain.SourceHackerNews,
			ExternalID:  fmt.Sprintf("%d", item.ID),
			Title:       item.Title,
			Body:        CleanBody(item.Text),
			URL:         item.URL,
			Author:      item.By,
			Score:       item.Score,
			NumComments: len(item.Kids),
			CreatedAt:   time.Unix(item.Time, 0).UTC(),
		}

		comments := h.fetchComments(ctx, policy, item.Kids)
		stored, commentsStored := storePost(st, h.log, p, comments)
		stats.PostsStored += stored
		stats.CommentsStored += commentsStored
	}
	return stats, nil
}

func (h *HackerNewsSource) fetchComments(ctx context.Context, policy retry.Policy, kids []int) []*domain.Comment {
	var comments []*domain.Comment
	for _, kid := range kids {
		if len(comments) >= maxHNCommentsPerStory {
			break
		}
		if err := h.limiter.Wait(ctx); err != nil {
			return comments
		}

		var item hnItem
		err := retry.Do(ctx, policy, func() error {
			return h.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", hnAPIBase, kid), &item)
		})
		if err != nil {
			h.log.Warn("fetch comment failed", "id", kid, "error", err)
			continue
		}
		if item.Dead || item.Deleted || item.Text == "" {
			continue
		}
		comments = append(comments, &domain.Comment{
			ExternalID: fmt.Sprintf("%d", item.ID),
			Body:       CleanBody(item.Text),
			Author:     item.By,
			CreatedAt:  time.Unix(item.Time, 0).UTC(),
		})
	}
	return comments
}

func (h *HackerNewsSource) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &retry.Permanent{Err: err}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("hn request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("hn transient status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return &retry.Permanent{Err: fmt.Errorf("hn status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode hn response: %w", err)
	}
	return nil
}
