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
	"golang.org/x/oauth2/clientcredentials"
)

const redditAPIBase = "https://oauth.reddit.com"

// maxCommentsPerPost caps how many top-level comments Reddit ingestion
// keeps per post.
const maxCommentsPerPost = 20

// RedditSource fetches hot posts from a configured set of subreddits
// and their top comments.
type RedditSource struct {
	cfg     config.RedditConfig
	pace    config.PipelineConfig
	client  *http.Client
	limiter *ratelimit.Limiter
	log     *slog.Logger
}

// NewRedditSource builds a Reddit client authenticated with client
// credentials. It does not validate the config and returns no error;
// missing credentials are the caller's responsibility to check via
// Config.SourcesEnabled before constructing a source at all.
func NewRedditSource(cfg config.RedditConfig, pace config.PipelineConfig) *RedditSource {
	oauthConf := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     "https://www.reddit.com/api/v1/access_token",
	}
	httpClient := oauthConf.Client(context.Background())
	httpClient.Timeout = pace.HTTPTimeout

	return &RedditSource{
		cfg:     cfg,
		pace:    pace,
		client:  httpClient,
		limiter: ratelimit.New(pace.RedditDelay),
		log:     slog.Default().With("source", "reddit"),
	}
}

func (r *RedditSource) Name() string { return "reddit" }

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPostData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPostData struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Selftext      string  `json:"selftext"`
	URL           string  `json:"url"`
	Subreddit     string  `json:"subreddit"`
	Author        string  `json:"author"`
	Score         int     `json:"score"`
	NumComments   int     `json:"num_comments"`
	CreatedUTC    float64 `json:"created_utc"`
	IsStickied    bool    `json:"stickied"`
	IsLocked      bool    `json:"locked"`
}

type redditCommentListing []struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				ID         string  `json:"id"`
				Body       string  `json:"body"`
				Author     string  `json:"author"`
				Score      int     `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchAll pulls the configured subreddits' "hot" listing and top comments
// for each post, writing them to st as it goes.
func (r *RedditSource) FetchAll(ctx context.Context, st *store.Store) (Stats, error) {
	var stats Stats
	policy := retry.Policy{MaxAttempts: r.pace.MaxRetries, BaseDelay: r.pace.RetryBaseDelay, MaxDelay: r.pace.RetryMaxDelay}

	for _, sub := range r.cfg.Subreddits {
		if err := r.limiter.Wait(ctx); err != nil {
			return stats, fmt.Errorf("rate limit wait: %w", err)
		}

		var listing redditListing
		url := fmt.Sprintf("%s/r/%s/hot?limit=25", redditAPIBase, sub)
		err := retry.Do(ctx, policy, func() error { return r.getJSON(ctx, url, &listing) })
		if err != nil {
			r.log.Warn("fetch subreddit listing failed", "subreddit", sub, "error", err)
			stats.Errors++
			continue
		}

		for _, child := range listing.Data.Children {
			d := child.Data
			if d.IsStickied || d.IsLocked {
				continue
			}
			stats.PostsFetched++

			p := &domain.Post{
				SourceType:  domain.SourceReddit,
				ExternalID:  d.ID,
				Subreddit:   d.Subreddit,
				Title:       d.Title,
				Body:        CleanBody(d.Selftext),
				URL:         d.URL,
				Author:      d.Author,
				Score:       d.Score,
				NumComments: d.NumComments,
				CreatedAt:   time.Unix(int64(d.CreatedUTC), 0).UTC(),
			}

			comments := r.fetchComments(ctx, policy, sub, d.ID)
			stored, commentsStored := storePost(st, r.log, p, comments)
			stats.PostsStored += stored
			stats.CommentsStored += commentsStored
		}
	}
	return stats, nil
}

func (r *RedditSource) fetchComments(ctx context.Context, policy retry.Policy, subreddit, postID string) []*domain.Comment {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil
	}
	var listing redditCommentListing
	url := fmt.Sprintf("%s/r/%s/comments/%s?limit=%d", redditAPIBase, subreddit, postID, maxCommentsPerPost)
	if err := retry.Do(ctx, policy, func() error { return r.getJSON(ctx, url, &listing) }); err != nil {
		r.log.Warn("fetch comments failed", "post_id", postID, "error", err)
		return nil
	}
	if len(listing) < 2 {
		return nil
	}

	var comments []*domain.Comment
	for _, child := range listing[1].Data.Children {
		if child.Kind != "t1" || len(comments) >= maxCommentsPerPost {
			continue
		}
		d := child.Data
		comments = append(comments, &domain.Comment{
			ExternalID: d.ID,
			Body:       CleanBody(d.Body),
			Author:     d.Author,
			Score:      d.Score,
			CreatedAt:  time.Unix(int64(d.CreatedUTC), 0).UTC(),
		})
	}
	return comments
}

func (r *RedditSource) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &retry.Permanent{Err: err}
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("reddit request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("reddit transient status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return &retry.Permanent{Err: fmt.Errorf("reddit status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode reddit response: %w", err)
	}
	return nil
}
