// Package ingest fetches raw posts and comments from Reddit and Hacker
// News and writes them into the store, unfiltered. Each source paces its
// own calls with a dedicated rate limiter; sources run one at a time, never
// concurrently, matching the pipeline's single-threaded scheduling.
package ingest

import (
	"context"
	"log/slog"

	"github.com/painminer/painminer/internal/domain"
	"github.com/painminer/painminer/internal/store"
)

// Stats summarizes one source's ingestion pass.
type Stats struct {
	PostsFetched    int
	PostsStored     int
	CommentsStored  int
	Errors          int
}

// Source fetches posts (and their top comments) for one community
// platform and writes them to st.
type Source interface {
	Name() string
	FetchAll(ctx context.Context, st *store.Store) (Stats, error)
}

// storePost persists a post and its comments, logging but not failing the
// whole pass on a single item's error — a malformed post or comment from
// one source must not stop ingestion of the rest.
func storePost(st *store.Store, log *slog.Logger, p *domain.Post, comments []*domain.Comment) (stored, commentsStored int) {
	id, err := st.UpsertPost(p)
	if err != nil {
		log.Warn("store post failed", "external_id", p.ExternalID, "error", err)
		return 0, 0
	}
	for _, c := range comments {
		c.PostID = id
		if err := st.UpsertComment(c); err != nil {
			log.Warn("store comment failed", "post_id", id, "external_id", c.ExternalID, "error", err)
			continue
		}
		commentsStored++
	}
	return 1, commentsStored
}
