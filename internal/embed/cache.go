package embed

import (
	"context"
	"fmt"

	"github.com/painminer/painminer/internal/domain"
	"github.com/painminer/painminer/internal/store"
)

// Run embeds every pain event in events, checking the shared text cache
// before calling the model. A cache hit (which includes any event already
// embedded with this model) rewrites the pain_embeddings row from the
// cache without a model call; a miss calls the model and writes both the
// cache row and the pain_embeddings row for the new vector.
func Run(ctx context.Context, e Embedder, st *store.Store, events []*domain.PainEvent) (embedded, cached, failed int, err error) {
	for _, event := range events {
		text := InputText(event)
		hash := TextHash(text)

		if vec, hit, cerr := st.CachedEmbedding(hash, e.Name()); cerr == nil && hit {
			if serr := st.SavePainEmbedding(&domain.PainEmbedding{PainEventID: event.ID, Vector: vec, Model: e.Name()}); serr != nil {
				return embedded, cached, failed, fmt.Errorf("save cached embedding for event %d: %w", event.ID, serr)
			}
			cached++
			continue
		}

		vectors, eerr := e.Embed(ctx, []string{text})
		if eerr != nil || len(vectors) == 0 {
			failed++
			continue
		}
		vec := vectors[0]

		if cerr := st.CacheEmbedding(hash, e.Name(), vec); cerr != nil {
			return embedded, cached, failed, fmt.Errorf("cache embedding for event %d: %w", event.ID, cerr)
		}
		if serr := st.SavePainEmbedding(&domain.PainEmbedding{PainEventID: event.ID, Vector: vec, Model: e.Name()}); serr != nil {
			return embedded, cached, failed, fmt.Errorf("save embedding for event %d: %w", event.ID, serr)
		}
		embedded++
	}
	return embedded, cached, failed, nil
}
