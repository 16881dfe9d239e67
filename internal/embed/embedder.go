// Package embed produces dense vector embeddings for pain events, caching
// results by input text the way ehrlich-b-wingthing's internal/embedding
// package keys its cache.
package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/painminer/painminer/internal/config"
)

// Embedder produces vector embeddings from text. Mirrors
// ehrlich-b-wingthing's internal/embedding.Embedder contract, adapted to
// take a context since both backends here are remote calls.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

// New builds an Embedder for the configured provider: genkit's googlegenai
// embedder model for "gemini", a direct OpenAI-compatible embeddings call
// for "generic".
func New(cfg config.LLMConfig, g *genkit.Genkit) (Embedder, error) {
	switch cfg.Provider {
	case "gemini", "":
		return &geminiEmbedder{g: g, model: cfg.EmbeddingModel}, nil
	case "generic":
		opts := []option.RequestOption{option.WithAPIKey(cfg.ApiKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		return &openAIEmbedder{client: openai.NewClient(opts...), model: cfg.EmbeddingModel}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// TextHash returns the cache key for an embedding input string, the
// embedding_cache table's text_hash primary key.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// geminiEmbedder routes through genkit's model registry so the
// googlegenai plugin's embedding model is used the same way its chat
// models are, through a single gateway object.
type geminiEmbedder struct {
	g     *genkit.Genkit
	model string
}

func (e *geminiEmbedder) Name() string { return "googleai/" + e.model }

func (e *geminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	docs := make([]*ai.Document, len(texts))
	for i, t := range texts {
		docs[i] = ai.DocumentFromText(t, nil)
	}

	resp, err := genkit.Embed(ctx, e.g, ai.WithEmbedderName("googleai/"+e.model), ai.WithDocs(docs...))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Embedding
	}
	return vectors, nil
}

// openAIEmbedder talks to any OpenAI-compatible /embeddings endpoint via
// openai-go, the same client already used for generic chat completions.
type openAIEmbedder struct {
	client openai.Client
	model  string
}

func (e *openAIEmbedder) Name() string { return e.model }

func (e *openAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: e.model,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, fmt.Errorf("generic embed: %w", err)
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}
