package retriever

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"insight-helper/internal/embedding"
	"insight-helper/internal/vectorstore"
)

// Separator joins retrieved payloads into one context string.
const Separator = "\n\n---\n\n"

// Retriever embeds a free-text query with the same model used at indexing
// time and concatenates the top-k payloads into a context string for the
// generation step.
type Retriever struct {
	embedder     embedding.Embedder
	topK         int
	defaultQuery string
	logger       *zap.Logger
}

func New(embedder embedding.Embedder, topK int, defaultQuery string, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	if defaultQuery == "" {
		defaultQuery = "Summarize key insights for professionals"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{embedder: embedder, topK: topK, defaultQuery: defaultQuery, logger: logger}
}

// Context retrieves the context string for query. An empty query falls
// back to the default query; an empty index yields an empty context,
// which downstream generation must handle.
func (r *Retriever) Context(store vectorstore.Storage, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		query = r.defaultQuery
	}
	n, err := store.Count()
	if err != nil {
		return "", fmt.Errorf("counting entries: %w", err)
	}
	if n == 0 {
		r.logger.Warn("retrieving from empty index")
		return "", nil
	}
	vec, err := r.embedder.Embed(query)
	if err != nil {
		return "", fmt.Errorf("embedding query: %w", err)
	}
	results, err := store.Search(vec, r.topK)
	if err != nil {
		return "", fmt.Errorf("searching index: %w", err)
	}
	parts := make([]string, 0, len(results))
	for _, res := range results {
		parts = append(parts, res.Entry.Text)
	}
	r.logger.Debug("retrieved context",
		zap.String("query", query),
		zap.Int("results", len(results)))
	return strings.Join(parts, Separator), nil
}
