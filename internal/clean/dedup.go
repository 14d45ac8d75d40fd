package clean

import (
	"fmt"

	"go.uber.org/zap"

	"insight-helper/internal/embedding"
)

// Deduplicator removes near-duplicate texts using embedding cosine
// similarity. The scan is greedy in input order, so the first occurrence
// of a duplicate group survives.
type Deduplicator struct {
	embedder  embedding.Embedder
	threshold float64
	logger    *zap.Logger
}

// NewDeduplicator creates a deduplicator around the shared text embedder.
func NewDeduplicator(embedder embedding.Embedder, threshold float64, logger *zap.Logger) *Deduplicator {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.95
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduplicator{embedder: embedder, threshold: threshold, logger: logger}
}

// Deduplicate returns the subsequence of texts whose similarity to every
// earlier kept text is strictly below the threshold. Inputs of length
// zero or one pass through untouched without any embedding call.
func (d *Deduplicator) Deduplicate(texts []string) ([]string, error) {
	mask, err := d.keepMask(texts)
	if err != nil {
		return nil, err
	}
	if mask == nil {
		return texts, nil
	}
	out := make([]string, 0, len(texts))
	for i, keep := range mask {
		if keep {
			out = append(out, texts[i])
		}
	}
	return out, nil
}

// keepMask returns nil when the input is small enough to skip entirely.
// Quadratic in the kept-set size, which is fine for batch inputs of tens
// of documents.
func (d *Deduplicator) keepMask(texts []string) ([]bool, error) {
	if len(texts) <= 1 {
		return nil, nil
	}
	if err := d.embedder.Prepare(texts); err != nil {
		return nil, fmt.Errorf("preparing embedder: %w", err)
	}
	vectors := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := d.embedder.Embed(t)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		vectors[i] = v
	}
	mask := make([]bool, len(texts))
	var kept []int
	for i := range texts {
		duplicate := false
		for _, j := range kept {
			if dot(vectors[i], vectors[j]) >= d.threshold {
				d.logger.Debug("dropping near-duplicate text",
					zap.Int("index", i),
					zap.Int("kept_index", j))
				duplicate = true
				break
			}
		}
		if !duplicate {
			mask[i] = true
			kept = append(kept, i)
		}
	}
	return mask, nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
