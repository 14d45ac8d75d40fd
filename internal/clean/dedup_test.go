package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insight-helper/internal/domain"
)

// stubEmbedder returns preset unit vectors per exact text.
type stubEmbedder struct {
	vectors map[string][]float64
}

func (s *stubEmbedder) Name() string                { return "stub" }
func (s *stubEmbedder) Prepare(corpus []string) error { return nil }
func (s *stubEmbedder) Dimension() int              { return 3 }
func (s *stubEmbedder) Embed(text string) ([]float64, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float64{0, 0, 1}, nil
}

func TestDeduplicateDropsNearDuplicates(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float64{
		"original":   {1, 0, 0},
		"paraphrase": {0.99, 0.14106735979665885, 0}, // cosine 0.99 with original
		"unrelated":  {0, 1, 0},
	}}
	d := NewDeduplicator(emb, 0.95, nil)
	out, err := d.Deduplicate([]string{"original", "paraphrase", "unrelated"})
	require.NoError(t, err)
	assert.Equal(t, []string{"original", "unrelated"}, out, "first occurrence wins")
}

func TestDeduplicateKeepsBelowThreshold(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float64{
		"a": {1, 0, 0},
		"b": {0.9, 0.4358898943540674, 0}, // cosine 0.9, below 0.95
	}}
	d := NewDeduplicator(emb, 0.95, nil)
	out, err := d.Deduplicate([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestDeduplicateSingleItemPassThrough(t *testing.T) {
	d := NewDeduplicator(&stubEmbedder{}, 0.95, nil)
	out, err := d.Deduplicate([]string{"only one"})
	require.NoError(t, err)
	assert.Equal(t, []string{"only one"}, out)

	out, err = d.Deduplicate(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPipelinePreservesOrderAndSources(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float64{}}
	n := NewNormalizer(40, []string{"en", "zh"})
	p := NewPipeline(n, NewDeduplicator(emb, 0.95, nil), nil)

	long1 := "The first article describes how retrieval systems index documents for similarity search."
	long2 := "A completely different second article covers multimodal embeddings for images and captions."
	emb.vectors[long1] = []float64{1, 0, 0}
	emb.vectors[long2] = []float64{0, 1, 0}

	out, err := p.Run([]domain.Blob{
		{Source: "a.txt", Text: long1},
		{Source: "", Text: "   "},
		{Source: "b.txt", Text: "short"},
		{Source: "c.txt", Text: long2},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a.txt", out[0].Source)
	assert.Equal(t, "c.txt", out[1].Source)
}
