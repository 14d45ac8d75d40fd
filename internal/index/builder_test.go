package index

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insight-helper/internal/chunker"
	"insight-helper/internal/domain"
	"insight-helper/internal/embedding"
	"insight-helper/internal/vectorstore/memory"
	"insight-helper/internal/vision"
)

type stubEmbedder struct {
	dim int
}

func (s *stubEmbedder) Name() string                  { return "stub" }
func (s *stubEmbedder) Prepare(corpus []string) error { return nil }
func (s *stubEmbedder) Dimension() int                { return s.dim }
func (s *stubEmbedder) Embed(text string) ([]float64, error) {
	v := make([]float64, s.dim)
	v[0] = 1
	return v, nil
}

type stubImageEmbedder struct {
	dim int
	err error
}

func (s *stubImageEmbedder) EmbedImage(data []byte) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	v := make([]float64, s.dim)
	v[0] = 1
	return v, nil
}

type stubCaptioner struct {
	caption string
	err     error
}

func (s *stubCaptioner) Caption(data []byte) (string, error) {
	return s.caption, s.err
}

func newTestBuilder(emb embedding.Embedder, img embedding.ImageEmbedder, capt vision.Captioner) *Builder {
	return NewBuilder(chunker.NewRecursive(800, 120), emb, img, capt, nil)
}

func TestBuildIndexesTextAndImages(t *testing.T) {
	b := newTestBuilder(
		&stubEmbedder{dim: 3},
		&stubImageEmbedder{dim: 3},
		&stubCaptioner{caption: "a cat on a laptop"},
	)
	store := memory.NewStorage()

	added, err := b.Build(store,
		[]domain.Blob{{Source: "https://example.com/a", Text: "A cleaned article about vector databases and retrieval pipelines."}},
		[]Image{{Name: "cat.png", Data: []byte{1, 2, 3}}},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, added, "one chunk, one caption document, one image document")

	results, err := store.Search([]float64{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	kinds := map[domain.DocumentKind]string{}
	for _, r := range results {
		kinds[r.Entry.Kind] = r.Entry.Text
	}
	assert.Contains(t, kinds[domain.KindText], "vector databases")
	assert.Equal(t, "[Image Caption] a cat on a laptop", kinds[domain.KindCaption])
	assert.Equal(t, "[Image Embedding] cat.png", kinds[domain.KindImage])
}

func TestBuildNoContent(t *testing.T) {
	b := newTestBuilder(&stubEmbedder{dim: 3}, nil, nil)
	_, err := b.Build(memory.NewStorage(), nil, nil)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestBuildCaptionFailureKeepsImageDocument(t *testing.T) {
	b := newTestBuilder(
		&stubEmbedder{dim: 3},
		&stubImageEmbedder{dim: 3},
		&stubCaptioner{err: errors.New("caption service down")},
	)
	store := memory.NewStorage()
	added, err := b.Build(store, nil, []Image{{Name: "x.png", Data: []byte{1}}})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	results, err := store.Search([]float64{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.KindImage, results[0].Entry.Kind)
}

func TestBuildImageEmbedFailureKeepsCaptionDocument(t *testing.T) {
	b := newTestBuilder(
		&stubEmbedder{dim: 3},
		&stubImageEmbedder{err: errors.New("embed service down")},
		&stubCaptioner{caption: "a diagram"},
	)
	store := memory.NewStorage()
	added, err := b.Build(store, nil, []Image{{Name: "x.png", Data: []byte{1}}})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	results, err := store.Search([]float64{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.KindCaption, results[0].Entry.Kind)
}

func TestBuildAllImagePathsFailing(t *testing.T) {
	b := newTestBuilder(
		&stubEmbedder{dim: 3},
		&stubImageEmbedder{err: errors.New("down")},
		&stubCaptioner{err: errors.New("down")},
	)
	_, err := b.Build(memory.NewStorage(), nil, []Image{{Name: "x.png", Data: []byte{1}}})
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestBuildSkipsMismatchedImageVectors(t *testing.T) {
	b := newTestBuilder(
		&stubEmbedder{dim: 3},
		&stubImageEmbedder{dim: 5}, // different model family
		nil,
	)
	store := memory.NewStorage()
	added, err := b.Build(store,
		[]domain.Blob{{Source: "a.txt", Text: "Text content that establishes the index dimensionality first."}},
		[]Image{{Name: "x.png", Data: []byte{1}}},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, added, "mismatched image vector must be dropped, not mixed in")
}

func TestBuildLongTextProducesOverlappingChunks(t *testing.T) {
	b := newTestBuilder(&stubEmbedder{dim: 3}, nil, nil)
	store := memory.NewStorage()
	text := strings.TrimSpace(strings.Repeat("Embedding models map sentences to vectors for search. ", 60))
	added, err := b.Build(store, []domain.Blob{{Source: "long.txt", Text: text}}, nil)
	require.NoError(t, err)
	assert.Greater(t, added, 1)
}
