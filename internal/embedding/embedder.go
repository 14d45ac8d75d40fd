package embedding

// Embedder converts free text into a unit-normalized numeric vector.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// ImageEmbedder projects raw image bytes into the same vector space the
// paired text Embedder uses. Both must come from one model family, otherwise
// similarity scores across modalities are meaningless.
type ImageEmbedder interface {
	EmbedImage(data []byte) ([]float64, error)
}
