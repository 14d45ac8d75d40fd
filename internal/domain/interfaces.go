package domain

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Summarizer produces a brief digest of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
