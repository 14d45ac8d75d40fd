package domain

// DocumentKind distinguishes the three payload kinds sharing one index.
type DocumentKind string

const (
	KindText    DocumentKind = "text"
	KindCaption DocumentKind = "caption"
	KindImage   DocumentKind = "image"
)

// Blob is a raw text contribution from one source (OCR, article fetch,
// online search). Consumed by the normalizer.
type Blob struct {
	Source string
	Text   string
}

// Document is a cleaned piece of content ready for chunking and indexing.
type Document struct {
	ID      string
	Source  string
	Kind    DocumentKind
	Content string
}

// Chunk is a bounded span of a document prepared for embedding.
// Overlap is the number of runes shared with the previous chunk of the
// same document; it is zero for the first chunk.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
	Overlap    int
}

// Entry is one indexed payload. Entries are immutable after insertion.
type Entry struct {
	ID   string
	Kind DocumentKind
	Text string
	Meta map[string]string
}

// SearchResult pairs an indexed entry with its similarity to a query vector.
type SearchResult struct {
	Entry Entry
	Score float64
}
