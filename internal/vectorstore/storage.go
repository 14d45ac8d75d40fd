package vectorstore

import "insight-helper/internal/domain"

// Storage persists (vector, payload) entries and supports similarity
// search. All vectors in one store must share dimensionality and
// embedding model; entries are never mutated after insertion.
type Storage interface {
	// Init declares the vector dimensionality. It does not discard
	// previously stored entries; Clear does that.
	Init(dimension int) error
	Upsert(entries []domain.Entry, vectors [][]float64) error
	// Search returns the topK entries by descending cosine similarity
	// (dot product on unit vectors). Ties go to the earlier insertion.
	Search(vector []float64, topK int) ([]domain.SearchResult, error)
	Count() (int, error)
	Clear() error
}
