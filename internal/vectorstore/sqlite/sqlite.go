package sqlite

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"insight-helper/internal/domain"
)

// Storage is a persistent vector store backed by a SQLite file under a
// configured data directory, keyed by collection name. Reopening the same
// directory and collection yields access to previously added entries.
// Search is brute-force over the collection, which matches the batch
// scale this pipeline handles.
type Storage struct {
	db         *sql.DB
	collection string
	dimension  int
}

// Config locates the store on disk.
type Config struct {
	DataDir    string
	Collection string
}

// NewStorage opens (creating if absent) the store under cfg.DataDir.
func NewStorage(cfg Config) (*Storage, error) {
	if cfg.DataDir == "" {
		return nil, errors.New("data directory not configured")
	}
	if cfg.Collection == "" {
		return nil, errors.New("collection name not configured")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(cfg.DataDir, "vectors.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Storage{db: db, collection: cfg.Collection}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	entry_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	text TEXT NOT NULL,
	meta TEXT NOT NULL DEFAULT '{}',
	dim INTEGER NOT NULL,
	vector BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_collection ON entries(collection);
`

// Close closes the underlying database.
func (s *Storage) Close() error { return s.db.Close() }

// Init declares the vector dimensionality. A collection that already
// holds vectors of a different dimensionality is a compatibility break
// and is rejected rather than silently mixed.
func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	var existing sql.NullInt64
	err := s.db.QueryRow(
		`SELECT dim FROM entries WHERE collection = ? LIMIT 1`, s.collection,
	).Scan(&existing)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking collection dimension: %w", err)
	}
	if existing.Valid && int(existing.Int64) != dimension {
		return fmt.Errorf("collection %q holds %d-dimensional vectors, got %d",
			s.collection, existing.Int64, dimension)
	}
	s.dimension = dimension
	return nil
}

func (s *Storage) Upsert(entries []domain.Entry, vectors [][]float64) error {
	if len(entries) != len(vectors) {
		return errors.New("entries and vectors length mismatch")
	}
	if s.dimension == 0 {
		return errors.New("store not initialized")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(
		`INSERT INTO entries (collection, entry_id, kind, text, meta, dim, vector) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()
	for i, e := range entries {
		if len(vectors[i]) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
		meta, err := json.Marshal(e.Meta)
		if err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}
		if _, err := stmt.Exec(s.collection, e.ID, string(e.Kind), e.Text, string(meta), s.dimension, encodeVector(vectors[i])); err != nil {
			return fmt.Errorf("inserting entry %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	rows, err := s.db.Query(
		`SELECT entry_id, kind, text, meta, vector FROM entries WHERE collection = ? ORDER BY id`,
		s.collection)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var e domain.Entry
		var kind, meta string
		var blob []byte
		if err := rows.Scan(&e.ID, &kind, &e.Text, &meta, &blob); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Kind = domain.DocumentKind(kind)
		if meta != "" && meta != "null" {
			if err := json.Unmarshal([]byte(meta), &e.Meta); err != nil {
				return nil, fmt.Errorf("decoding metadata for %s: %w", e.ID, err)
			}
		}
		results = append(results, domain.SearchResult{
			Entry: e,
			Score: dot(decodeVector(blob), vector),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// stable sort keeps insertion order among equal scores
	sort.SliceStable(results, func(a, b int) bool { return results[a].Score > results[b].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func (s *Storage) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM entries WHERE collection = ?`, s.collection).Scan(&n)
	return n, err
}

// Clear drops all entries of this collection. Other collections sharing
// the same database file are untouched.
func (s *Storage) Clear() error {
	_, err := s.db.Exec(`DELETE FROM entries WHERE collection = ?`, s.collection)
	return err
}

func encodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.BigEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

func decodeVector(buf []byte) []float64 {
	v := make([]float64, len(buf)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[i*8:]))
	}
	return v
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
