package index

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"insight-helper/internal/domain"
	"insight-helper/internal/embedding"
	"insight-helper/internal/vectorstore"
	"insight-helper/internal/vision"
)

// ErrNoContent reports that nothing usable was handed to the builder.
// Whether that is fatal is caller policy: the online-search path must
// fail on it, the local-upload path may warn and continue with whatever
// the store already holds.
var ErrNoContent = errors.New("no content to index")

// Image is one uploaded image to index through both retrieval paths
// (caption similarity and visual similarity).
type Image struct {
	Name string
	Data []byte
}

// Builder turns cleaned blobs and images into index entries: text chunks
// embedded as text, one caption document and one image-embedding document
// per image. Per-image failures are logged and skipped so a bad image
// never aborts the batch.
type Builder struct {
	chunker       domain.Chunker
	embedder      embedding.Embedder
	imageEmbedder embedding.ImageEmbedder
	captioner     vision.Captioner
	logger        *zap.Logger
}

// NewBuilder wires the indexing dependencies. imageEmbedder and captioner
// may be nil when image ingestion is not configured.
func NewBuilder(chunker domain.Chunker, embedder embedding.Embedder, imageEmbedder embedding.ImageEmbedder, captioner vision.Captioner, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		chunker:       chunker,
		embedder:      embedder,
		imageEmbedder: imageEmbedder,
		captioner:     captioner,
		logger:        logger,
	}
}

// Build chunks, embeds and upserts the given content into store. It
// returns the number of entries added, or ErrNoContent when nothing
// usable was provided.
func (b *Builder) Build(store vectorstore.Storage, blobs []domain.Blob, images []Image) (int, error) {
	if len(blobs) == 0 && len(images) == 0 {
		return 0, ErrNoContent
	}

	var entries []domain.Entry
	var vectors [][]float64

	var chunks []domain.Chunk
	var texts []string
	sources := make(map[string]string)
	for i, blob := range blobs {
		doc := domain.Document{
			ID:      hashString(fmt.Sprintf("%s#%d", blob.Source, i)),
			Source:  blob.Source,
			Kind:    domain.KindText,
			Content: blob.Text,
		}
		sources[doc.ID] = doc.Source
		cs, err := b.chunker.Chunk(doc)
		if err != nil {
			return 0, fmt.Errorf("chunking %s: %w", doc.ID, err)
		}
		for _, c := range cs {
			chunks = append(chunks, c)
			texts = append(texts, c.Text)
		}
	}
	if len(texts) > 0 {
		if err := b.embedder.Prepare(texts); err != nil {
			return 0, fmt.Errorf("preparing embedder: %w", err)
		}
	}
	for _, c := range chunks {
		v, err := b.embedder.Embed(c.Text)
		if err != nil {
			return 0, fmt.Errorf("embedding chunk %s: %w", c.ChunkID, err)
		}
		entries = append(entries, domain.Entry{
			ID:   c.ChunkID,
			Kind: domain.KindText,
			Text: c.Text,
			Meta: map[string]string{"source": sources[c.DocumentID]},
		})
		vectors = append(vectors, v)
	}

	for _, img := range images {
		entries, vectors = b.appendImage(entries, vectors, img)
	}

	if len(entries) == 0 {
		return 0, ErrNoContent
	}
	if err := store.Init(len(vectors[0])); err != nil {
		return 0, fmt.Errorf("initializing store: %w", err)
	}
	// drop entries whose vectors disagree with the index dimensionality;
	// mixing model families would make every similarity meaningless
	dim := len(vectors[0])
	keptEntries := entries[:0]
	keptVectors := vectors[:0]
	for i := range entries {
		if len(vectors[i]) != dim {
			b.logger.Warn("skipping entry with incompatible vector dimension",
				zap.String("entry", entries[i].ID),
				zap.Int("got", len(vectors[i])),
				zap.Int("want", dim))
			continue
		}
		keptEntries = append(keptEntries, entries[i])
		keptVectors = append(keptVectors, vectors[i])
	}
	if err := store.Upsert(keptEntries, keptVectors); err != nil {
		return 0, fmt.Errorf("upserting entries: %w", err)
	}
	b.logger.Info("index build finished",
		zap.Int("chunks", len(chunks)),
		zap.Int("images", len(images)),
		zap.Int("entries", len(keptEntries)))
	return len(keptEntries), nil
}

// appendImage adds the caption document and the image-embedding document
// for one image. Each path fails independently: a captioning error still
// leaves the visual-similarity path available and vice versa.
func (b *Builder) appendImage(entries []domain.Entry, vectors [][]float64, img Image) ([]domain.Entry, [][]float64) {
	if b.captioner != nil {
		caption, err := b.captioner.Caption(img.Data)
		if err != nil {
			b.logger.Warn("image captioning failed, skipping caption document",
				zap.String("image", img.Name), zap.Error(err))
		} else {
			v, err := b.embedder.Embed(caption)
			if err != nil {
				b.logger.Warn("caption embedding failed, skipping caption document",
					zap.String("image", img.Name), zap.Error(err))
			} else {
				entries = append(entries, domain.Entry{
					ID:   uuid.NewString(),
					Kind: domain.KindCaption,
					Text: "[Image Caption] " + caption,
					Meta: map[string]string{"filename": img.Name},
				})
				vectors = append(vectors, v)
			}
		}
	}
	if b.imageEmbedder != nil {
		v, err := b.imageEmbedder.EmbedImage(img.Data)
		if err != nil {
			b.logger.Warn("image embedding failed, skipping image document",
				zap.String("image", img.Name), zap.Error(err))
		} else {
			entries = append(entries, domain.Entry{
				ID:   uuid.NewString(),
				Kind: domain.KindImage,
				Text: "[Image Embedding] " + img.Name,
				Meta: map[string]string{"filename": img.Name},
			})
			vectors = append(vectors, v)
		}
	}
	return entries, vectors
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
