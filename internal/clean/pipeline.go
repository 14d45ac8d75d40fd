package clean

import (
	"strings"

	"go.uber.org/zap"

	"insight-helper/internal/domain"
)

// Pipeline runs normalization followed by semantic deduplication over a
// batch of raw blobs, preserving input order and source attribution.
type Pipeline struct {
	normalizer *Normalizer
	dedup      *Deduplicator
	logger     *zap.Logger
}

// NewPipeline wires a normalizer and deduplicator into one cleaning pass.
func NewPipeline(normalizer *Normalizer, dedup *Deduplicator, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{normalizer: normalizer, dedup: dedup, logger: logger}
}

// Run cleans each blob, drops rejected ones, and removes near-duplicates.
// The returned blobs carry cleaned text and keep their original order.
func (p *Pipeline) Run(blobs []domain.Blob) ([]domain.Blob, error) {
	cleaned := make([]domain.Blob, 0, len(blobs))
	for _, b := range blobs {
		if strings.TrimSpace(b.Text) == "" {
			continue
		}
		text := p.normalizer.Clean(b.Text)
		if text == "" {
			p.logger.Debug("rejected blob", zap.String("source", b.Source))
			continue
		}
		cleaned = append(cleaned, domain.Blob{Source: b.Source, Text: text})
	}
	if len(cleaned) <= 1 {
		return cleaned, nil
	}
	texts := make([]string, len(cleaned))
	for i, b := range cleaned {
		texts[i] = b.Text
	}
	mask, err := p.dedup.keepMask(texts)
	if err != nil {
		return nil, err
	}
	if mask == nil {
		return cleaned, nil
	}
	out := make([]domain.Blob, 0, len(cleaned))
	for i, keep := range mask {
		if keep {
			out = append(out, cleaned[i])
		}
	}
	p.logger.Info("cleaning pass finished",
		zap.Int("input", len(blobs)),
		zap.Int("cleaned", len(cleaned)),
		zap.Int("kept", len(out)))
	return out, nil
}
