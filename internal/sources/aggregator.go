package sources

import (
	"errors"

	"go.uber.org/zap"

	"insight-helper/internal/domain"
)

// ErrNoOnlineContent reports that every online source came back empty.
// Unlike a single source failing, this is a hard stop: an online-search
// session must never proceed with a silently empty index.
var ErrNoOnlineContent = errors.New("no online content found for topic")

// Source is one external search backend contributing raw text blobs.
// A failing source returns an empty slice, never an error.
type Source interface {
	Fetch(topic string) []domain.Blob
}

// Aggregator queries the configured sources in sequence and concatenates
// their contributions.
type Aggregator struct {
	sources []Source
	logger  *zap.Logger
}

func NewAggregator(logger *zap.Logger, srcs ...Source) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{sources: srcs, logger: logger}
}

// Fetch gathers blobs from all sources. It fails with ErrNoOnlineContent
// when the combined result is empty.
func (a *Aggregator) Fetch(topic string) ([]domain.Blob, error) {
	var blobs []domain.Blob
	for _, src := range a.sources {
		blobs = append(blobs, src.Fetch(topic)...)
	}
	if len(blobs) == 0 {
		return nil, ErrNoOnlineContent
	}
	a.logger.Info("aggregated online sources",
		zap.String("topic", topic),
		zap.Int("blobs", len(blobs)))
	return blobs, nil
}
