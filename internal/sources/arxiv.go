package sources

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"insight-helper/internal/domain"
)

// ArxivClient queries the arXiv Atom API for paper abstracts. Any failure
// degrades to an empty contribution.
type ArxivClient struct {
	baseURL    string
	maxResults int
	client     *http.Client
	logger     *zap.Logger
}

// ArxivConfig configures the arXiv client.
type ArxivConfig struct {
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
}

func NewArxivClient(cfg ArxivConfig, logger *zap.Logger) *ArxivClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArxivClient{
		baseURL:    cfg.BaseURL,
		maxResults: cfg.MaxResults,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID      string `xml:"id"`
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
}

// Fetch returns paper abstract blobs for the topic.
func (c *ArxivClient) Fetch(topic string) []domain.Blob {
	query := fmt.Sprintf("%s/query?search_query=all:%s&start=0&max_results=%d",
		c.baseURL, url.QueryEscape(topic), c.maxResults)
	resp, err := c.client.Get(query)
	if err != nil {
		c.logger.Warn("arxiv fetch failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("arxiv fetch failed", zap.String("status", resp.Status))
		return nil
	}
	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		c.logger.Warn("arxiv response decode failed", zap.Error(err))
		return nil
	}
	var blobs []domain.Blob
	for _, e := range feed.Entries {
		combined := strings.TrimSpace(fmt.Sprintf("[Paper] %s\n%s\n(Source: %s)",
			strings.TrimSpace(e.Title), strings.TrimSpace(e.Summary), strings.TrimSpace(e.ID)))
		blobs = append(blobs, domain.Blob{Source: strings.TrimSpace(e.ID), Text: combined})
	}
	c.logger.Info("retrieved arxiv papers", zap.Int("count", len(blobs)))
	return blobs
}
