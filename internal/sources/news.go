package sources

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"insight-helper/internal/domain"
)

// NewsClient queries the NewsAPI "everything" endpoint. Absence of an API
// key is a non-fatal configuration state: the source simply contributes
// nothing. Timeouts and non-200 responses likewise degrade to an empty
// contribution.
type NewsClient struct {
	baseURL    string
	apiKey     string
	maxResults int
	client     *http.Client
	logger     *zap.Logger
}

// NewsConfig configures the NewsAPI client.
type NewsConfig struct {
	BaseURL    string
	APIKey     string
	MaxResults int
	Timeout    time.Duration
}

func NewNewsClient(cfg NewsConfig, logger *zap.Logger) *NewsClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewsClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Fetch returns raw article blobs for the topic.
func (c *NewsClient) Fetch(topic string) []domain.Blob {
	if c.apiKey == "" {
		c.logger.Info("news api key not configured, skipping news source")
		return nil
	}
	params := url.Values{}
	params.Set("q", topic)
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(c.maxResults))
	params.Set("sortBy", "relevancy")
	params.Set("apiKey", c.apiKey)
	resp, err := c.client.Get(fmt.Sprintf("%s/everything?%s", c.baseURL, params.Encode()))
	if err != nil {
		c.logger.Warn("news fetch failed", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("news fetch failed", zap.String("status", resp.Status))
		return nil
	}
	var out struct {
		Status   string `json:"status"`
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Content     string `json:"content"`
			URL         string `json:"url"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Warn("news response decode failed", zap.Error(err))
		return nil
	}
	if out.Status != "ok" {
		c.logger.Warn("news api returned error status", zap.String("api_status", out.Status))
		return nil
	}
	var blobs []domain.Blob
	for _, a := range out.Articles {
		combined := fmt.Sprintf("%s\n%s\n%s\n(Source: %s)", a.Title, a.Description, a.Content, a.URL)
		if len(combined) <= 50 {
			continue
		}
		blobs = append(blobs, domain.Blob{Source: a.URL, Text: combined})
	}
	c.logger.Info("retrieved news articles", zap.Int("count", len(blobs)))
	return blobs
}
