package extract

import (
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ArticleFetcher pulls the readable text of a web page. Best-effort: an
// empty string means the URL produced no contribution.
type ArticleFetcher interface {
	Fetch(url string) string
}

// HTTPArticleFetcher fetches pages over HTTP and strips markup down to
// body text. It is deliberately crude; the normalizer downstream removes
// leftover noise.
type HTTPArticleFetcher struct {
	client *http.Client
	logger *zap.Logger
}

func NewArticleFetcher(timeout time.Duration, logger *zap.Logger) *HTTPArticleFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPArticleFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

var (
	scriptRe  = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
	entityRe  = regexp.MustCompile(`&[a-zA-Z#0-9]+;`)
)

// Fetch downloads the page and returns its visible text, or "" on any
// failure or non-200 response.
func (f *HTTPArticleFetcher) Fetch(url string) string {
	resp, err := f.client.Get(url)
	if err != nil {
		f.logger.Warn("article fetch failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("article fetch failed", zap.String("url", url), zap.String("status", resp.Status))
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		f.logger.Warn("article read failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	text := string(data)
	text = scriptRe.ReplaceAllString(text, " ")
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = entityRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
