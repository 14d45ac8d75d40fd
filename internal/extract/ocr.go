package extract

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// OCR extracts text from an image. Best-effort: an empty string means
// the source produced no contribution, which the pipeline tolerates.
type OCR interface {
	Text(image []byte) string
}

// OCRClient is a minimal REST client to a tesseract-style OCR service.
type OCRClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// OCRConfig configures the OCR client.
type OCRConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewOCRClient(cfg OCRConfig, logger *zap.Logger) *OCRClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OCRClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Text runs OCR over raw image bytes. Any failure degrades to "".
func (c *OCRClient) Text(image []byte) string {
	body, _ := json.Marshal(map[string]string{
		"image":     base64.StdEncoding.EncodeToString(image),
		"languages": "eng+chi_sim",
	})
	resp, err := c.client.Post(fmt.Sprintf("%s/ocr", c.baseURL), "application/json", bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("ocr request failed", zap.Error(err))
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		c.logger.Warn("ocr request failed", zap.String("status", resp.Status))
		return ""
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Warn("ocr response decode failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(out.Text)
}
