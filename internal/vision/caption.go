package vision

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Captioner turns an image into a short text description. It is a
// best-effort external collaborator; callers treat a failure as a
// per-item skip, never as a batch abort.
type Captioner interface {
	Caption(data []byte) (string, error)
}

// Client is a minimal REST client to a BLIP-style captioning service.
type Client struct {
	baseURL string
	client  *http.Client
}

// Config configures the captioning client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Caption requests a caption for raw image bytes.
func (c *Client) Caption(data []byte) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"image": base64.StdEncoding.EncodeToString(data),
	})
	resp, err := c.client.Post(fmt.Sprintf("%s/caption", c.baseURL), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("caption request failed: %s", resp.Status)
	}
	var out struct {
		Caption string `json:"caption"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Caption == "" {
		return "", errors.New("empty caption returned")
	}
	return out.Caption, nil
}
