package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PostRequest carries the generation-time parameters. Persona and
// platform are opaque style knobs passed straight to the model.
type PostRequest struct {
	Languages []string
	Persona   string
	Platform  string
	Length    int
	Emojis    bool
	Hashtags  bool
	Topic     string
	Context   string
}

// Generator turns retrieved context into one social post per language.
type Generator interface {
	GeneratePosts(ctx context.Context, req PostRequest) (map[string]string, error)
}

// Client is a chat-completions client against an OpenAI-compatible API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config configures the generation client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a generation client. A missing API key is fatal here:
// without the model there is nothing this system can produce.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.1-8b-instant"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

const promptTemplate = `You are a multilingual content strategist.
Based ONLY on the following CONTEXT (from both image and text),
create a %s post in %s with the tone of %s.
Length ~ %d characters. Emojis: %s, Hashtags: %s.

[TOPIC HINT] %s

[CONTEXT]
%s`

// GeneratePosts produces one post per requested language. Each language
// is an independent model call; the first failure aborts the request.
func (c *Client) GeneratePosts(ctx context.Context, req PostRequest) (map[string]string, error) {
	if len(req.Languages) == 0 {
		return nil, errors.New("no output languages requested")
	}
	topic := req.Topic
	if topic == "" {
		topic = "n/a"
	}
	outputs := make(map[string]string, len(req.Languages))
	for _, lang := range req.Languages {
		prompt := fmt.Sprintf(promptTemplate,
			req.Platform, lang, req.Persona,
			req.Length, onOff(req.Emojis), onOff(req.Hashtags),
			topic, req.Context)
		text, err := c.chatCompletion(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("generating %s post: %w", lang, err)
		}
		outputs[lang] = strings.TrimSpace(text)
		c.logger.Info("generated post",
			zap.String("language", lang),
			zap.Int("chars", len(outputs[lang])))
	}
	return outputs, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) chatCompletion(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat completion failed: %s", resp.Status)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return out.Choices[0].Message.Content, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
