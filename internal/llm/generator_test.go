package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv("TEST_LLM_KEY", "secret")
	c, err := NewClient(Config{BaseURL: baseURL, APIKeyEnv: "TEST_LLM_KEY", Model: "test-model"}, nil)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "TEST_LLM_KEY"}, nil)
	assert.ErrorContains(t, err, "TEST_LLM_KEY")
}

func TestGeneratePostsPerLanguage(t *testing.T) {
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		prompts = append(prompts, req.Messages[0].Content)
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":"  post %d  "}}]}`, len(prompts))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	posts, err := c.GeneratePosts(context.Background(), PostRequest{
		Languages: []string{"en", "zh"},
		Persona:   "a thought leader",
		Platform:  "LinkedIn",
		Length:    900,
		Emojis:    true,
		Topic:     "vector search",
		Context:   "retrieved context body",
	})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "post 1", posts["en"], "output must be trimmed")
	assert.Equal(t, "post 2", posts["zh"])

	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "in en with the tone of a thought leader")
	assert.Contains(t, prompts[0], "Emojis: on, Hashtags: off")
	assert.Contains(t, prompts[0], "[TOPIC HINT] vector search")
	assert.Contains(t, prompts[0], "retrieved context body")
	assert.Contains(t, prompts[1], "in zh with")
}

func TestGeneratePostsEmptyTopicHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Messages[0].Content, "[TOPIC HINT] n/a")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.GeneratePosts(context.Background(), PostRequest{Languages: []string{"en"}})
	require.NoError(t, err)
}

func TestGeneratePostsModelFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.GeneratePosts(context.Background(), PostRequest{Languages: []string{"en"}})
	assert.ErrorContains(t, err, "generating en post")
}

func TestGeneratePostsNoLanguages(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	_, err := c.GeneratePosts(context.Background(), PostRequest{})
	assert.Error(t, err)
}
