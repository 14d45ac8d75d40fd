package openai

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv("TEST_EMBED_KEY", "secret")
	c, err := NewClient(Config{BaseURL: baseURL, APIKeyEnv: "TEST_EMBED_KEY", Model: "clip-ViT-B-32"})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "TEST_EMBED_KEY"})
	assert.Error(t, err)
}

func TestEmbedNormalizesAndSetsDimension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req["input"])
		assert.Equal(t, "clip-ViT-B-32", req["model"])
		w.Write([]byte(`{"data":[{"embedding":[3,0,4]}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	v, err := c.Embed("hello")
	require.NoError(t, err)
	require.Len(t, v, 3)
	assert.InDelta(t, 0.6, v[0], 1e-9)
	assert.InDelta(t, 0.8, v[2], 1e-9)

	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
	assert.Equal(t, 3, c.Dimension())
}

func TestEmbedAcceptsFlatResponseShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embedding":[0,2,0]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	v, err := c.Embed("hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, v)
}

func TestEmbedImagePostsBase64(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/embeddings", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "AQID", req["image"]) // base64 of 0x01 0x02 0x03
		w.Write([]byte(`{"data":[{"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	v, err := c.EmbedImage([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, v)
}

func TestEmbedRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[{"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	v, err := c.Embed("retry me")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, v)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEmbedClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Embed("bad input")
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDecodeEmbedding(t *testing.T) {
	assert.Nil(t, decodeEmbedding([]byte(`{}`)))
	assert.Nil(t, decodeEmbedding([]byte(`not json`)))
	assert.Equal(t, []float64{1, 2}, decodeEmbedding([]byte(`{"data":[{"embedding":[1,2]}]}`)))
	assert.Equal(t, []float64{3}, decodeEmbedding([]byte(`{"embedding":[3]}`)))
}
