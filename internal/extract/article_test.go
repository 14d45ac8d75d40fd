package extract

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchStripsMarkup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head>
			<script>var tracking = "noise";</script>
			<style>body { color: red; }</style>
		</head><body>
			<h1>Headline</h1>
			<p>First paragraph of the &amp; article body.</p>
		</body></html>`))
	}))
	defer srv.Close()

	f := NewArticleFetcher(0, nil)
	text := f.Fetch(srv.URL)
	assert.Contains(t, text, "Headline")
	assert.Contains(t, text, "First paragraph of the")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "<p>")
	assert.NotContains(t, text, "&amp;")
}

func TestFetchNon200ReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewArticleFetcher(0, nil)
	assert.Empty(t, f.Fetch(srv.URL))
}

func TestFetchUnreachableReturnsEmpty(t *testing.T) {
	f := NewArticleFetcher(0, nil)
	assert.Empty(t, f.Fetch("http://127.0.0.1:1/nope"))
}

func TestOCRTextSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ocr", r.URL.Path)
		w.Write([]byte(`{"text": "  recognized slide text \n"}`))
	}))
	defer srv.Close()

	c := NewOCRClient(OCRConfig{BaseURL: srv.URL}, nil)
	assert.Equal(t, "recognized slide text", c.Text([]byte{1, 2, 3}))
}

func TestOCRTextFailureDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewOCRClient(OCRConfig{BaseURL: srv.URL}, nil)
	assert.Empty(t, c.Text([]byte{1}))

	unreachable := NewOCRClient(OCRConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	assert.Empty(t, unreachable.Text([]byte{1}))
}
