package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"insight-helper/internal/clean"
	"insight-helper/internal/cover"
	"insight-helper/internal/domain"
	"insight-helper/internal/extract"
	"insight-helper/internal/index"
	"insight-helper/internal/llm"
	"insight-helper/internal/retriever"
	"insight-helper/internal/sources"
	"insight-helper/internal/vectorstore"
)

// GenerateOptions are the user-facing knobs of one generate action.
type GenerateOptions struct {
	Languages []string
	Persona   string
	Platform  string
	Length    int
	Emojis    bool
	Hashtags  bool
	Topic     string
}

// Result is the outcome of one generate action.
type Result struct {
	Context string
	Digest  string
	Posts   map[string]string
	Covers  map[string][]byte
}

// Pipeline runs the full flow sequentially: extract, clean, index,
// retrieve, generate, render. One generate action owns the persistent
// store for its duration; concurrent writers are not supported.
type Pipeline struct {
	cleaner      *clean.Pipeline
	builder      *index.Builder
	retriever    *retriever.Retriever
	store        vectorstore.Storage
	newEphemeral func() vectorstore.Storage
	aggregator   *sources.Aggregator
	ocr          extract.OCR
	articles     extract.ArticleFetcher
	generator    llm.Generator
	covers       *cover.Renderer
	summarizer   domain.Summarizer
	maxSentences int
	logger       *zap.Logger
}

// Deps collects the pipeline collaborators.
type Deps struct {
	Cleaner      *clean.Pipeline
	Builder      *index.Builder
	Retriever    *retriever.Retriever
	Store        vectorstore.Storage
	NewEphemeral func() vectorstore.Storage
	Aggregator   *sources.Aggregator
	OCR          extract.OCR
	Articles     extract.ArticleFetcher
	Generator    llm.Generator
	Covers       *cover.Renderer
	Summarizer   domain.Summarizer
	MaxSentences int
	Logger       *zap.Logger
}

func NewPipeline(d Deps) *Pipeline {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cleaner:      d.Cleaner,
		builder:      d.Builder,
		retriever:    d.Retriever,
		store:        d.Store,
		newEphemeral: d.NewEphemeral,
		aggregator:   d.Aggregator,
		ocr:          d.OCR,
		articles:     d.Articles,
		generator:    d.Generator,
		covers:       d.Covers,
		summarizer:   d.Summarizer,
		maxSentences: d.MaxSentences,
		logger:       logger,
	}
}

// GenerateLocal runs the pipeline over uploaded images and article URLs
// against the persistent store. An empty cleaned batch is tolerated here:
// the store may already hold content from earlier sessions.
func (p *Pipeline) GenerateLocal(ctx context.Context, images []index.Image, urls []string, opts GenerateOptions) (*Result, error) {
	if len(images) == 0 && len(urls) == 0 {
		return nil, errors.New("provide at least one image or URL")
	}
	var blobs []domain.Blob
	for _, img := range images {
		blobs = append(blobs, domain.Blob{Source: img.Name, Text: p.ocr.Text(img.Data)})
	}
	for _, u := range urls {
		blobs = append(blobs, domain.Blob{Source: u, Text: p.articles.Fetch(u)})
	}
	cleaned, err := p.cleaner.Run(blobs)
	if err != nil {
		return nil, fmt.Errorf("cleaning inputs: %w", err)
	}
	added, err := p.builder.Build(p.store, cleaned, images)
	if err != nil {
		if !errors.Is(err, index.ErrNoContent) {
			return nil, fmt.Errorf("building index: %w", err)
		}
		p.logger.Warn("no usable content in this upload, using existing index")
	}
	p.logger.Info("local ingest finished", zap.Int("added", added))
	return p.finish(ctx, p.store, opts)
}

// GenerateOnline fetches news and papers for the topic, builds a fresh
// ephemeral index and runs the same retrieval and generation flow.
// An empty aggregate or an empty cleaned batch is a hard stop.
func (p *Pipeline) GenerateOnline(ctx context.Context, topic string, opts GenerateOptions) (*Result, error) {
	blobs, err := p.aggregator.Fetch(topic)
	if err != nil {
		return nil, err
	}
	cleaned, err := p.cleaner.Run(blobs)
	if err != nil {
		return nil, fmt.Errorf("cleaning online content: %w", err)
	}
	store := p.newEphemeral()
	added, err := p.builder.Build(store, cleaned, nil)
	if err != nil {
		return nil, fmt.Errorf("building online index: %w", err)
	}
	p.logger.Info("online ingest finished",
		zap.String("topic", topic),
		zap.Int("added", added))
	opts.Topic = topic
	return p.finish(ctx, store, opts)
}

func (p *Pipeline) finish(ctx context.Context, store vectorstore.Storage, opts GenerateOptions) (*Result, error) {
	contextStr, err := p.retriever.Context(store, opts.Topic)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}
	digest := ""
	if contextStr != "" && p.summarizer != nil {
		digest, err = p.summarizer.Summarize(contextStr, p.maxSentences)
		if err != nil {
			return nil, fmt.Errorf("summarizing context: %w", err)
		}
	}
	posts, err := p.generator.GeneratePosts(ctx, llm.PostRequest{
		Languages: opts.Languages,
		Persona:   opts.Persona,
		Platform:  opts.Platform,
		Length:    opts.Length,
		Emojis:    opts.Emojis,
		Hashtags:  opts.Hashtags,
		Topic:     opts.Topic,
		Context:   contextStr,
	})
	if err != nil {
		return nil, fmt.Errorf("generating posts: %w", err)
	}
	covers := make(map[string][]byte, len(posts))
	for lang, post := range posts {
		img := p.covers.Render(coverTitle(post), coverSubtitle(opts.Topic))
		var buf bytes.Buffer
		if err := cover.EncodePNG(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding cover for %s: %w", lang, err)
		}
		covers[lang] = buf.Bytes()
	}
	return &Result{Context: contextStr, Digest: digest, Posts: posts, Covers: covers}, nil
}

// coverTitle takes the first line of the post, capped at 60 runes.
func coverTitle(post string) string {
	line := post
	if i := strings.IndexByte(post, '\n'); i >= 0 {
		line = post[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "Insight"
	}
	runes := []rune(line)
	if len(runes) > 60 {
		return string(runes[:60])
	}
	return line
}

func coverSubtitle(topic string) string {
	if strings.TrimSpace(topic) == "" {
		return "AI-driven insight"
	}
	return topic
}
