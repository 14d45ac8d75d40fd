package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"insight-helper/internal/chunker"
	"insight-helper/internal/clean"
	"insight-helper/internal/config"
	"insight-helper/internal/cover"
	"insight-helper/internal/embedding/openai"
	"insight-helper/internal/extract"
	"insight-helper/internal/index"
	"insight-helper/internal/llm"
	"insight-helper/internal/retriever"
	"insight-helper/internal/service"
	"insight-helper/internal/sources"
	"insight-helper/internal/summarizer"
	"insight-helper/internal/tui"
	"insight-helper/internal/vectorstore"
	"insight-helper/internal/vectorstore/memory"
	"insight-helper/internal/vectorstore/sqlite"
	"insight-helper/internal/vision"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, topic, coversDir string
	var debug, online bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/insight/config.yaml if not provided)")
	flag.StringVar(&topic, "topic", "", "Optional topic hint for retrieval and generation")
	flag.StringVar(&coversDir, "covers", "covers", "Directory for generated cover images")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&online, "online", false, "Fetch from online news/paper sources instead of local inputs")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 && !online {
		fmt.Println("Usage: insight [--config=config.yaml] [--topic=...] [--online] [image.png ...] [https://... ...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(debug)
	defer logger.Sync()

	// Assemble components
	embedder, err := openai.NewClient(openai.Config{
		BaseURL:    cfg.Embedder.BaseURL,
		APIKeyEnv:  cfg.Embedder.APIKeyEnv,
		Model:      cfg.Embedder.Model,
		ImageModel: cfg.Embedder.ImageModel,
		Timeout:    time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	var store vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "sqlite", "":
		st, err := sqlite.NewStorage(sqlite.Config{
			DataDir:    cfg.VectorStore.SQLite.DataDir,
			Collection: cfg.VectorStore.SQLite.Collection,
		})
		if err != nil {
			log.Fatalf("opening vector store: %v", err)
		}
		defer st.Close()
		store = st
	case "memory":
		store = memory.NewStorage()
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	captioner := vision.NewClient(vision.Config{
		BaseURL: cfg.Caption.BaseURL,
		Timeout: time.Duration(cfg.Caption.TimeoutSecs) * time.Second,
	})
	ocr := extract.NewOCRClient(extract.OCRConfig{
		BaseURL: cfg.OCR.BaseURL,
		Timeout: time.Duration(cfg.OCR.TimeoutSecs) * time.Second,
	}, logger)
	articles := extract.NewArticleFetcher(time.Duration(cfg.Sources.TimeoutSecs)*time.Second, logger)

	sourceTimeout := time.Duration(cfg.Sources.TimeoutSecs) * time.Second
	aggregator := sources.NewAggregator(logger,
		sources.NewNewsClient(sources.NewsConfig{
			BaseURL:    cfg.Sources.News.BaseURL,
			APIKey:     os.Getenv(cfg.Sources.News.APIKeyEnv),
			MaxResults: cfg.Sources.News.MaxResults,
			Timeout:    sourceTimeout,
		}, logger),
		sources.NewArxivClient(sources.ArxivConfig{
			BaseURL:    cfg.Sources.Arxiv.BaseURL,
			MaxResults: cfg.Sources.Arxiv.MaxResults,
			Timeout:    sourceTimeout,
		}, logger),
	)

	generator, err := llm.NewClient(llm.Config{
		BaseURL:   cfg.Generator.BaseURL,
		APIKeyEnv: cfg.Generator.APIKeyEnv,
		Model:     cfg.Generator.Model,
		Timeout:   time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	}, logger)
	if err != nil {
		log.Fatalf("generator init failed: %v", err)
	}

	normalizer := clean.NewNormalizer(cfg.Cleaner.MinLength, cfg.Cleaner.Languages)
	dedup := clean.NewDeduplicator(embedder, cfg.Cleaner.DedupThreshold, logger)
	svc := service.NewPipeline(service.Deps{
		Cleaner:      clean.NewPipeline(normalizer, dedup, logger),
		Builder:      index.NewBuilder(chunker.NewRecursive(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap), embedder, embedder, captioner, logger),
		Retriever:    retriever.New(embedder, cfg.Retriever.TopK, cfg.Retriever.DefaultQuery, logger),
		Store:        store,
		NewEphemeral: func() vectorstore.Storage { return memory.NewStorage() },
		Aggregator:   aggregator,
		OCR:          ocr,
		Articles:     articles,
		Generator:    generator,
		Covers:       cover.NewRenderer(cfg.Generator.Platform + " Insight"),
		Summarizer:   summarizer.NewFrequencySummarizer(),
		MaxSentences: cfg.Summarizer.MaxSentences,
		Logger:       logger,
	})

	opts := service.GenerateOptions{
		Languages: cfg.Generator.Languages,
		Persona:   cfg.Generator.Persona,
		Platform:  cfg.Generator.Platform,
		Length:    cfg.Generator.Length,
		Emojis:    cfg.Generator.Emojis,
		Hashtags:  cfg.Generator.Hashtags,
		Topic:     topic,
	}

	ctx := context.Background()
	var result *service.Result
	if online {
		result, err = svc.GenerateOnline(ctx, topic, opts)
	} else {
		images, urls, rerr := splitInputs(inputs)
		if rerr != nil {
			log.Fatalf("reading inputs: %v", rerr)
		}
		result, err = svc.GenerateLocal(ctx, images, urls, opts)
	}
	if err != nil {
		log.Fatalf("generate failed: %v", err)
	}
	if err := writeCovers(coversDir, result); err != nil {
		logger.Warn("writing cover images failed", zap.Error(err))
	}

	m := tui.New(svc, result, opts)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("logger init failed: %v", err)
		}
		return l
	}
	l, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	return l
}

// splitInputs separates URLs from image file paths and loads the images.
func splitInputs(inputs []string) ([]index.Image, []string, error) {
	var images []index.Image
	var urls []string
	for _, in := range inputs {
		if strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://") {
			urls = append(urls, in)
			continue
		}
		data, err := os.ReadFile(in)
		if err != nil {
			return nil, nil, err
		}
		images = append(images, index.Image{Name: filepath.Base(in), Data: data})
	}
	return images, urls, nil
}

func writeCovers(dir string, result *service.Result) error {
	if len(result.Covers) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for lang, data := range result.Covers {
		if err := os.WriteFile(filepath.Join(dir, "cover_"+lang+".png"), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
