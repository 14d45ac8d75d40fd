package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CleanerConfig configures text normalization and semantic deduplication.
type CleanerConfig struct {
	MinLength      int      `yaml:"min_length"`
	Languages      []string `yaml:"languages"`
	DedupThreshold float64  `yaml:"dedup_threshold"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// EmbedderConfig holds connection details for the embedding service.
// Text and image endpoints must belong to the same model family so both
// modalities land in one vector space.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	ImageModel  string `yaml:"image_model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// CaptionConfig holds connection details for the image captioning service.
type CaptionConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OCRConfig holds connection details for the OCR service.
type OCRConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SQLiteConfig locates the persistent vector store on disk.
type SQLiteConfig struct {
	DataDir    string `yaml:"data_dir"`
	Collection string `yaml:"collection"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
}

// RetrieverConfig configures context retrieval.
type RetrieverConfig struct {
	TopK         int    `yaml:"top_k"`
	DefaultQuery string `yaml:"default_query"`
}

// NewsConfig configures the NewsAPI source.
type NewsConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	MaxResults int    `yaml:"max_results"`
}

// ArxivConfig configures the arXiv source.
type ArxivConfig struct {
	BaseURL    string `yaml:"base_url"`
	MaxResults int    `yaml:"max_results"`
}

// SourcesConfig configures the online source aggregator.
type SourcesConfig struct {
	News        NewsConfig  `yaml:"news"`
	Arxiv       ArxivConfig `yaml:"arxiv"`
	TimeoutSecs int         `yaml:"timeout_secs"`
}

// GeneratorConfig configures the post generation model and output defaults.
type GeneratorConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKeyEnv   string   `yaml:"api_key_env"`
	Model       string   `yaml:"model"`
	TimeoutSecs int      `yaml:"timeout_secs"`
	Languages   []string `yaml:"languages"`
	Persona     string   `yaml:"persona"`
	Platform    string   `yaml:"platform"`
	Length      int      `yaml:"length"`
	Emojis      bool     `yaml:"emojis"`
	Hashtags    bool     `yaml:"hashtags"`
}

// SummarizerConfig configures the corpus digest shown in the TUI.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Cleaner     CleanerConfig     `yaml:"cleaner"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Caption     CaptionConfig     `yaml:"caption"`
	OCR         OCRConfig         `yaml:"ocr"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retriever   RetrieverConfig   `yaml:"retriever"`
	Sources     SourcesConfig     `yaml:"sources"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/insight/config.yaml.
// If neither exists, it writes defaults to ~/.config/insight/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "insight", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		VectorStore: VectorStoreConfig{Type: "sqlite"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Cleaner.MinLength == 0 {
		cfg.Cleaner.MinLength = 40
	}
	if len(cfg.Cleaner.Languages) == 0 {
		cfg.Cleaner.Languages = []string{"en", "zh"}
	}
	if cfg.Cleaner.DedupThreshold == 0 {
		cfg.Cleaner.DedupThreshold = 0.95
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 800
	}
	if cfg.Chunker.ChunkOverlap == 0 {
		cfg.Chunker.ChunkOverlap = 120
	}
	if cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = "http://localhost:8480/v1"
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "EMBEDDING_API_KEY"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "clip-ViT-B-32"
	}
	if cfg.Embedder.ImageModel == "" {
		cfg.Embedder.ImageModel = cfg.Embedder.Model
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 30
	}
	if cfg.Caption.BaseURL == "" {
		cfg.Caption.BaseURL = "http://localhost:8481"
	}
	if cfg.Caption.TimeoutSecs == 0 {
		cfg.Caption.TimeoutSecs = 30
	}
	if cfg.OCR.BaseURL == "" {
		cfg.OCR.BaseURL = "http://localhost:8482"
	}
	if cfg.OCR.TimeoutSecs == 0 {
		cfg.OCR.TimeoutSecs = 30
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "sqlite"
	}
	if cfg.VectorStore.Type == "sqlite" {
		if cfg.VectorStore.SQLite == nil {
			cfg.VectorStore.SQLite = &SQLiteConfig{}
		}
		if cfg.VectorStore.SQLite.DataDir == "" {
			cfg.VectorStore.SQLite.DataDir = "./vector_db"
		}
		if cfg.VectorStore.SQLite.Collection == "" {
			cfg.VectorStore.SQLite.Collection = "linkedin_insight"
		}
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 5
	}
	if cfg.Retriever.DefaultQuery == "" {
		cfg.Retriever.DefaultQuery = "Summarize key insights for professionals"
	}
	if cfg.Sources.News.BaseURL == "" {
		cfg.Sources.News.BaseURL = "https://newsapi.org/v2"
	}
	if cfg.Sources.News.APIKeyEnv == "" {
		cfg.Sources.News.APIKeyEnv = "NEWS_API_KEY"
	}
	if cfg.Sources.News.MaxResults == 0 {
		cfg.Sources.News.MaxResults = 10
	}
	if cfg.Sources.Arxiv.BaseURL == "" {
		cfg.Sources.Arxiv.BaseURL = "http://export.arxiv.org/api"
	}
	if cfg.Sources.Arxiv.MaxResults == 0 {
		cfg.Sources.Arxiv.MaxResults = 5
	}
	if cfg.Sources.TimeoutSecs == 0 {
		cfg.Sources.TimeoutSecs = 15
	}
	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = "GROQ_API_KEY"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "llama-3.1-8b-instant"
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 120
	}
	if len(cfg.Generator.Languages) == 0 {
		cfg.Generator.Languages = []string{"en", "zh"}
	}
	if cfg.Generator.Persona == "" {
		cfg.Generator.Persona = "Professional"
	}
	if cfg.Generator.Platform == "" {
		cfg.Generator.Platform = "LinkedIn"
	}
	if cfg.Generator.Length == 0 {
		cfg.Generator.Length = 600
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = 5
	}
}
