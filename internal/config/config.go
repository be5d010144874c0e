package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendChromem  = "chromem"
	BackendPGVector = "pgvector"

	ProviderOllama = "ollama"
	ProviderOpenAI = "openai" // any OpenAI-compatible endpoint, e.g. OpenRouter
)

type Config struct {
	App         AppConfig         `yaml:"app"`
	Log         LogConfig         `yaml:"log"`
	LLM         LLMConfig         `yaml:"llm"`
	EmbedLLM    LLMConfig         `yaml:"embed_llm"`
	RAG         RAGConfig         `yaml:"rag"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Database    DatabaseConfig    `yaml:"database"`
	Storage     StorageConfig     `yaml:"storage"`
	Preview     PreviewConfig     `yaml:"preview"`
	Roles       []string          `yaml:"roles"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`

	// sessions unused for this long are dropped by the server; 0 keeps them
	SessionIdleMinutes int `yaml:"session_idle_minutes"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type LLMConfig struct {
	Provider       string  `yaml:"provider"`
	BaseURL        string  `yaml:"base_url"`
	Key            string  `yaml:"key"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

type RAGConfig struct {
	ChunkSize        int `yaml:"chunk_size"`
	ChunkOverlap     int `yaml:"chunk_overlap"`
	TopK             int `yaml:"top_k"`
	SuggestionBudget int `yaml:"suggestion_budget"`
	SummaryBudget    int `yaml:"summary_budget"`
	KeywordBudget    int `yaml:"keyword_budget"`
	ConceptMapBudget int `yaml:"concept_map_budget"`
	TimelineBudget   int `yaml:"timeline_budget"`
	NumSuggestions   int `yaml:"num_suggestions"`
	NumKeywords      int `yaml:"num_keywords"`
}

type VectorStoreConfig struct {
	Backend        string `yaml:"backend"`
	Path           string `yaml:"path"`
	CollectionName string `yaml:"collection_name"`
	EncryptionKey  string `yaml:"encryption_key"`
}

type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`
	Debug bool   `yaml:"debug"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

type PreviewConfig struct {
	DPI            float64 `yaml:"dpi"`
	HighlightColor string  `yaml:"highlight_color"`
}

// LoadConfig reads the yaml file at path over the defaults, then applies
// .env and RAGCHAT_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	// .env is optional
	_ = godotenv.Load()
	overrideByEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "pdf-role-chat",
			Host:    "127.0.0.1",
			Port:    8501,
			GinMode: "release",

			SessionIdleMinutes: 120,
		},
		Log: LogConfig{Level: "info"},
		LLM: LLMConfig{
			Provider:    ProviderOllama,
			BaseURL:     "http://localhost:11434",
			Model:       "qwen2.5:latest",
			Temperature: 0.2,
		},
		EmbedLLM: LLMConfig{
			Provider: ProviderOllama,
			BaseURL:  "http://localhost:11434",
			Model:    "qwen2.5:latest",
		},
		RAG: RAGConfig{
			ChunkSize:        1000,
			ChunkOverlap:     150,
			TopK:             4,
			SuggestionBudget: 2000,
			SummaryBudget:    10000,
			KeywordBudget:    5000,
			ConceptMapBudget: 7000,
			TimelineBudget:   8000,
			NumSuggestions:   3,
			NumKeywords:      10,
		},
		VectorStore: VectorStoreConfig{
			Backend:        BackendChromem,
			Path:           "vectordb",
			CollectionName: "pdf_chunks",
		},
		Storage: StorageConfig{DataDir: "data"},
		Preview: PreviewConfig{
			DPI:            110,
			HighlightColor: "#ffeb3b",
		},
		Roles: []string{
			"Öğretmen",
			"Öğrenci",
			"Avukat",
			"Doktor",
			"Finans Uzmanı",
			"Yazılım Mühendisi",
			"Teacher",
			"Researcher",
		},
	}
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) Validate() error {
	if c.RAG.ChunkSize <= 0 {
		return fmt.Errorf("rag.chunk_size must be greater than zero")
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("rag.chunk_overlap must be in [0, chunk_size)")
	}
	if c.App.SessionIdleMinutes < 0 {
		return fmt.Errorf("app.session_idle_minutes must not be negative")
	}
	for name, llm := range map[string]LLMConfig{"llm": c.LLM, "embed_llm": c.EmbedLLM} {
		switch llm.Provider {
		case ProviderOllama:
		case ProviderOpenAI:
			if strings.TrimSpace(llm.Key) == "" {
				return fmt.Errorf("%s.key is required for the openai provider", name)
			}
		default:
			return fmt.Errorf("unknown %s.provider %q", name, llm.Provider)
		}
	}
	switch c.VectorStore.Backend {
	case BackendChromem:
		if strings.TrimSpace(c.VectorStore.Path) == "" {
			return fmt.Errorf("vector_store.path is required for the chromem backend")
		}
	case BackendPGVector:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for the pgvector backend")
		}
	default:
		return fmt.Errorf("unknown vector_store.backend %q", c.VectorStore.Backend)
	}
	if key := c.VectorStore.EncryptionKey; key != "" && len(key) != 32 {
		return fmt.Errorf("vector_store.encryption_key must be 32 bytes, got %d", len(key))
	}
	return nil
}

func overrideByEnv(cfg *Config) {
	cfg.App.Host = getEnv("RAGCHAT_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("RAGCHAT_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.Log.Level = getEnv("RAGCHAT_LOG_LEVEL", cfg.Log.Level)

	cfg.LLM.Provider = getEnv("RAGCHAT_LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.BaseURL = getEnv("RAGCHAT_LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Key = getEnv("RAGCHAT_LLM_KEY", cfg.LLM.Key)
	cfg.LLM.Model = getEnv("RAGCHAT_LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.TimeoutSeconds = getEnvAsInt("RAGCHAT_LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)
	cfg.EmbedLLM.Provider = getEnv("RAGCHAT_EMBED_PROVIDER", cfg.EmbedLLM.Provider)
	cfg.EmbedLLM.BaseURL = getEnv("RAGCHAT_EMBED_BASE_URL", cfg.EmbedLLM.BaseURL)
	cfg.EmbedLLM.Key = getEnv("RAGCHAT_EMBED_KEY", cfg.EmbedLLM.Key)
	cfg.EmbedLLM.Model = getEnv("RAGCHAT_EMBED_MODEL", cfg.EmbedLLM.Model)

	cfg.RAG.ChunkSize = getEnvAsInt("RAGCHAT_CHUNK_SIZE", cfg.RAG.ChunkSize)
	cfg.RAG.ChunkOverlap = getEnvAsInt("RAGCHAT_CHUNK_OVERLAP", cfg.RAG.ChunkOverlap)
	cfg.RAG.TopK = getEnvAsInt("RAGCHAT_TOP_K", cfg.RAG.TopK)

	cfg.VectorStore.Backend = getEnv("RAGCHAT_VECTOR_BACKEND", cfg.VectorStore.Backend)
	cfg.VectorStore.Path = getEnv("RAGCHAT_VECTOR_PATH", cfg.VectorStore.Path)
	cfg.VectorStore.EncryptionKey = getEnv("RAGCHAT_VECTOR_ENCRYPTION_KEY", cfg.VectorStore.EncryptionKey)
	cfg.Database.DSN = getEnv("RAGCHAT_DATABASE_DSN", cfg.Database.DSN)
	cfg.Storage.DataDir = getEnv("RAGCHAT_DATA_DIR", cfg.Storage.DataDir)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
