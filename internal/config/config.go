package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for BriefKit
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Ledger      LedgerConfig      `mapstructure:"ledger"`
	Storage     StorageConfig     `mapstructure:"storage"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Transcriber TranscriberConfig `mapstructure:"transcriber"`
	Renderer    RendererConfig    `mapstructure:"renderer"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	RAG         RAGConfig         `mapstructure:"rag"`
	Downloads   DownloadsConfig   `mapstructure:"downloads"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

// AuthConfig holds API authentication configuration
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// LedgerConfig holds the record store configuration
type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

// StorageConfig holds upload and export directory configuration
type StorageConfig struct {
	Uploads     string `mapstructure:"uploads"`
	Exports     string `mapstructure:"exports"`
	MaxFileSize int64  `mapstructure:"max_file_size"`
}

// LLMConfig holds LLM provider configuration
type LLMConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	Temperature    float64 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// TranscriberConfig holds speech-to-text tool configuration
type TranscriberConfig struct {
	FFmpegPath  string   `mapstructure:"ffmpeg_path"`
	Command     string   `mapstructure:"command"`
	CommandArgs []string `mapstructure:"command_args"`
	WorkDir     string   `mapstructure:"work_dir"`
}

// RendererConfig holds export rendering configuration
type RendererConfig struct {
	ConverterPath string `mapstructure:"converter_path"`
}

// PipelineConfig holds pipeline execution configuration
type PipelineConfig struct {
	MaxAttempts     uint          `mapstructure:"max_attempts"`
	GenerationDelay time.Duration `mapstructure:"generation_delay"`
	FetchDelay      time.Duration `mapstructure:"fetch_delay"`
	StageTimeout    time.Duration `mapstructure:"stage_timeout"`
	RequireQuality  bool          `mapstructure:"require_quality"`
}

// RAGConfig holds transcript vector index configuration
type RAGConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DBPath       string `mapstructure:"db_path"`
	IndexType    string `mapstructure:"index_type"`
	ChunkSize    int    `mapstructure:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`
}

// DownloadsConfig holds export retention configuration
type DownloadsConfig struct {
	Retention time.Duration `mapstructure:"retention"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("BRIEFKIT")
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("auth.api_key", "")

	v.SetDefault("ledger.path", "./data/briefkit.db")

	v.SetDefault("storage.uploads", "./data/uploads")
	v.SetDefault("storage.exports", "./data/exports")
	v.SetDefault("storage.max_file_size", int64(500*1024*1024))

	v.SetDefault("llm.base_url", "http://localhost:11434/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "qwen2.5:7b")
	v.SetDefault("llm.embedding_model", "nomic-embed-text")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 8192)
	v.SetDefault("llm.timeout_seconds", 300)

	v.SetDefault("transcriber.ffmpeg_path", "ffmpeg")
	v.SetDefault("transcriber.command", "whisper-cli")
	v.SetDefault("transcriber.work_dir", "./data/work")

	v.SetDefault("renderer.converter_path", "")

	v.SetDefault("pipeline.max_attempts", 3)
	v.SetDefault("pipeline.generation_delay", "2s")
	v.SetDefault("pipeline.fetch_delay", "1s")
	v.SetDefault("pipeline.stage_timeout", "10m")
	v.SetDefault("pipeline.require_quality", false)

	v.SetDefault("rag.enabled", false)
	v.SetDefault("rag.db_path", "./data/rag.db")
	v.SetDefault("rag.index_type", "hnsw")
	v.SetDefault("rag.chunk_size", 1000)
	v.SetDefault("rag.chunk_overlap", 200)

	v.SetDefault("downloads.retention", "24h")
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
