package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Comfy      ComfyConfig      `mapstructure:"comfy"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Generation GenerationConfig `mapstructure:"generation"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// ArchiveConfig configures the S3-compatible artifact archive. When
// disabled, rendered backgrounds are served straight from the rendering
// backend and never persisted.
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

type LLMConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
}

type ComfyConfig struct {
	BaseURL     string    `mapstructure:"base_url"`
	Model       string    `mapstructure:"model"`
	Sampler     string    `mapstructure:"sampler"`
	Steps       int       `mapstructure:"steps"`
	CFG         float64   `mapstructure:"cfg"`
	Denoise     float64   `mapstructure:"denoise"`
	Width       int       `mapstructure:"width"`
	Height      int       `mapstructure:"height"`
	LoraNames   []string  `mapstructure:"lora_names"`
	LoraWeights []float64 `mapstructure:"lora_weights"`
}

// PipelineConfig selects how scene tags are derived. Mode "two_pass"
// asks for a natural-language scene first and constrains to vocabulary in
// a second call; "single" asks for the flat tag list directly.
type PipelineConfig struct {
	Mode             string `mapstructure:"mode"`
	HistoryTurns     int    `mapstructure:"history_turns"`
	MaxTags          int    `mapstructure:"max_tags"`
	FreeformLocation bool   `mapstructure:"freeform_location"`
}

type GenerationConfig struct {
	CooldownSeconds    int `mapstructure:"cooldown_seconds"`
	PollIntervalMillis int `mapstructure:"poll_interval_millis"`
	PollTimeoutSeconds int `mapstructure:"poll_timeout_seconds"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/jobs.db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.endpoint", "localhost:9000")
	v.SetDefault("archive.use_ssl", false)
	v.SetDefault("archive.bucket", "backgrounds")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("comfy.base_url", "http://localhost:8188")
	v.SetDefault("comfy.sampler", "euler")
	v.SetDefault("comfy.steps", 28)
	v.SetDefault("comfy.cfg", 7.0)
	v.SetDefault("comfy.denoise", 1.0)
	v.SetDefault("comfy.width", 1280)
	v.SetDefault("comfy.height", 720)
	v.SetDefault("pipeline.mode", "two_pass")
	v.SetDefault("pipeline.history_turns", 10)
	v.SetDefault("pipeline.max_tags", 15)
	v.SetDefault("pipeline.freeform_location", false)
	v.SetDefault("generation.cooldown_seconds", 5)
	v.SetDefault("generation.poll_interval_millis", 1000)
	v.SetDefault("generation.poll_timeout_seconds", 300)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("llm.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.base_url", "OPENAI_BASE_URL")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("comfy.base_url", "COMFY_BASE_URL")
	v.BindEnv("comfy.model", "COMFY_MODEL")
	v.BindEnv("archive.access_key", "ARCHIVE_ACCESS_KEY")
	v.BindEnv("archive.secret_key", "ARCHIVE_SECRET_KEY")
	v.BindEnv("archive.endpoint", "ARCHIVE_ENDPOINT")
	v.BindEnv("database.password", "DATABASE_PASSWORD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
