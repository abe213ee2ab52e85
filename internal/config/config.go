package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DefaultConfigPath = "configs/config.yaml"
	ServiceName       = "iuris-audiencias-backend"
)

type Config struct {
	HTTP struct {
		Port              string        `yaml:"port" env:"PORT" env-default:"8000"`
		ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
		ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s"`
	} `yaml:"http"`

	OpenAI struct {
		APIKey   string `yaml:"api_key" env:"OPENAI_API_KEY"`
		BaseURL  string `yaml:"base_url" env:"OPENAI_BASE_URL"`
		Model    string `yaml:"model" env:"OPENAI_TRANSCRIBE_MODEL" env-default:"gpt-4o-transcribe"`
		Language string `yaml:"language" env:"OPENAI_TRANSCRIBE_LANGUAGE"`
		Prompt   string `yaml:"prompt" env:"OPENAI_TRANSCRIBE_PROMPT"`
	} `yaml:"openai"`

	Transcribe struct {
		TempDir         string   `yaml:"temp_dir" env:"TRANSCRIBE_TEMP_DIR"`
		DefaultSuffix   string   `yaml:"default_suffix" env:"TRANSCRIBE_DEFAULT_SUFFIX" env-default:".webm"`
		RouteAliases    []string `yaml:"route_aliases" env:"TRANSCRIBE_ROUTE_ALIASES" env-separator:"," env-default:"/transcrever-audio,/transcrever"`
		MultipartMemory int64    `yaml:"multipart_memory" env:"TRANSCRIBE_MULTIPART_MEMORY" env-default:"33554432"`
	} `yaml:"transcribe"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	} `yaml:"cors"`

	RabbitMQ struct {
		URL        string `yaml:"url" env:"RABBITMQ_URL"`
		Exchange   string `yaml:"exchange" env:"RABBITMQ_EXCHANGE" env-default:"iuris"`
		RoutingKey string `yaml:"routing_key" env:"RABBITMQ_ROUTING_KEY" env-default:"transcriptions"`
	} `yaml:"rabbitmq"`

	Log struct {
		Debug bool `yaml:"debug" env:"LOG_DEBUG" env-default:"false"`
	} `yaml:"log"`
}

// LoadConfig reads the YAML file at path when it exists, otherwise the
// environment only. Environment variables always win over the file.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Path returns CONFIG_PATH or the default location
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultConfigPath
}

func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.OpenAI.Model == "" {
		return errors.New("transcription model must not be empty")
	}
	if c.Transcribe.TempDir != "" {
		info, err := os.Stat(c.Transcribe.TempDir)
		if err != nil {
			return fmt.Errorf("temp dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("temp dir %s is not a directory", c.Transcribe.TempDir)
		}
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.HTTP.Port
}
