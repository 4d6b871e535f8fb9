package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Static   StaticConfig   `yaml:"static"`
	Logging  LoggingConfig  `yaml:"logging"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int32         `yaml:"max_connections"`
	MinConnections int32         `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type UploadsConfig struct {
	Dir          string `yaml:"dir"`
	PublicPrefix string `yaml:"public_prefix"`
}

type StaticConfig struct {
	Dir string `yaml:"dir"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type CleanupConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	MinAge   time.Duration `yaml:"min_age"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.yml"
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer file.Close()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return &cfg, nil
}

// applyEnv — переменные окружения важнее файла
func (c *Config) applyEnv() {
	c.Server.Port = envOrKeep("PORT", c.Server.Port)
	c.Database.URL = envOrKeep("DATABASE_URL", c.Database.URL)
	c.Auth.JWTSecret = envOrKeep("JWT_SECRET", c.Auth.JWTSecret)
	c.Uploads.Dir = envOrKeep("UPLOADS_DIR", c.Uploads.Dir)
	c.Static.Dir = envOrKeep("STATIC_DIR", c.Static.Dir)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "3000"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "uploads"
	}
	if c.Uploads.PublicPrefix == "" {
		c.Uploads.PublicPrefix = "/uploads"
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = 10
	}
	if c.Database.MinConnections == 0 {
		c.Database.MinConnections = 2
	}
	if c.Database.IdleTimeout == 0 {
		c.Database.IdleTimeout = 5 * time.Minute
	}
	if c.Cleanup.Interval == 0 {
		c.Cleanup.Interval = time.Hour
	}
	if c.Cleanup.MinAge == 0 {
		c.Cleanup.MinAge = 24 * time.Hour
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func envOrKeep(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
