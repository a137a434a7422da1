package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	RabbitMQ struct {
		URL   string `yaml:"url"`
		Queue string `yaml:"queue"`
	} `yaml:"rabbitmq"`
	Words struct {
		BaseURL  string `yaml:"base_url"`
		Pattern  string `yaml:"pattern"`
		Max      int    `yaml:"max"`
		Timeout  string `yaml:"timeout"`
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"words"`
	Gemini struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
		APIKey  string `yaml:"api_key"`
		Timeout string `yaml:"timeout"`
	} `yaml:"gemini"`
	Round struct {
		Seconds     int `yaml:"seconds"`
		WordSeconds int `yaml:"word_seconds"`
	} `yaml:"round"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		TokenTTL  string `yaml:"token_ttl"`
	} `yaml:"auth"`
}

// Load reads YAML config from path. Secrets can be supplied through
// GEMINI_API_KEY and JWT_SECRET instead of the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
