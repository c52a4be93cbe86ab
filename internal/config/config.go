package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"voiceclone/internal/model"
)

const (
	defaultFishAudioBaseURL = "https://api.fish.audio"
	defaultUpstreamTimeout  = 60 * time.Second
	defaultModelCacheTTL    = 30 * time.Second
)

// Config holds application level configuration loaded from an optional YAML
// file and environment variables. Environment variables win over the file.
type Config struct {
	ServerPort       string        `yaml:"server_port"`
	DBDriver         string        `yaml:"db_driver"`
	DatabaseDSN      string        `yaml:"database_dsn"`
	RedisAddr        string        `yaml:"redis_addr"`
	RedisDB          int           `yaml:"redis_db"`
	RedisPass        string        `yaml:"redis_password"`
	JWTSecret        string        `yaml:"jwt_secret"`
	JWTAlgorithm     string        `yaml:"jwt_algorithm"`
	FishAudioAPIKey  string        `yaml:"fish_audio_api_key"`
	FishAudioBaseURL string        `yaml:"fish_audio_base_url"`
	UpstreamTimeout  time.Duration `yaml:"upstream_timeout"`
	SignupCredits    int           `yaml:"signup_credits"`
	ModelCacheTTL    time.Duration `yaml:"model_cache_ttl"`
	SwaggerHost      string        `yaml:"swagger_host"`
	LogLevel         string        `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	return &Config{
		ServerPort:       "8080",
		DBDriver:         "mysql",
		DatabaseDSN:      "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local",
		RedisAddr:        "localhost:6379",
		JWTSecret:        "change-me",
		JWTAlgorithm:     "HS256",
		FishAudioBaseURL: defaultFishAudioBaseURL,
		UpstreamTimeout:  defaultUpstreamTimeout,
		SignupCredits:    model.DefaultSignupCredits,
		ModelCacheTTL:    defaultModelCacheTTL,
		LogLevel:         "info",
	}
}

// Load builds Config from CONFIG_FILE (if set) and the environment.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.SignupCredits < 0 {
		return fmt.Errorf("SIGNUP_CREDITS must be non-negative, got %d", c.SignupCredits)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(c); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DatabaseDSN = getEnv("MYSQL_DSN", c.DatabaseDSN)
	c.DatabaseDSN = getEnv("DATABASE_DSN", c.DatabaseDSN)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisPass = getEnv("REDIS_PASSWORD", c.RedisPass)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTAlgorithm = getEnv("JWT_ALGORITHM", c.JWTAlgorithm)
	c.FishAudioAPIKey = getEnv("API_KEY", c.FishAudioAPIKey)
	c.FishAudioAPIKey = getEnv("FISH_AUDIO_API_KEY", c.FishAudioAPIKey)
	c.FishAudioBaseURL = getEnv("FISH_AUDIO_BASE_URL", c.FishAudioBaseURL)
	c.UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", c.UpstreamTimeout)
	c.SignupCredits = getEnvInt("SIGNUP_CREDITS", c.SignupCredits)
	c.ModelCacheTTL = getEnvDuration("MODEL_CACHE_TTL", c.ModelCacheTTL)
	c.SwaggerHost = getEnv("SWAGGER_HOST", c.SwaggerHost)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
