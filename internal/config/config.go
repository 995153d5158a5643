package config

import (
	"errors"
	"fmt"
	"os"

	"balneario/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
	Google     GoogleConfig     `yaml:"google"`
	Notify     NotifyConfig     `yaml:"notify"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port            int `yaml:"port"`
	ShutdownTimeout int `yaml:"shutdown_timeout"`
}

type AuthConfig struct {
	JWTSecret       string          `yaml:"jwt_secret"`
	TokenTTLMinutes int             `yaml:"token_ttl_minutes"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	Users           []UserConfig    `yaml:"users"`
}

// UserConfig is one owner account. PasswordHash is a bcrypt hash; plaintext
// passwords never appear in config.
type UserConfig struct {
	ID           int64  `yaml:"id"`
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type GoogleConfig struct {
	CredentialsFile      string `yaml:"credentials_file"`
	BookingSpreadSheetID string `yaml:"bookings_spreadsheet_id"`
}

type NotifyConfig struct {
	TelegramToken string `yaml:"telegram_token"`
	ChatID        int64  `yaml:"chat_id"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional, env vars may come from the environment directly
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "CHANGE_ME" {
		return errors.New("auth jwt secret is required")
	}

	return ValidateUsers(c.Auth.Users)
}

func ValidateUsers(users []UserConfig) error {
	ids := make(map[int64]bool)
	names := make(map[string]bool)
	for _, u := range users {
		if u.ID == 0 {
			return fmt.Errorf("user '%s' has invalid ID 0", u.Username)
		}
		if u.Username == "" {
			return fmt.Errorf("user %d has empty username", u.ID)
		}
		if u.PasswordHash == "" {
			return fmt.Errorf("user '%s' has no password hash", u.Username)
		}
		if ids[u.ID] {
			return fmt.Errorf("duplicate user ID found: %d", u.ID)
		}
		if names[u.Username] {
			return fmt.Errorf("duplicate username found: %s", u.Username)
		}
		ids[u.ID] = true
		names[u.Username] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Auth.TokenTTLMinutes == 0 {
		c.Auth.TokenTTLMinutes = models.DefaultTokenTTLMinutes
	}
	if c.Auth.RateLimit.RPS == 0 {
		c.Auth.RateLimit.RPS = 10
	}
	if c.Auth.RateLimit.Burst == 0 {
		c.Auth.RateLimit.Burst = 20
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = models.DefaultOccupancyCacheTTL
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
