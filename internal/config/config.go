package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds process-level settings read once at startup.
// Settings an admin can change at runtime live in the options table instead
// (see common.SettingsService); the values here only seed their defaults.
type Config struct {
	AppEnv string
	Port   string

	Postgres  PostgresConfig
	WordPress WordPressConfig
	Redis     RedisConfig
	CRM       CRMConfig
	AI        AIConfig

	AdminTokenSecret string
	RetentionDays    int
	SubmitRatePerSec float64
	SubmitBurst      int
	CatalogPath      string
	CORSOrigins      []string

	// TrustProxy lets X-Forwarded-For / X-Real-IP name the client. Only set
	// it when every request arrives through a proxy that overwrites them.
	TrustProxy bool
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	DB       string
	Password string
}

// DSN builds the connection string used by both sqlx and GORM
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.DB)
}

type WordPressConfig struct {
	// DSN is a go-sql-driver/mysql DSN; empty disables every import adapter
	DSN         string
	TablePrefix string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Enabled reports whether Redis should back the cache
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type CRMConfig struct {
	APIURL        string
	DefaultFormID string
	Timeout       time.Duration
}

type AIConfig struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("port", "8080")

	v.SetDefault("pg_host", "localhost")
	v.SetDefault("pg_port", "5432")
	v.SetDefault("pg_user", "formbridge")
	v.SetDefault("pg_db", "formbridge")
	v.SetDefault("pg_password", "")

	v.SetDefault("wp_db_dsn", "")
	v.SetDefault("wp_table_prefix", "wp_")

	v.SetDefault("redis_host", "")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")

	v.SetDefault("crm_api_url", "https://api.crm.example.com/api/v1/submissions")
	v.SetDefault("crm_form_id", "")
	v.SetDefault("crm_timeout", "30s")

	v.SetDefault("ai_api_url", "https://api.openai.com/v1")
	v.SetDefault("ai_api_key", "")
	v.SetDefault("ai_model", "gpt-4o-mini")
	v.SetDefault("ai_timeout", "60s")

	v.SetDefault("admin_token_secret", "")
	v.SetDefault("retention_days", 90)
	v.SetDefault("submit_rate_per_sec", 1.0)
	v.SetDefault("submit_burst", 5)
	v.SetDefault("catalog_path", "")
	v.SetDefault("cors_origins", "https://*,http://localhost:8081")
	v.SetDefault("trust_proxy", false)
}

// Load reads configuration from the environment, optionally layered over a
// YAML file named by FORMBRIDGE_CONFIG.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := os.Getenv("FORMBRIDGE_CONFIG"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		AppEnv: v.GetString("app_env"),
		Port:   v.GetString("port"),
		Postgres: PostgresConfig{
			Host:     v.GetString("pg_host"),
			Port:     v.GetString("pg_port"),
			User:     v.GetString("pg_user"),
			DB:       v.GetString("pg_db"),
			Password: v.GetString("pg_password"),
		},
		WordPress: WordPressConfig{
			DSN:         v.GetString("wp_db_dsn"),
			TablePrefix: v.GetString("wp_table_prefix"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis_host"),
			Port:     v.GetString("redis_port"),
			Password: v.GetString("redis_password"),
		},
		CRM: CRMConfig{
			APIURL:        v.GetString("crm_api_url"),
			DefaultFormID: v.GetString("crm_form_id"),
			Timeout:       v.GetDuration("crm_timeout"),
		},
		AI: AIConfig{
			APIURL:  v.GetString("ai_api_url"),
			APIKey:  v.GetString("ai_api_key"),
			Model:   v.GetString("ai_model"),
			Timeout: v.GetDuration("ai_timeout"),
		},
		AdminTokenSecret: v.GetString("admin_token_secret"),
		RetentionDays:    v.GetInt("retention_days"),
		SubmitRatePerSec: v.GetFloat64("submit_rate_per_sec"),
		SubmitBurst:      v.GetInt("submit_burst"),
		CatalogPath:      v.GetString("catalog_path"),
		CORSOrigins:      splitList(v.GetString("cors_origins")),
		TrustProxy:       v.GetBool("trust_proxy"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if c.AdminTokenSecret == "" && c.AppEnv == "production" {
		return fmt.Errorf("ADMIN_TOKEN_SECRET is required in production")
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("RETENTION_DAYS must be positive, got %d", c.RetentionDays)
	}
	if c.SubmitRatePerSec <= 0 || c.SubmitBurst <= 0 {
		return fmt.Errorf("submit rate limit must be positive")
	}
	if c.CRM.Timeout <= 0 {
		c.CRM.Timeout = 30 * time.Second
	}
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = 60 * time.Second
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
