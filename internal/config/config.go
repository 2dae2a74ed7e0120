package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config at path, applies environment variable
// overrides and fills in defaults. A missing file is not an error:
// the config then comes entirely from env vars and defaults.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	if path == "" {
		path = DefaultConfigPath
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	cfg.Env = normalizeEnv(cfg.Env)
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if u := strings.TrimSpace(cfg.RedisURL); u != "" {
		cfg.Redis.URL = u
	}
	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	cfg.Paths = normalizeRuntimePaths(cfg.Paths)
	cfg.Site = normalizeSite(cfg.Site)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)

	return cfg, nil
}

// IsProduction reports whether the app runs in production mode.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" && cfg.DSN == "" {
		cfg.DSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("SITE_NAME"); v != "" {
		cfg.Site.Name = v
	}
	if v := os.Getenv("SITE_BASE_URL"); v != "" {
		cfg.Site.BaseURL = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = strings.Split(v, ",")
	}

	if v := os.Getenv("MAIL_HOST"); v != "" {
		cfg.Mail.Enable = true
		cfg.Mail.Host = v
	}
	if v := os.Getenv("MAIL_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Mail.Port = p
		}
	}
	if v := os.Getenv("MAIL_USER"); v != "" {
		cfg.Mail.User = v
	}
	if v := os.Getenv("MAIL_PASS"); v != "" {
		cfg.Mail.Pass = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		cfg.Mail.From = v
	}
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		cfg.Mail.Enable = true
		cfg.Mail.ResendKey = v
	}

	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.S3.Enable = true
		cfg.S3.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY_ID"); v != "" {
		cfg.S3.AccessKeyID = v
	}
	if v := os.Getenv("S3_SECRET_ACCESS_KEY"); v != "" {
		cfg.S3.SecretAccessKey = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.S3.Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		cfg.S3.Region = v
	}
}
