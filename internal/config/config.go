package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver     string
	SQLitePath string
	Migrate    bool
}

type PostgresConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
}

type RedisConfig struct {
	Enabled     bool
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	Prefix      string
}

type S3Config struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
	URLTTL          time.Duration
}

type StorageConfig struct {
	ExportDir         string
	FilesPublicPrefix string
	ExternalURL       string
	Retention         time.Duration
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	UserInfoURL  string
	// AfterLoginURL receives ?token=... once the callback succeeds. Empty
	// means the callback answers with the JSON envelope instead.
	AfterLoginURL string
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	Port           string
	AllowedOrigins []string
	Database       DatabaseConfig
	Postgres       PostgresConfig
	Redis          RedisConfig
	S3             S3Config
	Storage        StorageConfig
	OAuth          OAuthConfig
	Log            LogConfig

	CacheTTL          time.Duration
	SessionTTL        time.Duration
	ExportConcurrency int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int value %q: %v", s, err)
	}
	return i
}

func mustBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool value %q: %v", s, err)
	}
	return b
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("invalid duration value %q: %v", s, err)
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() AppConfig {
	return AppConfig{
		Port:           getenv("APP_PORT", "8010"),
		AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		Database: DatabaseConfig{
			Driver:     getenv("DB_DRIVER", DriverPostgres),
			SQLitePath: getenv("SQLITE_PATH", "naijayield.db"),
			Migrate:    mustBool(getenv("DB_MIGRATE", "false")),
		},
		Postgres: PostgresConfig{
			Host:         getenv("PG_HOST", "127.0.0.1"),
			Port:         mustAtoi(getenv("PG_PORT", "5432")),
			User:         getenv("PG_USER", "postgres"),
			Password:     getenv("PG_PASSWORD", ""),
			DBName:       getenv("PG_DB", "naijayield"),
			SSLMode:      getenv("PG_SSLMODE", "disable"),
			MaxOpenConns: mustAtoi(getenv("PG_MAX_OPEN_CONNS", "16")),
		},
		Redis: RedisConfig{
			Enabled:     mustBool(getenv("REDIS_ENABLED", "true")),
			Addr:        getenv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    getenv("REDIS_PASSWORD", ""),
			DB:          mustAtoi(getenv("REDIS_DB", "0")),
			MaxRetries:  mustAtoi(getenv("REDIS_MAX_RETRIES", "5")),
			DialTimeout: mustDuration(getenv("REDIS_DIAL_TIMEOUT", "10s")),
			Timeout:     mustDuration(getenv("REDIS_TIMEOUT", "5s")),
			Prefix:      getenv("REDIS_PREFIX", "naijayield:"),
		},
		S3: S3Config{
			Enabled:         mustBool(getenv("S3_ENABLED", "false")),
			Endpoint:        getenv("S3_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getenv("S3_ACCESS_KEY", ""),
			SecretAccessKey: getenv("S3_SECRET_KEY", ""),
			Bucket:          getenv("S3_BUCKET", "exports"),
			Region:          getenv("S3_REGION", "us-east-1"),
			UseSSL:          mustBool(getenv("S3_USE_SSL", "false")),
			Prefix:          getenv("S3_PREFIX", "portfolio/"),
			URLTTL:          mustDuration(getenv("S3_URL_TTL", "20m")),
		},
		Storage: StorageConfig{
			ExportDir:         getenv("EXPORT_DIR", "./exports"),
			FilesPublicPrefix: getenv("FILES_PUBLIC_PREFIX", "/files"),
			ExternalURL:       getenv("EXTERNAL_URL", ""),
			Retention:         mustDuration(getenv("EXPORT_RETENTION", "24h")),
		},
		OAuth: OAuthConfig{
			ClientID:      getenv("OAUTH_CLIENT_ID", ""),
			ClientSecret:  getenv("OAUTH_CLIENT_SECRET", ""),
			RedirectURL:   getenv("OAUTH_REDIRECT_URL", "http://localhost:8010/auth/callback"),
			UserInfoURL:   getenv("OAUTH_USERINFO_URL", "https://openidconnect.googleapis.com/v1/userinfo"),
			AfterLoginURL: getenv("OAUTH_AFTER_LOGIN_URL", ""),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
		},
		CacheTTL:          mustDuration(getenv("CACHE_TTL", "1h")),
		SessionTTL:        mustDuration(getenv("SESSION_TTL", "168h")),
		ExportConcurrency: mustAtoi(getenv("EXPORT_CONCURRENCY", "8")),
	}
}

// InitLogger replaces the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
