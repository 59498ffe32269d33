// Package config builds process configuration from the environment so main
// stays lean. Every knob has a development default; production deployments
// override via env.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures all process-level configuration.
type Config struct {
	Addr string
	Env  string

	// AdminTokenHash is the bcrypt hash of the admin API token. Revoke and
	// reissue are admin-only operations.
	AdminTokenHash string
	JWTSigningKey  string

	PostgresURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
	Anchor      AnchorConfig
	PDF         PDFConfig
}

// RedisConfig controls the optional verification cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	VerifyTTL    time.Duration
}

// KafkaConfig controls the audit event publisher. Empty brokers means audit
// events stay in-process.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// AnchorConfig controls the chain anchor client. Empty RPCURL selects the
// in-memory ledger, which is the development and test default.
type AnchorConfig struct {
	RPCURL          string
	ContractAddress string
	PrivateKeyHex   string
	ConfirmTimeout  time.Duration
	RevokeOnChain   bool
}

// PDFConfig locates the certificate template and artifact directory.
type PDFConfig struct {
	TemplatePath string
	LogoPath     string
	OutputDir    string
}

// IsDev reports whether the process runs in a development environment.
// Error envelopes include details only in dev.
func (c Config) IsDev() bool { return c.Env != "production" }

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:           getenv("CERTO_ADDR", ":8080"),
		Env:            getenv("CERTO_ENV", "development"),
		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
		JWTSigningKey:  getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresURL:    os.Getenv("POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getenvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getenvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getenvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getenvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getenvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			VerifyTTL:    getenvDuration("VERIFY_CACHE_TTL", 2*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   getenv("KAFKA_AUDIT_TOPIC", "certo.audit.v1"),
		},
		Anchor: AnchorConfig{
			RPCURL:          os.Getenv("ANCHOR_RPC_URL"),
			ContractAddress: os.Getenv("ANCHOR_CONTRACT_ADDRESS"),
			PrivateKeyHex:   os.Getenv("ANCHOR_PRIVATE_KEY"),
			ConfirmTimeout:  getenvDuration("ANCHOR_CONFIRM_TIMEOUT", 90*time.Second),
			RevokeOnChain:   os.Getenv("ANCHOR_REVOKE") == "true",
		},
		PDF: PDFConfig{
			TemplatePath: getenv("PDF_TEMPLATE_PATH", "templates/certificate.tmpl"),
			LogoPath:     os.Getenv("PDF_LOGO_PATH"),
			OutputDir:    getenv("PDF_OUTPUT_DIR", "pdfs"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
