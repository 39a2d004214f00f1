package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process level configuration. Collaborator base URLs point
// at the external OCR engine, scoring service, and explanation service.
type Config struct {
	Addr string

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string
	AuditTopic   string

	OCREngineURL   string
	ScoringURL     string
	ExplanationURL string

	JWTSigningKey string
	TokenTTL      time.Duration
	CacheTTL      time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:           getenv("OLEA_ADDR", ":8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		AuditTopic:     getenv("AUDIT_TOPIC", "olea.audit"),
		OCREngineURL:   getenv("OCR_ENGINE_URL", "http://localhost:9090"),
		ScoringURL:     getenv("SCORING_URL", "http://localhost:9091"),
		ExplanationURL: getenv("EXPLANATION_URL", "http://localhost:9092"),
		JWTSigningKey:  os.Getenv("JWT_SIGNING_KEY"),
		TokenTTL:       getDuration("TOKEN_TTL", time.Hour),
		CacheTTL:       getDuration("PREDICTION_CACHE_TTL", 24*time.Hour),
	}

	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
