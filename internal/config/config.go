package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/spec-kit/supportiq/pkg/util"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Search       SearchConfig
	Promotion    PromotionConfig
	Urgency      UrgencyConfig
	Providers    ProviderConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	EmbedCacheTTLS int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SearchConfig controls hybrid ranking. SemanticWeight and KeywordWeight
// must sum to 1.0; Validate rejects anything else.
type SearchConfig struct {
	SemanticWeight float64
	KeywordWeight  float64
	TopK           int
}

// PromotionConfig holds auto-promotion thresholds.
type PromotionConfig struct {
	L3ToL2Threshold  int
	L2ToL1Threshold  int
	MinFeedbackScore float64
	SweepIntervalSec int
}

// UrgencyConfig holds keyword lists and the per-category baseline table used
// by urgency scoring.
type UrgencyConfig struct {
	CriticalKeywords    []string
	HighUrgencyKeywords []string
	CategoryBaselines   map[string]float64
}

// ProviderConfig locates the external embedding and sentiment services.
type ProviderConfig struct {
	EmbeddingURL       string
	SentimentURL       string
	EmbeddingDimension int
	TimeoutSeconds     int
}

// NotificationConfig holds the outbound webhook endpoint.
type NotificationConfig struct {
	WebhookURL string
}

const weightEpsilon = 1e-9

// defaultCategoryBaselines mirrors the per-category urgency baselines on a
// 0-10 scale. Unlisted categories fall back to the mid value at evaluation
// time, not here.
var defaultCategoryBaselines = map[string]float64{
	"payment":        8,
	"security":       9,
	"outage":         10,
	"authentication": 6,
	"email":          4,
	"network":        5,
	"hardware":       3,
	"software":       4,
	"database":       7,
	"performance":    5,
	"general":        3,
}

// Load reads configuration from environment variables, applying defaults
// where possible, and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	baselines, err := parseCategoryBaselines(os.Getenv("CATEGORY_BASELINES"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "supportiq"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             redisDB,
			EmbedCacheTTLS: getEnvAsInt("REDIS_EMBED_CACHE_TTL_SECONDS", 3600),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Search: SearchConfig{
			SemanticWeight: getEnvAsFloat("SEMANTIC_WEIGHT", 0.7),
			KeywordWeight:  getEnvAsFloat("KEYWORD_WEIGHT", 0.3),
			TopK:           getEnvAsInt("TOP_K_RESULTS", 5),
		},
		Promotion: PromotionConfig{
			L3ToL2Threshold:  getEnvAsInt("L3_TO_L2_THRESHOLD", 10),
			L2ToL1Threshold:  getEnvAsInt("L2_TO_L1_THRESHOLD", 25),
			MinFeedbackScore: getEnvAsFloat("MIN_FEEDBACK_SCORE", 4.0),
			SweepIntervalSec: getEnvAsInt("PROMOTION_SWEEP_INTERVAL_SECONDS", 300),
		},
		Urgency: UrgencyConfig{
			CriticalKeywords:    splitList(getEnv("CRITICAL_KEYWORDS", "payment,security,breach,outage,down,emergency,critical")),
			HighUrgencyKeywords: splitList(getEnv("HIGH_URGENCY_KEYWORDS", "error,failed,broken,urgent,asap")),
			CategoryBaselines:   baselines,
		},
		Providers: ProviderConfig{
			EmbeddingURL:       getEnv("EMBEDDING_PROVIDER_URL", "http://127.0.0.1:9100"),
			SentimentURL:       getEnv("SENTIMENT_PROVIDER_URL", "http://127.0.0.1:9101"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 384),
			TimeoutSeconds:     getEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 10),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces startup invariants. Violations are fatal configuration
// errors; values are never silently renormalized.
func (c *Config) Validate() error {
	if sum := c.Search.SemanticWeight + c.Search.KeywordWeight; math.Abs(sum-1.0) > weightEpsilon {
		return apperrors.NewConfigurationError("semantic_weight and keyword_weight must sum to 1.0", map[string]any{
			"semantic_weight": c.Search.SemanticWeight,
			"keyword_weight":  c.Search.KeywordWeight,
			"sum":             sum,
		})
	}
	if c.Search.SemanticWeight < 0 || c.Search.KeywordWeight < 0 {
		return apperrors.NewConfigurationError("search weights must be non-negative", nil)
	}
	if c.Search.TopK < 0 {
		return apperrors.NewConfigurationError("top_k_results must be non-negative", map[string]any{"top_k": c.Search.TopK})
	}
	if c.Promotion.L3ToL2Threshold < 0 || c.Promotion.L2ToL1Threshold < 0 {
		return apperrors.NewConfigurationError("promotion thresholds must be non-negative", map[string]any{
			"l3_to_l2": c.Promotion.L3ToL2Threshold,
			"l2_to_l1": c.Promotion.L2ToL1Threshold,
		})
	}
	if c.Promotion.SweepIntervalSec < 0 {
		return apperrors.NewConfigurationError("promotion sweep interval must not be negative", map[string]any{
			"sweep_interval_seconds": c.Promotion.SweepIntervalSec,
		})
	}
	if c.Promotion.MinFeedbackScore < 1 || c.Promotion.MinFeedbackScore > 5 {
		return apperrors.NewConfigurationError("min_feedback_score must be within the 1-5 feedback scale", map[string]any{
			"min_feedback_score": c.Promotion.MinFeedbackScore,
		})
	}
	if c.Providers.EmbeddingDimension <= 0 {
		return apperrors.NewConfigurationError("embedding dimension must be positive", map[string]any{
			"embedding_dimension": c.Providers.EmbeddingDimension,
		})
	}
	for category, baseline := range c.Urgency.CategoryBaselines {
		if baseline < 0 || baseline > 10 {
			return apperrors.NewConfigurationError("category baseline out of 0-10 range", map[string]any{
				"category": category,
				"baseline": baseline,
			})
		}
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the provider call timeout.
func (p ProviderConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// SweepInterval returns the promotion sweep period. Zero means sweeps are
// disabled and the worker never starts.
func (p PromotionConfig) SweepInterval() time.Duration {
	if p.SweepIntervalSec <= 0 {
		return 0
	}
	return time.Duration(p.SweepIntervalSec) * time.Second
}

// EmbedCacheTTL returns the query embedding cache lifetime.
func (r RedisConfig) EmbedCacheTTL() time.Duration {
	if r.EmbedCacheTTLS <= 0 {
		return time.Hour
	}
	return time.Duration(r.EmbedCacheTTLS) * time.Second
}

// parseCategoryBaselines reads an optional "category:baseline,..." override
// table, falling back to the built-in defaults when unset.
func parseCategoryBaselines(raw string) (map[string]float64, error) {
	baselines := make(map[string]float64, len(defaultCategoryBaselines))
	for category, baseline := range defaultCategoryBaselines {
		baselines[category] = baseline
	}
	if strings.TrimSpace(raw) == "" {
		return baselines, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return nil, apperrors.NewConfigurationError("malformed CATEGORY_BASELINES entry", map[string]any{"entry": pair})
		}
		baseline, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, apperrors.NewConfigurationError("malformed CATEGORY_BASELINES value", map[string]any{"entry": pair})
		}
		baselines[strings.ToLower(strings.TrimSpace(parts[0]))] = baseline
	}
	return baselines, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.ToLower(strings.TrimSpace(part)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
