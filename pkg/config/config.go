package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/models"
	"github.com/nosenfield/nerdy-tutor-quality-sub000/internal/rules"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Rules      RulesConfig
	Scoring    ScoringConfig
	Evaluation EvaluationConfig
	Reports    ReportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RulesConfig surfaces the rule-engine thresholds as environment
// configuration. EngineConfig materialises it into the immutable value
// every evaluation receives.
type RulesConfig struct {
	LatenessThresholdMinutes        int
	EarlyEndThresholdMinutes        int
	PoorFirstSessionRatingThreshold int
	HighRescheduleRateThreshold     float64
	ChronicLatenessRateThreshold    float64
	AggregateWindowDays             int
	MinSessionsForAggregateRules    int
	TrendRecentWindowDays           int
	TrendPriorWindowDays            int
	TrendStabilityThreshold         float64
}

// EngineConfig converts the env-derived thresholds into a rules.Config.
func (r RulesConfig) EngineConfig() rules.Config {
	return rules.Config{
		LatenessThresholdMinutes:        r.LatenessThresholdMinutes,
		EarlyEndThresholdMinutes:        r.EarlyEndThresholdMinutes,
		PoorFirstSessionRatingThreshold: r.PoorFirstSessionRatingThreshold,
		HighRescheduleRateThreshold:     r.HighRescheduleRateThreshold,
		ChronicLatenessRateThreshold:    r.ChronicLatenessRateThreshold,
		AggregateWindowDays:             r.AggregateWindowDays,
		MinSessionsForAggregateRules:    r.MinSessionsForAggregateRules,
		TrendRecentWindowDays:           r.TrendRecentWindowDays,
		TrendPriorWindowDays:            r.TrendPriorWindowDays,
		TrendStabilityThreshold:         r.TrendStabilityThreshold,
	}
}

// ScoringConfig tunes score weighting and caching.
type ScoringConfig struct {
	AttendanceWeight  float64
	RatingsWeight     float64
	CompletionWeight  float64
	ReliabilityWeight float64
	CacheTTL          time.Duration
}

// Weights materialises the configured score weights.
func (s ScoringConfig) Weights() models.ScoreWeights {
	return models.ScoreWeights{
		Attendance:  s.AttendanceWeight,
		Ratings:     s.RatingsWeight,
		Completion:  s.CompletionWeight,
		Reliability: s.ReliabilityWeight,
	}
}

// EvaluationConfig tunes the asynchronous evaluation queue.
type EvaluationConfig struct {
	Workers       int
	QueueSize     int
	MaxRetries    int
	RetryDelay    time.Duration
	StatsCacheTTL time.Duration
}

// ReportsConfig controls report export storage and signed downloads.
type ReportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Rules = RulesConfig{
		LatenessThresholdMinutes:        v.GetInt("RULES_LATENESS_THRESHOLD_MINUTES"),
		EarlyEndThresholdMinutes:        v.GetInt("RULES_EARLY_END_THRESHOLD_MINUTES"),
		PoorFirstSessionRatingThreshold: v.GetInt("RULES_POOR_FIRST_SESSION_RATING"),
		HighRescheduleRateThreshold:     v.GetFloat64("RULES_HIGH_RESCHEDULE_RATE"),
		ChronicLatenessRateThreshold:    v.GetFloat64("RULES_CHRONIC_LATENESS_RATE"),
		AggregateWindowDays:             v.GetInt("RULES_AGGREGATE_WINDOW_DAYS"),
		MinSessionsForAggregateRules:    v.GetInt("RULES_MIN_SESSIONS_FOR_AGGREGATE"),
		TrendRecentWindowDays:           v.GetInt("RULES_TREND_RECENT_WINDOW_DAYS"),
		TrendPriorWindowDays:            v.GetInt("RULES_TREND_PRIOR_WINDOW_DAYS"),
		TrendStabilityThreshold:         v.GetFloat64("RULES_TREND_STABILITY_THRESHOLD"),
	}

	cfg.Scoring = ScoringConfig{
		AttendanceWeight:  v.GetFloat64("SCORING_ATTENDANCE_WEIGHT"),
		RatingsWeight:     v.GetFloat64("SCORING_RATINGS_WEIGHT"),
		CompletionWeight:  v.GetFloat64("SCORING_COMPLETION_WEIGHT"),
		ReliabilityWeight: v.GetFloat64("SCORING_RELIABILITY_WEIGHT"),
		CacheTTL:          parseDuration(v.GetString("SCORING_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Evaluation = EvaluationConfig{
		Workers:       v.GetInt("EVALUATION_WORKERS"),
		QueueSize:     v.GetInt("EVALUATION_QUEUE_SIZE"),
		MaxRetries:    v.GetInt("EVALUATION_MAX_RETRIES"),
		RetryDelay:    parseDuration(v.GetString("EVALUATION_RETRY_DELAY"), 2*time.Second),
		StatsCacheTTL: parseDuration(v.GetString("STATS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Reports = ReportsConfig{
		StorageDir:      v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tutor_quality")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "tutor-quality")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	defaults := rules.DefaultConfig()
	v.SetDefault("RULES_LATENESS_THRESHOLD_MINUTES", defaults.LatenessThresholdMinutes)
	v.SetDefault("RULES_EARLY_END_THRESHOLD_MINUTES", defaults.EarlyEndThresholdMinutes)
	v.SetDefault("RULES_POOR_FIRST_SESSION_RATING", defaults.PoorFirstSessionRatingThreshold)
	v.SetDefault("RULES_HIGH_RESCHEDULE_RATE", defaults.HighRescheduleRateThreshold)
	v.SetDefault("RULES_CHRONIC_LATENESS_RATE", defaults.ChronicLatenessRateThreshold)
	v.SetDefault("RULES_AGGREGATE_WINDOW_DAYS", defaults.AggregateWindowDays)
	v.SetDefault("RULES_MIN_SESSIONS_FOR_AGGREGATE", defaults.MinSessionsForAggregateRules)
	v.SetDefault("RULES_TREND_RECENT_WINDOW_DAYS", defaults.TrendRecentWindowDays)
	v.SetDefault("RULES_TREND_PRIOR_WINDOW_DAYS", defaults.TrendPriorWindowDays)
	v.SetDefault("RULES_TREND_STABILITY_THRESHOLD", defaults.TrendStabilityThreshold)

	weights := models.DefaultScoreWeights()
	v.SetDefault("SCORING_ATTENDANCE_WEIGHT", weights.Attendance)
	v.SetDefault("SCORING_RATINGS_WEIGHT", weights.Ratings)
	v.SetDefault("SCORING_COMPLETION_WEIGHT", weights.Completion)
	v.SetDefault("SCORING_RELIABILITY_WEIGHT", weights.Reliability)
	v.SetDefault("SCORING_CACHE_TTL", "10m")

	v.SetDefault("EVALUATION_WORKERS", 2)
	v.SetDefault("EVALUATION_QUEUE_SIZE", 64)
	v.SetDefault("EVALUATION_MAX_RETRIES", 3)
	v.SetDefault("EVALUATION_RETRY_DELAY", "2s")
	v.SetDefault("STATS_CACHE_TTL", "5m")

	v.SetDefault("REPORTS_STORAGE_DIR", "./reports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
