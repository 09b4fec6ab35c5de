package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Login code policies.
const (
	CodePolicyReusable  = "reusable"
	CodePolicySingleUse = "single_use"
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
	LoginCodes LoginCodeConfig
	Feedback   FeedbackConfig
	RateLimit  RateLimitConfig
	Stats      StatsConfig
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
	QueryTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig only tunes token lifetime; the signing secret is generated per process.
type JWTConfig struct {
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

// LoginCodeConfig controls generation and validation of login codes.
type LoginCodeConfig struct {
	Length      int
	MaxAttempts int
	Policy      string
}

// SingleUse reports whether a successful login consumes the code.
func (c LoginCodeConfig) SingleUse() bool {
	return c.Policy == CodePolicySingleUse
}

// FeedbackConfig bounds free-text input.
type FeedbackConfig struct {
	MaxCommentLength int
}

// RateLimitConfig throttles failed login attempts per client.
type RateLimitConfig struct {
	LoginAttempts int
	LoginWindow   time.Duration
}

// StatsConfig tunes the admin statistics stream.
type StatsConfig struct {
	StreamInterval time.Duration
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
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
		QueryTimeout: parseDuration(v.GetString("DB_QUERY_TIMEOUT"), 5*time.Second),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 8*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	length := v.GetInt("LOGIN_CODE_LENGTH")
	if length < 8 {
		length = 8
	}
	attempts := v.GetInt("LOGIN_CODE_MAX_ATTEMPTS")
	if attempts <= 0 {
		attempts = 5
	}
	policy := strings.ToLower(strings.TrimSpace(v.GetString("LOGIN_CODE_POLICY")))
	if policy != CodePolicySingleUse {
		policy = CodePolicyReusable
	}
	cfg.LoginCodes = LoginCodeConfig{Length: length, MaxAttempts: attempts, Policy: policy}

	maxComment := v.GetInt("FEEDBACK_MAX_COMMENT_LENGTH")
	if maxComment <= 0 {
		maxComment = 2000
	}
	cfg.Feedback = FeedbackConfig{MaxCommentLength: maxComment}

	cfg.RateLimit = RateLimitConfig{
		LoginAttempts: v.GetInt("LOGIN_RATE_LIMIT_ATTEMPTS"),
		LoginWindow:   parseDuration(v.GetString("LOGIN_RATE_LIMIT_WINDOW"), 15*time.Minute),
	}

	cfg.Stats = StatsConfig{
		StreamInterval: parseDuration(v.GetString("STATS_STREAM_INTERVAL"), 10*time.Second),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "course_feedback")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_QUERY_TIMEOUT", "5s")

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_EXPIRATION", "8h")
	v.SetDefault("JWT_ISSUER", "course-feedback-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LOGIN_CODE_LENGTH", 8)
	v.SetDefault("LOGIN_CODE_MAX_ATTEMPTS", 5)
	v.SetDefault("LOGIN_CODE_POLICY", CodePolicyReusable)

	v.SetDefault("FEEDBACK_MAX_COMMENT_LENGTH", 2000)

	v.SetDefault("LOGIN_RATE_LIMIT_ATTEMPTS", 10)
	v.SetDefault("LOGIN_RATE_LIMIT_WINDOW", "15m")

	v.SetDefault("STATS_STREAM_INTERVAL", "10s")
}

// viper reports a missing explicit config file as an fs error rather than
// ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such file or directory")
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
