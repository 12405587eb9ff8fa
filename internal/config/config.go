package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// placeholderSecretKey is the well-known template value that must never reach
// production. Loading fails if SECRET_KEY still equals it.
const placeholderSecretKey = "your-secret-key-here"

// Config is the immutable settings record built once at process start.
// It is shared read-only by all request handlers; nothing mutates it after
// Load returns.
type Config struct {
	APIV1Prefix string `validate:"required,startswith=/"`
	ProjectName string `validate:"required"`

	CORSOrigins []string `validate:"required,min=1,dive,url"`

	SupabaseURL string `validate:"required"`
	SupabaseKey string `validate:"required"`

	SecretKey                string `validate:"required,min=32"`
	Algorithm                string `validate:"required,oneof=HS256 HS384 HS512"`
	AccessTokenExpireMinutes int    `validate:"gt=0"`

	LogLevel string `validate:"required,oneof=DEBUG INFO WARNING ERROR CRITICAL"`

	LogToFile bool
	LogFile   string `validate:"required"`
	LogJSON   bool

	ServerPort int `validate:"gt=0,lte=65535"`

	// Bootstrap superuser credentials. Both empty means no account is
	// provisioned and every login attempt is rejected.
	FirstSuperuser         string
	FirstSuperuserPassword string
}

// Overrides carries command-line flag values that take precedence over the
// environment and the .env file. Zero values mean "not set".
type Overrides struct {
	EnvFile string
	Port    int
	LogFile string
}

// Load reads configuration from the environment and an optional .env file,
// normalizes it, and validates every invariant. It emits exactly one log
// line: an informational one naming the project on success, or an error one
// on failure. A failed Load is fatal to startup; callers must not serve.
func Load(logger *zap.Logger, overrides *Overrides) (*Config, error) {
	v := viper.New()

	v.SetDefault("API_V1_STR", "/api/v1")
	v.SetDefault("PROJECT_NAME", "Crypto Trader")
	v.SetDefault("BACKEND_CORS_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("SUPABASE_URL", "")
	v.SetDefault("SUPABASE_KEY", "")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("LOG_TO_FILE", false)
	v.SetDefault("LOG_FILE", "logs/app.log")
	v.SetDefault("LOG_JSON", true)
	v.SetDefault("SERVER_PORT", 8000)
	v.SetDefault("FIRST_SUPERUSER", "")
	v.SetDefault("FIRST_SUPERUSER_PASSWORD", "")

	if overrides != nil && overrides.EnvFile != "" {
		v.SetConfigFile(overrides.EnvFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			logger.Error("Failed to load settings", zap.Error(err))
			return nil, fmt.Errorf("read env file: %w", err)
		}
	} else {
		v.SetConfigName(".env")
		v.SetConfigType("env")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			// A missing .env file is fine; the environment alone may be complete.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				logger.Error("Failed to load settings", zap.Error(err))
				return nil, fmt.Errorf("read env file: %w", err)
			}
		}
	}

	v.AutomaticEnv()

	origins, err := normalizeCORSOrigins(v.Get("BACKEND_CORS_ORIGINS"))
	if err != nil {
		logger.Error("Failed to load settings", zap.Error(err))
		return nil, err
	}

	cfg := &Config{
		APIV1Prefix:              v.GetString("API_V1_STR"),
		ProjectName:              v.GetString("PROJECT_NAME"),
		CORSOrigins:              origins,
		SupabaseURL:              v.GetString("SUPABASE_URL"),
		SupabaseKey:              v.GetString("SUPABASE_KEY"),
		SecretKey:                v.GetString("SECRET_KEY"),
		Algorithm:                v.GetString("ALGORITHM"),
		AccessTokenExpireMinutes: v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES"),
		LogLevel:                 v.GetString("LOG_LEVEL"),
		LogToFile:                v.GetBool("LOG_TO_FILE"),
		LogFile:                  v.GetString("LOG_FILE"),
		LogJSON:                  v.GetBool("LOG_JSON"),
		ServerPort:               v.GetInt("SERVER_PORT"),
		FirstSuperuser:           v.GetString("FIRST_SUPERUSER"),
		FirstSuperuserPassword:   v.GetString("FIRST_SUPERUSER_PASSWORD"),
	}

	if overrides != nil {
		if overrides.Port > 0 {
			cfg.ServerPort = overrides.Port
		}
		if overrides.LogFile != "" {
			cfg.LogToFile = true
			cfg.LogFile = overrides.LogFile
		}
	}

	if err := validate(cfg); err != nil {
		logger.Error("Failed to load settings", zap.Error(err))
		return nil, err
	}

	logger.Info("Loaded settings", zap.String("project", cfg.ProjectName))
	return cfg, nil
}

// normalizeCORSOrigins accepts either a comma-separated string or a sequence
// of origins and returns a trimmed slice. Any other shape is a validation
// failure.
func normalizeCORSOrigins(raw any) ([]string, error) {
	switch value := raw.(type) {
	case string:
		parts := strings.Split(value, ",")
		origins := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		return origins, nil
	case []string:
		return value, nil
	case []any:
		origins := make([]string, 0, len(value))
		for _, item := range value {
			origin, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("BACKEND_CORS_ORIGINS: unsupported element %v", item)
			}
			origins = append(origins, strings.TrimSpace(origin))
		}
		return origins, nil
	default:
		return nil, fmt.Errorf("BACKEND_CORS_ORIGINS: unsupported value %v", raw)
	}
}

// validate enforces the configuration invariants. Struct tags cover the
// declarative rules; the placeholder secret check is explicit because it
// compares against one specific well-known value.
func validate(cfg *Config) error {
	if cfg.SecretKey == placeholderSecretKey {
		return errors.New("SECRET_KEY must be changed from default value")
	}

	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate settings: %w", err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' rule", fieldErr.Field(), fieldErr.Tag()))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(messages, "; "))
}
