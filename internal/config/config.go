package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server" validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database" validate:"required"`
	Auth          AuthConfig          `mapstructure:"auth" validate:"required"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Mail          MailConfig          `mapstructure:"mail"`
	Notifications NotificationsConfig `mapstructure:"notifications" validate:"required"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	GinMode         string        `mapstructure:"gin_mode" validate:"required,oneof=debug release test"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver" validate:"required,oneof=sqlite mysql postgres"`
	URL          string `mapstructure:"url" validate:"required"`
	LogLevel     string `mapstructure:"log_level" validate:"required,oneof=silent error warn info"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

// RedisConfig is optional. An empty URL keeps the notification queue and
// job locks in process.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// MailConfig is optional. An empty Host logs outbound mail instead of
// sending it.
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"gte=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"required"`
}

type NotificationsConfig struct {
	Workers        int           `mapstructure:"workers" validate:"gt=0"`
	QueueSize      int           `mapstructure:"queue_size" validate:"gt=0"`
	QueueName      string        `mapstructure:"queue_name" validate:"required"`
	MaxAttempts    int           `mapstructure:"max_attempts" validate:"gt=0"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff" validate:"gt=0"`
	DigestInterval time.Duration `mapstructure:"digest_interval" validate:"gt=0"`
	EnqueueTimeout time.Duration `mapstructure:"enqueue_timeout" validate:"gt=0"`
}

// Load reads configuration from defaults, an optional config.yaml, a .env
// file and the environment, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Names used by earlier deployments of the service.
	_ = v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET", "JWT_SECRET_KEY")
	_ = v.BindEnv("server.gin_mode", "SERVER_GIN_MODE", "GIN_MODE")
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "task_manager.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_open_conns", 0)

	v.SetDefault("auth.jwt_secret", "jwt-secret-key")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("redis.url", "")

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "noreply@taskmanager.local")

	v.SetDefault("notifications.workers", 2)
	v.SetDefault("notifications.queue_size", 100)
	v.SetDefault("notifications.queue_name", "notifications")
	v.SetDefault("notifications.max_attempts", 3)
	v.SetDefault("notifications.retry_backoff", 5*time.Second)
	v.SetDefault("notifications.digest_interval", 24*time.Hour)
	v.SetDefault("notifications.enqueue_timeout", 500*time.Millisecond)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
