package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/carhive/service-rental/internal/common/database"
)

// JWTConfig holds token validation settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds event publishing settings. An empty broker list
// disables publishing.
type KafkaConfig struct {
	Brokers []string
}

// SchedulerConfig holds cron expressions for background jobs
// (seconds precision, UTC).
type SchedulerConfig struct {
	AutoCompleteBookings string
}

// CORSConfig holds allowed browser origins.
type CORSConfig struct {
	AllowOrigins []string
}

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port      string
	AppEnv    string
	DB        database.PostgresConfig
	JWT       JWTConfig
	Kafka     KafkaConfig
	Scheduler SchedulerConfig
	CORS      CORSConfig
}

// Load reads configuration from environment variables (prefix RENTAL),
// with an optional .env file for local development.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RENTAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // .env is optional

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "rental")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("CORS_ALLOW_ORIGINS", "")
	v.SetDefault("SCHEDULER_AUTO_COMPLETE", "0 0 * * * *")

	secret := v.GetString("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("RENTAL_JWT_SECRET is required")
	}

	return &ServiceConfig{
		Port:   ":" + strings.TrimPrefix(v.GetString("SERVICE_PORT"), ":"),
		AppEnv: v.GetString("APP_ENV"),
		DB: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{Secret: secret},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
		},
		Scheduler: SchedulerConfig{
			AutoCompleteBookings: v.GetString("SCHEDULER_AUTO_COMPLETE"),
		},
		CORS: CORSConfig{
			AllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),
		},
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
