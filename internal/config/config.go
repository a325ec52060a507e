package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"graficaos.service/internal/core/model"
)

// Every binary reads the same environment; in a container each variable is
// set on the pod. Unused keys are simply ignored by a given binary.

type Config struct {
	DBHost           string        `mapstructure:"DB_HOST"`
	DBPort           string        `mapstructure:"DB_PORT"`
	DBUser           string        `mapstructure:"DB_USER"`
	DBPassword       string        `mapstructure:"DB_PASSWORD"`
	DBName           string        `mapstructure:"DB_NAME"`
	RunMigrations    bool          `mapstructure:"RUN_MIGRATIONS"`
	ServerPort       string        `mapstructure:"SERVER_PORT"`
	IsLocalDev       bool          `mapstructure:"IS_LOCAL_DEV"`
	AWSRegion        string        `mapstructure:"AWS_REGION"`
	AWSEndpoint      string        `mapstructure:"AWS_ENDPOINT"`
	EmailSQSQueueURL string        `mapstructure:"EMAIL_SQS_QUEUE_URL"`
	ReportSender     string        `mapstructure:"REPORT_SENDER"`
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	JWTTTL           time.Duration `mapstructure:"JWT_TTL"`
	OTelEndpoint     string        `mapstructure:"OTEL_EXPORTER_ENDPOINT"`

	// CivilUTCOffsetHours fixes the business timezone (Brasília, no DST).
	CivilUTCOffsetHours int    `mapstructure:"CIVIL_UTC_OFFSET_HOURS"`
	OnTimeThreshold     string `mapstructure:"ON_TIME_THRESHOLD"`
	AutoCloseHour       int    `mapstructure:"AUTO_CLOSE_HOUR"`
}

// LoadConfig reads configuration from environment variables. A .env file in
// the working directory, when present, fills variables not already set.
func LoadConfig() (config Config, err error) {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)

	// Read in environment variables that match the keys.
	v.AutomaticEnv()

	if err = v.Unmarshal(&config); err != nil {
		return config, err
	}
	err = config.Validate()
	return
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("DB_HOST", "db")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "graficaos_db")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("IS_LOCAL_DEV", false)
	v.SetDefault("AWS_REGION", "sa-east-1")
	v.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	v.SetDefault("EMAIL_SQS_QUEUE_URL", "http://localstack:4566/000000000000/email-queue")
	v.SetDefault("REPORT_SENDER", "GráficaOS <noreply@graficaos.com>")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "12h")
	v.SetDefault("OTEL_EXPORTER_ENDPOINT", "jaeger:4317")
	v.SetDefault("CIVIL_UTC_OFFSET_HOURS", -3)
	v.SetDefault("ON_TIME_THRESHOLD", "08:15")
	v.SetDefault("AUTO_CLOSE_HOUR", 22)
}

// Validate checks the values the engine cannot run without.
func (c Config) Validate() error {
	if _, err := model.ParseTimeOfDay(c.OnTimeThreshold); err != nil {
		return fmt.Errorf("ON_TIME_THRESHOLD: %w", err)
	}
	if c.AutoCloseHour < 0 || c.AutoCloseHour > 23 {
		return fmt.Errorf("AUTO_CLOSE_HOUR must be between 0 and 23, got %d", c.AutoCloseHour)
	}
	if c.CivilUTCOffsetHours < -12 || c.CivilUTCOffsetHours > 14 {
		return fmt.Errorf("CIVIL_UTC_OFFSET_HOURS out of range: %d", c.CivilUTCOffsetHours)
	}
	if len(c.JWTSecret) < 8 && !c.IsLocalDev {
		return errors.New("JWT_SECRET must be at least 8 characters")
	}
	return nil
}

// OnTime is the parsed punctuality threshold. Call after Validate.
func (c Config) OnTime() model.TimeOfDay {
	t, _ := model.ParseTimeOfDay(c.OnTimeThreshold)
	return t
}

// DSN is the PostgreSQL connection URL.
func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
