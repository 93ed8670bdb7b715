package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"

	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultJWTSecret = "SUPER_SECRET_KEY"
)

type (
	Config struct {
		Host     string `mapstructure:"HOST"`
		Port     string `mapstructure:"PORT"`
		GRPCPort string `mapstructure:"GRPC_PORT"`
		Env      string `mapstructure:"APP_ENV"`
		LogLevel string `mapstructure:"LOG_LEVEL"`

		StoreDriver string `mapstructure:"STORE_DRIVER"`
		MongoURI    string `mapstructure:"MONGO_URI"`
		MongoDB     string `mapstructure:"MONGO_DB"`
		DBHost      string `mapstructure:"DB_HOST"`
		DBPort      string `mapstructure:"DB_PORT"`
		DBUser      string `mapstructure:"DB_USER"`
		DBPassword  string `mapstructure:"DB_PASSWORD"`
		DBName      string `mapstructure:"DB_NAME"`
		DBSSLMode   string `mapstructure:"DB_SSL_MODE"`
		SQLitePath  string `mapstructure:"SQLITE_PATH"`

		JWTSecret   string        `mapstructure:"JWT_SECRET"`
		TokenTTL    time.Duration `mapstructure:"TOKEN_TTL"`
		APIBaseURL  string        `mapstructure:"API_BASE_URL"`
		FrontendURL string        `mapstructure:"FRONTEND_URL"`
		CORSOrigins string        `mapstructure:"CORS_ORIGINS"`
	}
)

var defaults = map[string]interface{}{
	"HOST":         "0.0.0.0",
	"PORT":         "3000",
	"GRPC_PORT":    "9000",
	"APP_ENV":      EnvDevelopment,
	"LOG_LEVEL":    "info",
	"STORE_DRIVER": DriverMongo,
	"MONGO_URI":    "mongodb://localhost:27017",
	"MONGO_DB":     "secondbrain",
	"DB_HOST":      "0.0.0.0",
	"DB_PORT":      "5432",
	"DB_USER":      "user",
	"DB_PASSWORD":  "password",
	"DB_NAME":      "db",
	"DB_SSL_MODE":  sslModeDisable,
	"SQLITE_PATH":  "secondbrain.db",
	"JWT_SECRET":   defaultJWTSecret,
	"TOKEN_TTL":    "0s",
	"API_BASE_URL": "http://localhost:3000/api/v1",
	"FRONTEND_URL": "http://localhost:3000",
	"CORS_ORIGINS": "*",
}

func NewConfig() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// a missing .env is normal outside local development
	_ = godotenv.Load(envFile)

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "bind env %s", key)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// Origins splits CORS_ORIGINS into the list echo's CORS middleware expects.
func (c *Config) Origins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func validate(cfg *Config) error {
	if !oneOf(cfg.DBSSLMode, sslModeDisable, sslModeRequire) {
		return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
	}
	if !oneOf(cfg.StoreDriver, DriverMongo, DriverPostgres, DriverSQLite) {
		return errors.New(fmt.Sprintf("store driver is invalid: %s", cfg.StoreDriver))
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if cfg.TokenTTL < 0 {
		return errors.New("TOKEN_TTL must not be negative")
	}
	if cfg.IsProduction() {
		if cfg.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(cfg.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
	}
	return nil
}

func oneOf(value string, valid ...string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}
