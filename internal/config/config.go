package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type Config struct {
	Port      string
	Env       string
	APIPrefix string

	// Storage
	StoreDriver  string
	DBURI        string
	DBName       string
	DBUser       string
	DBPassword   string
	DBHost       string
	StoreTimeout time.Duration

	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string

	MetricsEnabled bool
	CORSOrigins    []string
}

// LoadConfig reads the environment, after loading a .env file from the
// working directory if there is one.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	env := getenv("APP_ENV", os.Getenv("NODE_ENV"))
	if env == "" {
		env = EnvDevelopment
	}
	production := env == EnvProduction

	defaultLevel, defaultFormat := "debug", "text"
	if production {
		defaultLevel, defaultFormat = "info", "json"
	}

	storeTimeout, err := getDuration("STORE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	metricsEnabled := true
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("METRICS_ENABLED: %w", err)
		}
		metricsEnabled = b
	}

	cfg := &Config{
		Port:      getenv("PORT", "3000"),
		Env:       env,
		APIPrefix: "/" + strings.Trim(getenv("API_PREFIX", "/api"), "/"),

		StoreDriver:  strings.ToLower(getenv("STORE_DRIVER", DriverMongo)),
		DBURI:        getenv("DB_URI", "mongodb://localhost:27017"),
		DBName:       getenv("DB_NAME", "notes"),
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBHost:       getenv("DB_HOST", "localhost:3306"),
		StoreTimeout: storeTimeout,

		ShutdownTimeout: shutdownTimeout,

		LogLevel:  getenv("LOG_LEVEL", defaultLevel),
		LogFormat: getenv("LOG_FORMAT", defaultFormat),

		MetricsEnabled: metricsEnabled,
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "*")),
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.DBURI == "" {
			return errors.New("DB_URI is required for the mongo store")
		}
	case DriverMySQL:
		if c.DBUser == "" || c.DBHost == "" {
			return errors.New("DB_USER and DB_HOST are required for the mysql store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want mongo, mysql or memory)", c.StoreDriver)
	}
	if c.DBName == "" && c.StoreDriver != DriverMemory {
		return errors.New("DB_NAME is required")
	}
	if c.StoreTimeout < 0 || c.ShutdownTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q (want text or json)", c.LogFormat)
	}
	return nil
}

// IsDevelopment reports whether clients may see full error details.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// MySQLDSN builds the go-sql-driver DSN. parseTime is required to scan
// DATETIME columns into time.Time.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC", c.DBUser, c.DBPassword, c.DBHost, c.DBName)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
