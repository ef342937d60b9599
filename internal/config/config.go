package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"products-api/internal/query"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Mongo       MongoConfig
	Store       StoreConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Seed        SeedConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
	TextLanguage   string
}

type StoreConfig struct {
	Driver       string
	QueryTimeout time.Duration
	WriteTimeout time.Duration
	SearchMode   query.SearchMode
}

type LogConfig struct {
	Level  string
	Format string
}

type HTTPConfig struct {
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type SeedConfig struct {
	SourceURL string
	Limit     int
}

// IsDevelopment indica si se exponen los detalles internos de los errores
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func LoadConfig() (*Config, error) {
	// Solo cargar .env en desarrollo local
	// En producción se usan las variables del sistema
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			logrus.WithError(err).Warn("error loading .env file")
		} else {
			logrus.Debug(".env file loaded")
		}
	}

	mode, err := query.ParseSearchMode(getEnv("SEARCH_MODE", string(query.SearchBoth)))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		// Los detalles de error y el modo debug de gin hay que pedirlos con ENVIRONMENT=development
		Environment: getEnv("ENVIRONMENT", "production"),
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", ""),
			Database:       getEnv("MONGO_DB", "productCatalog"),
			Collection:     getEnv("MONGO_COLLECTION", "products"),
			MaxPoolSize:    uint64(getEnvAsInt("MONGO_MAX_POOL_SIZE", 50)),
			MinPoolSize:    uint64(getEnvAsInt("MONGO_MIN_POOL_SIZE", 0)),
			ConnectTimeout: getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
			TextLanguage:   getEnv("MONGO_TEXT_LANGUAGE", "english"),
		},
		Store: StoreConfig{
			Driver:       strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
			QueryTimeout: getEnvAsDuration("QUERY_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 5*time.Second),
			SearchMode:   mode,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		HTTP: HTTPConfig{
			CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"*"}),
			RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 0),
			RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Seed: SeedConfig{
			SourceURL: getEnv("SEED_SOURCE_URL", "https://dummyjson.com/products"),
			Limit:     getEnvAsInt("SEED_LIMIT", 100),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rechaza combinaciones inutilizables
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when STORE_DRIVER=mongo"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}
	if c.Mongo.MinPoolSize > c.Mongo.MaxPoolSize {
		errs = append(errs, errors.New("MONGO_MIN_POOL_SIZE must not exceed MONGO_MAX_POOL_SIZE"))
	}
	if c.Store.QueryTimeout <= 0 || c.Store.WriteTimeout <= 0 {
		errs = append(errs, errors.New("QUERY_TIMEOUT and WRITE_TIMEOUT must be positive"))
	}
	if c.Seed.Limit < 0 {
		errs = append(errs, errors.New("SEED_LIMIT must not be negative"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvAsDuration acepta "5s", "250ms" o un número de segundos
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
