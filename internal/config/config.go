package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"billing_api/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// AppConfig holds everything main needs to wire the server
type AppConfig struct {
	ServerPort  string
	GinMode     string
	JWTSecret   string
	JWTTTL      time.Duration
	BcryptCost  int
	StoreDriver string
	CORSOrigins []string

	Mongo MongoConfig
	DB    *DBConfig
	Log   utils.LogConfig
}

// MongoConfig holds document store connection parameters
type MongoConfig struct {
	URI      string
	Database string
}

// LoadConfig reads the application configuration from environment variables
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		ServerPort:  firstEnv("5000", "SERVER_PORT", "PORT"),
		GinMode:     os.Getenv("GIN_MODE"),
		JWTSecret:   firstEnv("", "JWT_SECRET", "JWT_SECRET_KEY"),
		StoreDriver: strings.ToLower(firstEnv(StoreMongo, "STORE_DRIVER")),
		CORSOrigins: splitList(firstEnv("*", "CORS_ALLOWED_ORIGINS")),
		Log: utils.LogConfig{
			Level: os.Getenv("LOG_LEVEL"),
			Dev:   isTruthy(os.Getenv("LOG_DEV")),
			File:  os.Getenv("LOG_FILE"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set in environment")
	}

	ttl, err := time.ParseDuration(firstEnv("1h", "JWT_TTL"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL %q: must be a positive duration like 1h or 30m", os.Getenv("JWT_TTL"))
	}
	cfg.JWTTTL = ttl

	cost, err := strconv.Atoi(firstEnv(strconv.Itoa(utils.DefaultBcryptCost), "BCRYPT_COST"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid BCRYPT_COST %d: must be between %d and %d", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	cfg.BcryptCost = cost

	switch cfg.StoreDriver {
	case StoreMongo:
		cfg.Mongo = MongoConfig{
			URI:      firstEnv("", "MONGO_URI", "MONGOURI"),
			Database: firstEnv("billing", "MONGO_DB"),
		}
		if cfg.Mongo.URI == "" {
			return nil, fmt.Errorf("MONGO_URI not set in environment")
		}
	case StorePostgres:
		cfg.DB, err = LoadDBConfig()
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want %s or %s)", cfg.StoreDriver, StoreMongo, StorePostgres)
	}

	return cfg, nil
}

// firstEnv returns the first non-empty variable among keys, or def
func firstEnv(def string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return def
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

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
