package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benisnotitdog/task-manager-api/internal/logger"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const minSecretLen = 32

type Config struct {
	AppPort     string
	DatabaseURL string
	DBMaxConns  int32

	JWTSecret string
	JWTTTL    time.Duration
	JWTIssuer string

	BcryptCost int

	LogLevel string
	LogJSON  bool
	GinMode  string

	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// Load reads .env and the environment. Invalid configuration is fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Parse()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// Parse builds a Config from the current environment.
func Parse() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if len(jwtSecret) < minSecretLen {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	jwtTTL := 24 * time.Hour
	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("JWT_TTL: invalid duration %q", v)
		}
		jwtTTL = d
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "task-manager-api"
	}

	cost := bcrypt.DefaultCost
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("BCRYPT_COST: %w", err)
		}
		cost = clampCost(n)
	}

	maxConns := int32(10)
	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil && n > 0 {
			maxConns = int32(n)
		}
	}

	shutdown := 10 * time.Second
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			shutdown = d
		}
	}

	var origins []string
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		AppPort:            port,
		DatabaseURL:        dbURL,
		DBMaxConns:         maxConns,
		JWTSecret:          jwtSecret,
		JWTTTL:             jwtTTL,
		JWTIssuer:          issuer,
		BcryptCost:         cost,
		LogLevel:           logLevel,
		LogJSON:            strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"),
		GinMode:            os.Getenv("GIN_MODE"),
		CORSAllowedOrigins: origins,
		ShutdownTimeout:    shutdown,
	}, nil
}

func clampCost(n int) int {
	if n < bcrypt.MinCost {
		return bcrypt.MinCost
	}
	if n > bcrypt.MaxCost {
		return bcrypt.MaxCost
	}
	return n
}
