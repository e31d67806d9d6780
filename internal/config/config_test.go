package config

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/tasks")
	t.Setenv("JWT_SECRET", testSecret)
}

func TestParseDefaults(t *testing.T) {
	setRequired(t)
	for _, k := range []string{"APP_PORT", "JWT_TTL", "JWT_ISSUER", "BCRYPT_COST", "DB_MAX_CONNS", "SHUTDOWN_TIMEOUT", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.AppPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.AppPort)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %v", cfg.JWTTTL)
	}
	if cfg.JWTIssuer != "task-manager-api" {
		t.Fatalf("unexpected issuer %q", cfg.JWTIssuer)
	}
	if cfg.BcryptCost != bcrypt.DefaultCost {
		t.Fatalf("unexpected bcrypt cost %d", cfg.BcryptCost)
	}
	if cfg.DBMaxConns != 10 || cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected pool/shutdown defaults: %d %v", cfg.DBMaxConns, cfg.ShutdownTimeout)
	}
	if cfg.LogLevel != "info" || cfg.LogJSON {
		t.Fatalf("unexpected log defaults: %s %v", cfg.LogLevel, cfg.LogJSON)
	}
}

func TestParseOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_PORT", "9000")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("BCRYPT_COST", "2")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.AppPort != "9000" || cfg.JWTTTL != 15*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.BcryptCost != bcrypt.MinCost {
		t.Fatalf("expected cost clamped to %d, got %d", bcrypt.MinCost, cfg.BcryptCost)
	}
	if !cfg.LogJSON {
		t.Fatalf("expected json logging")
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing database", map[string]string{"DATABASE_URL": "", "JWT_SECRET": testSecret}, "DATABASE_URL"},
		{"missing secret", map[string]string{"DATABASE_URL": "x", "JWT_SECRET": ""}, "JWT_SECRET"},
		{"short secret", map[string]string{"DATABASE_URL": "x", "JWT_SECRET": "short"}, "at least"},
		{"bad ttl", map[string]string{"DATABASE_URL": "x", "JWT_SECRET": testSecret, "JWT_TTL": "soon"}, "JWT_TTL"},
		{"negative ttl", map[string]string{"DATABASE_URL": "x", "JWT_SECRET": testSecret, "JWT_TTL": "-1h"}, "JWT_TTL"},
		{"bad cost", map[string]string{"DATABASE_URL": "x", "JWT_SECRET": testSecret, "BCRYPT_COST": "high"}, "BCRYPT_COST"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_TTL", "")
			t.Setenv("BCRYPT_COST", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
