package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/benisnotitdog/task-manager-api/internal/config"
	"github.com/benisnotitdog/task-manager-api/internal/db"
	"github.com/benisnotitdog/task-manager-api/internal/domain"
	"github.com/benisnotitdog/task-manager-api/internal/repository"
	"github.com/benisnotitdog/task-manager-api/internal/service"
)

// Registers a user (or reuses an existing one) and prints a fresh access token.
func main() {
	username := flag.String("username", "testuser", "username to create or log in as")
	password := flag.String("password", "testpassword", "password for the user")
	flag.Parse()

	cfg := config.Load()

	pool := db.Connect(cfg.DatabaseURL, 2)
	defer pool.Close()

	tokens, err := service.NewJWTService(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}
	auth := service.NewAuthService(
		repository.NewUserRepository(pool),
		service.NewPasswordHasher(cfg.BcryptCost),
		tokens,
	)
	ctx := context.Background()

	u, err := auth.Register(ctx, *username, *password)
	switch {
	case err == nil:
		log.Printf("user created id=%d username=%s\n", u.ID, u.Username)
	case errors.Is(err, domain.ErrConflict):
		log.Printf("user %s already exists\n", *username)
	default:
		log.Fatalf("create user failed: %v", err)
	}

	res, err := auth.Login(ctx, *username, *password)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}
	log.Printf("user id=%d token expires_at=%s\n", res.UserID, res.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z"))
	log.Printf("token=%s\n", res.Token)
}
