// Command bootstrap-superuser creates a superuser account.
// Intended for operators; the HTTP surface never grants staff flags.
//
// Usage:
//
//	go run ./scripts/bootstrap-superuser.go -email admin@example.com -password <secret>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/internal/service"
)

type output struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "Superuser email")
		password    = flag.String("password", "", "Superuser password (min 8 characters)")
		format      = flag.String("format", "plain", "Output format: plain or json")
		tokenTTL    = flag.Duration("token-ttl", 24*time.Hour, "Lifetime of the issued auth token")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "-email and -password are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	users := service.NewUserService(repo, nil, auth.EnvLive, *tokenTTL, nil)

	user, err := users.CreateSuperuser(ctx, service.RegisterInput{
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "create superuser:", err)
		os.Exit(1)
	}

	_, issued, err := users.Authenticate(ctx, user.Email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}

	out := output{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.UserID)
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, "encode output:", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "unknown format:", *format)
		os.Exit(1)
	}
}
