package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"dcgen/internal/infra"
	"dcgen/internal/sqlinline"
)

func main() {
	var (
		idFlag    string
		emailFlag string
		tierFlag  string
	)

	flag.StringVar(&idFlag, "id", "", "user ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "user email to update")
	flag.StringVar(&tierFlag, "tier", "PREMIUM", "tier to assign (FREE, PREMIUM)")
	flag.Parse()

	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(emailFlag)
	tier := strings.ToUpper(strings.TrimSpace(tierFlag))

	if userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}
	switch tier {
	case "FREE", "PREMIUM":
	default:
		exitWithError(fmt.Errorf("unsupported tier %q", tier))
	}

	_ = godotenv.Load()
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "usertier").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	if userID == "" {
		var currentTier string
		row := runner.QueryRow(ctx, sqlinline.QSelectUserIDByEmail, email)
		if err := row.Scan(&userID, &currentTier); err != nil {
			if infra.IsNoRows(err) {
				exitWithError(fmt.Errorf("no user with email %q", email))
			}
			exitWithError(fmt.Errorf("lookup user: %w", err))
		}
	}

	tag, err := runner.Exec(ctx, sqlinline.QUpdateUserTier, userID, tier)
	if err != nil {
		exitWithError(fmt.Errorf("update tier: %w", err))
	}
	if tag.RowsAffected() == 0 {
		exitWithError(fmt.Errorf("no user with id %q", userID))
	}

	fmt.Printf("user %s is now %s\n", userID, tier)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
