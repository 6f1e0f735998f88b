package main

import (
	"context"
	"database/sql"
	"embed"
	"flag"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"dcgen/internal/infra"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func main() {
	var down bool
	flag.BoolVar(&down, "down", false, "roll back the most recent migration instead of applying")
	flag.Parse()

	_ = godotenv.Load()
	logger := infra.NewLogger(os.Getenv("APP_ENV"))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		logger.Fatal().Err(err).Msg("set dialect")
	}

	ctx := context.Background()
	if down {
		if err := goose.DownContext(ctx, db, "migrations"); err != nil {
			logger.Fatal().Err(err).Msg("migrate down failed")
		}
		logger.Info().Msg("rolled back one migration")
		return
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		logger.Fatal().Err(err).Msg("migrate up failed")
	}
	logger.Info().Msg("migrations applied")
}
