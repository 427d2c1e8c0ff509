package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"bookrental-backend/internal/config"
	"bookrental-backend/internal/infrastructure/database"
	"bookrental-backend/migrations"
	"bookrental-backend/pkg/logger"
)

func main() {
	status := flag.Bool("status", false, "list applied and pending migrations without applying")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("[MIGRATE] Failed to load config")
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("[MIGRATE] Failed to connect to database")
	}
	defer db.Close()

	migs, err := database.LoadMigrations(migrations.FS)
	if err != nil {
		log.Fatal().Err(err).Msg("[MIGRATE] Failed to load migrations")
	}

	migrator := database.NewMigrator(db)

	if *status {
		if err := printStatus(ctx, migrator, migs); err != nil {
			log.Fatal().Err(err).Msg("[MIGRATE] Failed to read status")
		}
		return
	}

	ran, err := migrator.Up(ctx, migs)
	if err != nil {
		log.Fatal().Err(err).Strs("applied", ran).Msg("[MIGRATE] Migration failed")
	}
	log.Info().Int("applied", len(ran)).Msg("[MIGRATE] Schema is up to date")
}

func printStatus(ctx context.Context, m *database.Migrator, migs []database.Migration) error {
	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}

	done := make(map[string]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
		fmt.Fprintf(os.Stdout, "applied  %s  %s\n", a.Version, a.AppliedAt.Format(time.RFC3339))
	}
	for _, mig := range database.Pending(migs, done) {
		fmt.Fprintf(os.Stdout, "pending  %s  %s\n", mig.Version, mig.Name)
	}
	return nil
}
