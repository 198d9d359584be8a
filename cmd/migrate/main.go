package main

import (
	"context"
	"flag"
	"log"
	"os"

	"policysim/adapters/postgres"
	"policysim/internal/migration"

	"github.com/joho/godotenv"
)

func main() {
	reset := flag.Bool("reset", false, "Drop the run history tables before migrating")
	status := flag.Bool("status", false, "Print applied schema versions and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if flag.NArg() > 0 {
		databaseURL = flag.Arg(0)
	}
	if databaseURL == "" {
		log.Fatal("Usage: migrate [--reset] [--status] [database_url] (or set DATABASE_URL)")
	}

	db, err := postgres.Open(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	runner := migration.NewRunner()

	if *status {
		versions, err := runner.Applied(ctx, db)
		if err != nil {
			log.Fatalf("Failed to read schema versions: %v", err)
		}
		log.Printf("Applied schema versions: %v", versions)
		return
	}

	if *reset {
		log.Println("Resetting database - dropping run history tables...")
		if err := runner.Reset(ctx, db); err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
	}

	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Migration complete: schema version %s", runner.Version())
}
