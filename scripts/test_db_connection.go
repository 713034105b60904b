//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"supply-desk/internal/config"
	"supply-desk/internal/database"
	"supply-desk/internal/repository"
)

// Connects with the DB_* settings, applies the schema and prints row counts.
//
//	go run scripts/test_db_connection.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	if err := repository.Migrate(ctx, pool, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nTables:")
	for _, table := range []string{"submissions", "submission_lines", "order_notifications"} {
		var count int64
		if err := pool.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&count); err != nil {
			fmt.Fprintf(os.Stderr, "Count on %s failed: %v\n", table, err)
			os.Exit(1)
		}
		fmt.Printf("  - %-20s %d rows\n", table, count)
	}
}
