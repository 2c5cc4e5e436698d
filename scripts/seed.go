//go:build ignore

// Run with: go run scripts/seed.go [flags]

package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"botpanel/internal/config"
)

// ANSI color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Command-line flags
var (
	recipientsCount = flag.Int("recipients", 120, "Number of recipients to create")
	campaignsCount  = flag.Int("campaigns", 2, "Number of campaigns to create")
	clearData       = flag.Bool("clear", false, "Clear existing seed data before inserting")
	showHelp        = flag.Bool("help", false, "Show usage information")
)

// Seeded telegram ids start here so real subscribers are never touched.
const seedTelegramIDBase = 900_000_000_000

func main() {
	flag.Parse()

	if *showHelp {
		printUsage()
		os.Exit(0)
	}

	// Load .env file (ignore error if not present)
	_ = godotenv.Load()

	printInfo("=== Bot Panel Database Seeder ===\n")

	cfg, err := config.Load(context.Background())
	if err != nil {
		printError(fmt.Sprintf("Failed to load configuration: %v", err))
		os.Exit(1)
	}

	printInfo("Connecting to database...")
	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		printError(fmt.Sprintf("Failed to open database connection: %v", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		printError(fmt.Sprintf("Failed to ping database: %v", err))
		os.Exit(1)
	}
	printSuccess("✓ Connected to database\n")

	if *clearData {
		if err := clearSeedData(db); err != nil {
			printError(fmt.Sprintf("Failed to clear seed data: %v", err))
			os.Exit(1)
		}
	}

	recipientsCreated, err := seedRecipients(db, *recipientsCount)
	if err != nil {
		printError(fmt.Sprintf("Failed to seed recipients: %v", err))
		os.Exit(1)
	}

	campaignsCreated, err := seedCampaigns(db, *campaignsCount)
	if err != nil {
		printError(fmt.Sprintf("Failed to seed campaigns: %v", err))
		os.Exit(1)
	}

	printInfo("\n=== Seeding Summary ===")
	printSuccess(fmt.Sprintf("✓ Recipients created: %d", recipientsCreated))
	printSuccess(fmt.Sprintf("✓ Campaigns created: %d", campaignsCreated))
	printInfo("\nSeeding completed successfully!")
}

// clearSeedData removes existing seed data
func clearSeedData(db *sql.DB) error {
	printWarning("Clearing existing seed data...")

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("DELETE FROM campaigns WHERE message LIKE '[seed]%'")
	if err != nil {
		return fmt.Errorf("failed to delete campaigns: %w", err)
	}

	_, err = tx.Exec("DELETE FROM recipients WHERE telegram_id >= $1", seedTelegramIDBase)
	if err != nil {
		return fmt.Errorf("failed to delete recipients: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	printSuccess("✓ Seed data cleared\n")
	return nil
}

// seedRecipients generates and inserts recipient data
func seedRecipients(db *sql.DB, count int) (int, error) {
	printInfo(fmt.Sprintf("Seeding %d recipients...", count))

	firstNames := []string{"Michael", "Sophia", "James", "Olivia", "Daniel", "Emma", "Benjamin", "Ava", "Lucas", "Mia", "Noah", "Isabella", "William", "Charlotte", "Alexander"}

	created := 0
	for i := 1; i <= count; i++ {
		telegramID := seedTelegramIDBase + int64(i)

		var username, firstName *string

		// Most recipients have a first name, fewer have a public username
		if i%10 != 1 {
			firstName = stringPtr(firstNames[i%len(firstNames)])
		}
		if i%3 != 0 {
			username = stringPtr(fmt.Sprintf("seed_user_%03d", i))
		}

		// Every 12th recipient is blocked so windowing over the eligible
		// subset is exercised.
		blocked := i%12 == 0

		query := `
			INSERT INTO recipients (telegram_id, username, first_name, is_blocked)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (telegram_id) DO NOTHING
		`

		result, err := db.Exec(query, telegramID, username, firstName, blocked)
		if err != nil {
			return created, fmt.Errorf("failed to insert recipient %d: %w", telegramID, err)
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected > 0 {
			created++
		}
	}

	printSuccess(fmt.Sprintf("✓ Seeded %d recipients (skipped %d existing)", created, count-created))
	return created, nil
}

// seedCampaigns generates and inserts campaign data
func seedCampaigns(db *sql.DB, count int) (int, error) {
	printInfo(fmt.Sprintf("Seeding %d campaigns...", count))

	campaigns := []struct {
		message     string
		buttons     *string
		scheduledAt time.Time
	}{
		{
			message:     "[seed] Welcome aboard! We will be sharing product updates here.",
			scheduledAt: time.Now(),
		},
		{
			message:     "[seed] Weekend promo is live, tap below for details.",
			buttons:     stringPtr(`[[{"text":"Open promo","url":"https://example.com/promo"}]]`),
			scheduledAt: time.Now().Add(24 * time.Hour),
		},
		{
			message:     "[seed] Scheduled maintenance notice for next week.",
			scheduledAt: time.Now().Add(48 * time.Hour),
		},
	}

	created := 0
	for i := 0; i < count && i < len(campaigns); i++ {
		campaign := campaigns[i]

		query := `
			INSERT INTO campaigns (status, message, buttons, scheduled_at)
			SELECT 'pending', $1, $2::jsonb, $3
			WHERE NOT EXISTS (SELECT 1 FROM campaigns WHERE message = $1)
		`

		result, err := db.Exec(query, campaign.message, campaign.buttons, campaign.scheduledAt)
		if err != nil {
			return created, fmt.Errorf("failed to insert campaign %q: %w", campaign.message, err)
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected > 0 {
			created++
		}
	}

	printSuccess(fmt.Sprintf("✓ Seeded %d campaigns (skipped %d existing)", created, count-created))
	return created, nil
}

// Helper functions

// stringPtr returns a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// printSuccess prints a success message in green
func printSuccess(msg string) {
	fmt.Printf("%s%s%s\n", colorGreen, msg, colorReset)
}

// printError prints an error message in red
func printError(msg string) {
	fmt.Fprintf(os.Stderr, "%s%s%s\n", colorRed, msg, colorReset)
}

// printInfo prints an info message in cyan
func printInfo(msg string) {
	fmt.Printf("%s%s%s\n", colorCyan, msg, colorReset)
}

// printWarning prints a warning message in yellow
func printWarning(msg string) {
	fmt.Printf("%s%s%s\n", colorYellow, msg, colorReset)
}

// printUsage displays usage information
func printUsage() {
	printInfo("=== Bot Panel Database Seeder ===\n")
	fmt.Println("Usage: go run scripts/seed.go [flags]")
	fmt.Println("\nFlags:")
	flag.PrintDefaults()
	fmt.Println("\nExamples:")
	fmt.Println("  go run scripts/seed.go")
	fmt.Println("  go run scripts/seed.go -recipients=500 -campaigns=3")
	fmt.Println("  go run scripts/seed.go -clear")
	fmt.Println("\nNotes:")
	fmt.Println("  - Seeded telegram ids start at 900000000000, away from real subscribers")
	fmt.Println("  - The script is idempotent - running multiple times won't create duplicates")
	fmt.Println("  - Use -clear to remove existing seed data before inserting new data")
}
