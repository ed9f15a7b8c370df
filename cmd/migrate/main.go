package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/colexalia/colexalia-backend/internal/config"
	"github.com/colexalia/colexalia-backend/internal/database"
	"github.com/colexalia/colexalia-backend/internal/migration"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "configs/config.local.yaml", "config file path")
	verify := flag.Bool("verify", false, "print row counts of every table")
	reset := flag.Bool("reset", false, "drop every table (destroys all data)")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := database.Open(cfg.Database, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	switch {
	case *reset:
		runReset(db)
	case *verify:
		runVerify(db)
	default:
		runMigration(db)
	}
}

func runMigration(db *gorm.DB) {
	start := time.Now()
	log.Println("[migrate] Starting")
	if err := migration.Run(db); err != nil {
		log.Fatalf("[migrate] FAILED: %v", err)
	}
	log.Printf("[migrate] Completed in %v", time.Since(start))
	runVerify(db)
}

func runVerify(db *gorm.DB) {
	counts, err := migration.Counts(db)
	if err != nil {
		log.Fatalf("[verify] FAILED: %v", err)
	}

	fmt.Println()
	fmt.Println("╔══════════════╦══════════════╦═══════╗")
	fmt.Println("║ Table        ║         Rows ║ Exists║")
	fmt.Println("╠══════════════╬══════════════╬═══════╣")
	for _, c := range counts {
		exists := "✗"
		if c.Exists {
			exists = "✓"
		}
		fmt.Printf("║ %-12s ║ %12d ║   %s   ║\n", c.Table, c.Rows, exists)
	}
	fmt.Println("╚══════════════╩══════════════╩═══════╝")
	fmt.Println()
}

func runReset(db *gorm.DB) {
	log.Println("[reset] WARNING: This will DROP every table!")
	log.Println("[reset] Press Ctrl+C to cancel within 5 seconds...")
	time.Sleep(5 * time.Second)

	if err := migration.Reset(db); err != nil {
		log.Fatalf("[reset] FAILED: %v", err)
	}
	log.Println("[reset] Complete. All tables dropped.")
}
