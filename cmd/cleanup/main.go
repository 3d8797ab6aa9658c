package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/vitacasa-care/community-service/internal/clinic"
	"github.com/vitacasa-care/community-service/internal/db"
)

func main() {
	log.Println("Clinic Cleanup Job - Starting")
	log.Println("Retention Policy: 3 years")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Connect to database
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Create cleanup service
	cleanupService := clinic.NewCleanupService(database)

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Check how many clinics are eligible for cleanup
	count, err := cleanupService.GetExpiredClinicsCount(ctx)
	if err != nil {
		log.Fatalf("Failed to get expired clinics count: %v", err)
	}

	log.Printf("Found %d clinics eligible for permanent deletion", count)

	if count == 0 {
		log.Println("No cleanup needed. Exiting.")
		os.Exit(0)
	}

	// Perform cleanup
	deletedCount, err := cleanupService.CleanupExpiredClinics(ctx)
	if err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}

	log.Printf("✓ Cleanup completed successfully: %d clinics permanently deleted", deletedCount)
	log.Println("Cleanup Job - Finished")
}
