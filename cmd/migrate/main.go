package main

import (
	"context" // Seed deadline
	"os"      // Log output
	"time"    // Seed timeout

	"account_service/internal/config"  // Custom import path (Config)
	"account_service/internal/db"      // Custom import path (Database)
	"account_service/internal/logging" // Logger setup

	"github.com/sirupsen/logrus" // Structured logging
)

// Main entry point for migration
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	logger := logging.Setup(os.Stdout, cfg.LogLevel, cfg.IsProd)

	gdb, err := db.Open(cfg)
	if err != nil {
		logger.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.SeedAdmin(ctx, gdb, cfg.AdminLogin, cfg.AdminPassword); err != nil {
		logger.Fatalf("failed to seed admin: %v", err)
	}
}
