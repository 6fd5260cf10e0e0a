package main

import (
	"crm_system/internal/config"  // Custom import path (Config)
	"crm_system/internal/storage" // Custom import path (Storage)

	"github.com/sirupsen/logrus"
)

// Main entry point for preparing the data directory
func main() {
	cfg := config.LoadConfig() // Load configuration
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := storage.New(cfg.DataDir).Init(); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if the layout cannot be created
	}
	logrus.Info("Migration completed.") // Log successful migration
}
