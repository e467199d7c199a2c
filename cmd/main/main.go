package main

import (
	"context"

	"github.com/amirrezavafa/Digistyle-crawler/internal/config"
	"github.com/amirrezavafa/Digistyle-crawler/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.Info("Starting Digistyle crawler...")

	// Load configuration using viper
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Info("Configuration loaded successfully")

	// Initialize container with all dependencies
	app, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer app.Close()

	// Run the crawl
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("Crawler exited with error: %v", err)
	}

	log.Info("Crawler finished successfully")
}
