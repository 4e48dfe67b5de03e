package main

import (
	"context"

	"github.com/joho/godotenv"
	"googlemaps.github.io/maps"

	"trovabenzina-bot/api"
	"trovabenzina-bot/db"
)

func main() {
	// .env is optional; deployments set real environment variables
	_ = godotenv.Load()

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	cfg, err := LoadAppConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConfig, err := db.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load database configuration: %v", err)
	}

	database, err := db.Connect(ctx, dbConfig, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.RunMigrations(ctx); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	if version, err := database.GetSchemaVersion(ctx); err == nil {
		logger.Infof("Database ready, schema version %d", version)
	}

	mapsClient, err := maps.NewClient(maps.WithAPIKey(cfg.GoogleAPIKey))
	if err != nil {
		logger.Fatalf("Failed to create maps client: %v", err)
	}

	geocoder := api.NewGeocoder(mapsClient, database, cfg.GeocodeHardCap, logger)
	stations := api.NewStationClient(cfg.MiseSearchURL, cfg.MiseDetailURL, logger)
	catalog := NewCatalog()

	bot, err := NewBot(cfg, database, geocoder, stations, catalog, logger)
	if err != nil {
		logger.Fatalf("Failed to create bot: %v", err)
	}

	bot.startScheduler(ctx)

	if err := bot.Start(ctx); err != nil {
		logger.Fatalf("Bot error: %v", err)
	}
}
