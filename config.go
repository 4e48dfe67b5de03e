package main

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults for the public endpoints; all overridable via environment
const (
	defaultMiseSearchURL = "https://carburanti.mise.gov.it/ospzApi/search/zone"
	defaultMiseDetailURL = "https://carburanti.mise.gov.it/ospzApi/registry/servicearea/{id}"
)

// Config holds process configuration loaded from environment variables
type Config struct {
	TelegramToken string
	GoogleAPIKey  string

	GeocodeHardCap int

	MiseSearchURL string
	MiseDetailURL string

	RadiusNearKm float64
	RadiusFarKm  float64

	Timezone           string
	CacheCleanHour     int
	CacheRetentionDays int
	MonthlyReportDay   int
	MonthlyReportHour  int

	EnableDonation  bool
	PaypalLink      string
	LitersPerSearch int
}

// LoadAppConfig reads configuration from environment variables with defaults
func LoadAppConfig() (*Config, error) {
	cfg := &Config{
		TelegramToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		GoogleAPIKey:       os.Getenv("GOOGLE_API_KEY"),
		GeocodeHardCap:     envInt("GEOCODE_HARD_CAP", 10000),
		MiseSearchURL:      envString("MISE_SEARCH_URL", defaultMiseSearchURL),
		MiseDetailURL:      envString("MISE_DETAIL_URL", defaultMiseDetailURL),
		RadiusNearKm:       envFloat("DEFAULT_RADIUS_NEAR", 2.5),
		RadiusFarKm:        envFloat("DEFAULT_RADIUS_FAR", 7.5),
		Timezone:           envString("SCHEDULER_TIMEZONE", "Europe/Rome"),
		CacheCleanHour:     envInt("CACHE_CLEAN_HOUR", 4),
		CacheRetentionDays: envInt("CACHE_RETENTION_DAYS", 90),
		MonthlyReportDay:   envInt("MONTHLY_REPORT_DAY", 1),
		MonthlyReportHour:  envInt("MONTHLY_REPORT_HOUR", 9),
		EnableDonation:     envBool("ENABLE_DONATION", true),
		PaypalLink:         envString("PAYPAL_LINK", "https://www.paypal.com/donate"),
		LitersPerSearch:    envInt("LITERS_PER_SEARCH", 50),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is required")
	}
	if cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is required")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return fallback
}
