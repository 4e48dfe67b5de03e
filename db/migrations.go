package db

import (
	"context"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	Up          string
}

// migrations defines all database migrations in order
// Each migration creates tables in the configured schema
func getMigrations(schema string) []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create schema and migrations table",
			Up: fmt.Sprintf(`
				CREATE SCHEMA IF NOT EXISTS %s;

				CREATE TABLE IF NOT EXISTS %s.schema_migrations (
					version INTEGER PRIMARY KEY,
					description TEXT NOT NULL,
					applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
				);
			`, schema, schema),
		},
		{
			Version:     2,
			Description: "Create users table",
			Up: fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s.users (
					user_id BIGINT PRIMARY KEY,
					fuel_code VARCHAR(10) NOT NULL,
					service_code VARCHAR(10) NOT NULL,
					language_code VARCHAR(10) NOT NULL DEFAULT 'it',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
				);
			`, schema),
		},
		{
			Version:     3,
			Description: "Create searches table",
			Up: fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s.searches (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL,
					ts TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					fuel_code VARCHAR(10),
					radius_km DOUBLE PRECISION,
					num_stations INTEGER DEFAULT 0,
					price_avg DOUBLE PRECISION,
					price_min DOUBLE PRECISION,
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX IF NOT EXISTS idx_searches_user_id ON %s.searches(user_id);
				CREATE INDEX IF NOT EXISTS idx_searches_ts ON %s.searches(ts);
			`, schema, schema, schema),
		},
		{
			Version:     4,
			Description: "Create geocache table",
			Up: fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s.geocache (
					query TEXT PRIMARY KEY,
					lat DOUBLE PRECISION NOT NULL,
					lng DOUBLE PRECISION NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
				);

				CREATE INDEX IF NOT EXISTS idx_geocache_created_at ON %s.geocache(created_at);
			`, schema, schema),
		},
		{
			Version:     5,
			Description: "Create geostats table",
			Up: fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s.geostats (
					month VARCHAR(7) PRIMARY KEY,
					cnt INTEGER NOT NULL DEFAULT 0
				);
			`, schema),
		},
		{
			Version:     6,
			Description: "Create favorites table",
			Up: fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s.favorites (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL,
					name VARCHAR(100) NOT NULL,
					lat DOUBLE PRECISION NOT NULL,
					lng DOUBLE PRECISION NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(user_id, name)
				);

				CREATE INDEX IF NOT EXISTS idx_favorites_user_id ON %s.favorites(user_id);
			`, schema, schema),
		},
	}
}

// RunMigrations executes all pending migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	migrations := getMigrations(db.Config.Schema)

	// Run migration 1 first to ensure schema and migrations table exist
	if len(migrations) > 0 {
		_, err := db.Pool.Exec(ctx, migrations[0].Up)
		if err != nil {
			return fmt.Errorf("failed to create schema and migrations table: %w", err)
		}
	}

	// Get current version
	currentVersion := 0
	row := db.Pool.QueryRow(ctx, fmt.Sprintf(
		"SELECT COALESCE(MAX(version), 0) FROM %s.schema_migrations",
		db.Config.Schema,
	))
	if err := row.Scan(&currentVersion); err != nil {
		// Table might not exist yet, which is fine
		currentVersion = 0
	}

	db.log.Infof("Current database schema version: %d", currentVersion)

	// Run pending migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		db.log.Infof("Running migration %d: %s", migration.Version, migration.Description)

		if _, err := db.Pool.Exec(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to run migration %d (%s): %w", migration.Version, migration.Description, err)
		}

		// Record migration
		_, err := db.Pool.Exec(ctx, fmt.Sprintf(
			"INSERT INTO %s.schema_migrations (version, description) VALUES ($1, $2)",
			db.Config.Schema,
		), migration.Version, migration.Description)
		if err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	db.log.Infof("All migrations completed. Schema version: %d", len(migrations))
	return nil
}

// GetSchemaVersion returns the current schema version
func (db *DB) GetSchemaVersion(ctx context.Context) (int, error) {
	var version int
	row := db.Pool.QueryRow(ctx, fmt.Sprintf(
		"SELECT COALESCE(MAX(version), 0) FROM %s.schema_migrations",
		db.Config.Schema,
	))
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
