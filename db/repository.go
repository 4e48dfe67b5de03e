package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// UserProfile represents a Telegram user's stored preferences
type UserProfile struct {
	UserID       int64     `json:"user_id"`
	FuelCode     string    `json:"fuel_code"`
	ServiceCode  string    `json:"service_code"`
	LanguageCode string    `json:"language_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SearchLogEntry represents one ranking pass, successful or not.
// PriceAvg and PriceMin are nil when no stations matched.
type SearchLogEntry struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Timestamp   time.Time `json:"ts"`
	FuelCode    string    `json:"fuel_code"`
	RadiusKm    float64   `json:"radius_km"`
	NumStations int       `json:"num_stations"`
	PriceAvg    *float64  `json:"price_avg"`
	PriceMin    *float64  `json:"price_min"`
}

// FavoriteLocation is a named location saved by a user
type FavoriteLocation struct {
	UserID int64   `json:"user_id"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// FuelStats aggregates a user's non-deleted searches for one fuel
type FuelStats struct {
	FuelCode       string  `json:"fuel_code"`
	NumSearches    int     `json:"num_searches"`
	NumStations    int     `json:"num_stations"`
	AvgSavePerUnit float64 `json:"avg_save_per_unit"`
	AvgSavePct     float64 `json:"avg_save_pct"`
}

// UserSaving is one user's aggregate saving over a time window
type UserSaving struct {
	UserID int64   `json:"user_id"`
	Saving float64 `json:"saving"`
}

// UpsertUser creates or updates a user's preferences
func (db *DB) UpsertUser(ctx context.Context, userID int64, fuelCode, serviceCode, languageCode string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.users (user_id, fuel_code, service_code, language_code, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			fuel_code = EXCLUDED.fuel_code,
			service_code = EXCLUDED.service_code,
			language_code = EXCLUDED.language_code,
			updated_at = CURRENT_TIMESTAMP
	`, db.Config.Schema)

	_, err := db.Pool.Exec(ctx, query, userID, fuelCode, serviceCode, languageCode)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user's profile, or nil if the user never completed /start
func (db *DB) GetUser(ctx context.Context, userID int64) (*UserProfile, error) {
	query := fmt.Sprintf(`
		SELECT user_id, fuel_code, service_code, language_code, created_at, updated_at
		FROM %s.users WHERE user_id = $1
	`, db.Config.Schema)

	var user UserProfile
	err := db.Pool.QueryRow(ctx, query, userID).Scan(
		&user.UserID, &user.FuelCode, &user.ServiceCode, &user.LanguageCode,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SaveSearch appends a search log entry. PriceAvg and PriceMin may be nil
// when the ranking pass found no stations.
func (db *DB) SaveSearch(ctx context.Context, entry SearchLogEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.searches (user_id, fuel_code, radius_km, num_stations, price_avg, price_min)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, db.Config.Schema)

	_, err := db.Pool.Exec(ctx, query, entry.UserID, entry.FuelCode, entry.RadiusKm,
		entry.NumStations, entry.PriceAvg, entry.PriceMin)
	if err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}
	return nil
}

// SoftDeleteSearches marks all of a user's searches as deleted
func (db *DB) SoftDeleteSearches(ctx context.Context, userID int64) error {
	query := fmt.Sprintf(`
		UPDATE %s.searches SET deleted_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND deleted_at IS NULL
	`, db.Config.Schema)

	_, err := db.Pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to reset searches: %w", err)
	}
	return nil
}

// GetUserFuelStats aggregates a user's non-deleted searches per fuel.
// Only searches that produced prices contribute to the averages.
func (db *DB) GetUserFuelStats(ctx context.Context, userID int64) ([]FuelStats, error) {
	query := fmt.Sprintf(`
		SELECT fuel_code,
			   COUNT(*) AS num_searches,
			   COALESCE(SUM(num_stations), 0) AS num_stations,
			   COALESCE(AVG(price_avg - price_min), 0) AS avg_save_per_unit,
			   COALESCE(AVG((price_avg - price_min) / NULLIF(price_avg, 0)), 0) AS avg_save_pct
		FROM %s.searches
		WHERE user_id = $1 AND deleted_at IS NULL
			AND price_avg IS NOT NULL AND price_min IS NOT NULL
		GROUP BY fuel_code
		ORDER BY fuel_code
	`, db.Config.Schema)

	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fuel stats: %w", err)
	}
	defer rows.Close()

	var stats []FuelStats
	for rows.Next() {
		var s FuelStats
		if err := rows.Scan(&s.FuelCode, &s.NumSearches, &s.NumStations, &s.AvgSavePerUnit, &s.AvgSavePct); err != nil {
			return nil, fmt.Errorf("failed to scan fuel stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// MonthlySavings returns, per user, the sum of (price_avg - price_min)
// multiplied by litersPerSearch over the given window. Users with a
// non-positive saving are omitted.
func (db *DB) MonthlySavings(ctx context.Context, from, to time.Time, litersPerSearch float64) ([]UserSaving, error) {
	query := fmt.Sprintf(`
		SELECT user_id, SUM((price_avg - price_min) * $3) AS saving
		FROM %s.searches
		WHERE ts >= $1 AND ts < $2 AND deleted_at IS NULL
			AND price_avg IS NOT NULL AND price_min IS NOT NULL
		GROUP BY user_id
		HAVING SUM((price_avg - price_min) * $3) > 0
		ORDER BY user_id
	`, db.Config.Schema)

	rows, err := db.Pool.Query(ctx, query, from, to, litersPerSearch)
	if err != nil {
		return nil, fmt.Errorf("failed to compute monthly savings: %w", err)
	}
	defer rows.Close()

	var savings []UserSaving
	for rows.Next() {
		var s UserSaving
		if err := rows.Scan(&s.UserID, &s.Saving); err != nil {
			return nil, fmt.Errorf("failed to scan saving: %w", err)
		}
		savings = append(savings, s)
	}
	return savings, nil
}

// LookupGeocode returns cached coordinates for a query, if present
func (db *DB) LookupGeocode(ctx context.Context, query string) (lat, lng float64, found bool, err error) {
	q := fmt.Sprintf(`
		SELECT lat, lng FROM %s.geocache WHERE query = $1
	`, db.Config.Schema)

	err = db.Pool.QueryRow(ctx, q, query).Scan(&lat, &lng)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to lookup geocache: %w", err)
	}
	return lat, lng, true, nil
}

// StoreGeocode upserts a cache entry and increments the month's call counter
// in a single transaction, so a validated resolution either counts fully or
// not at all.
func (db *DB) StoreGeocode(ctx context.Context, query string, lat, lng float64, month string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin geocode tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cacheQuery := fmt.Sprintf(`
		INSERT INTO %s.geocache (query, lat, lng)
		VALUES ($1, $2, $3)
		ON CONFLICT (query) DO UPDATE SET
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			created_at = CURRENT_TIMESTAMP
	`, db.Config.Schema)

	if _, err := tx.Exec(ctx, cacheQuery, query, lat, lng); err != nil {
		return fmt.Errorf("failed to upsert geocache: %w", err)
	}

	statsQuery := fmt.Sprintf(`
		INSERT INTO %s.geostats (month, cnt) VALUES ($1, 1)
		ON CONFLICT (month) DO UPDATE SET cnt = %s.geostats.cnt + 1
	`, db.Config.Schema, db.Config.Schema)

	if _, err := tx.Exec(ctx, statsQuery, month); err != nil {
		return fmt.Errorf("failed to increment geostats: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit geocode tx: %w", err)
	}
	return nil
}

// GeocodeCallCount returns the number of outbound geocoding calls recorded
// for the given month key (format "2006-01")
func (db *DB) GeocodeCallCount(ctx context.Context, month string) (int, error) {
	query := fmt.Sprintf(`
		SELECT cnt FROM %s.geostats WHERE month = $1
	`, db.Config.Schema)

	var count int
	err := db.Pool.QueryRow(ctx, query, month).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get geocode call count: %w", err)
	}
	return count, nil
}

// DeleteStaleGeocache removes cache entries older than the retention window
func (db *DB) DeleteStaleGeocache(ctx context.Context, retention time.Duration) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s.geocache WHERE created_at < $1
	`, db.Config.Schema)

	result, err := db.Pool.Exec(ctx, query, time.Now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup geocache: %w", err)
	}
	return result.RowsAffected(), nil
}

// AddFavorite saves or replaces a named location for a user
func (db *DB) AddFavorite(ctx context.Context, userID int64, name string, lat, lng float64) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.favorites (user_id, name, lat, lng)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name) DO UPDATE SET
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng
	`, db.Config.Schema)

	_, err := db.Pool.Exec(ctx, query, userID, name, lat, lng)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// ListFavorites retrieves a user's saved locations
func (db *DB) ListFavorites(ctx context.Context, userID int64) ([]FavoriteLocation, error) {
	query := fmt.Sprintf(`
		SELECT user_id, name, lat, lng
		FROM %s.favorites
		WHERE user_id = $1
		ORDER BY created_at
	`, db.Config.Schema)

	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []FavoriteLocation
	for rows.Next() {
		var f FavoriteLocation
		if err := rows.Scan(&f.UserID, &f.Name, &f.Lat, &f.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, nil
}

// DeleteFavorite removes a saved location by name
func (db *DB) DeleteFavorite(ctx context.Context, userID int64, name string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s.favorites WHERE user_id = $1 AND name = $2
	`, db.Config.Schema)

	_, err := db.Pool.Exec(ctx, query, userID, name)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}
