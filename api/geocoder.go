package api

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// Geometry precision levels accepted as good enough for a station search
var acceptedLocationTypes = map[string]bool{
	"ROOFTOP":            true,
	"RANGE_INTERPOLATED": true,
	"GEOMETRIC_CENTER":   true,
}

// Address component types that anchor a candidate to a real place
var requiredComponents = []string{"locality", "administrative_area_level_3"}

// GeocodeStore is the persistence consulted before and after an outbound
// geocoding call: a query cache plus a per-month call counter.
type GeocodeStore interface {
	LookupGeocode(ctx context.Context, query string) (lat, lng float64, found bool, err error)
	StoreGeocode(ctx context.Context, query string, lat, lng float64, month string) error
	GeocodeCallCount(ctx context.Context, month string) (int, error)
}

// geocodeClient is satisfied by *maps.Client
type geocodeClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// Geocoder resolves free-text addresses to coordinates, reading through the
// cache and enforcing a monthly hard cap on outbound calls.
type Geocoder struct {
	client  geocodeClient
	store   GeocodeStore
	hardCap int
	log     *zap.SugaredLogger
	now     func() time.Time
}

// NewGeocoder creates a Geocoder backed by a Google Maps client
func NewGeocoder(client *maps.Client, store GeocodeStore, hardCap int, log *zap.SugaredLogger) *Geocoder {
	return &Geocoder{
		client:  client,
		store:   store,
		hardCap: hardCap,
		log:     log,
		now:     time.Now,
	}
}

// normalizeQuery collapses whitespace and lowercases the address so that
// trivially different spellings share one cache entry
func normalizeQuery(addr string) string {
	return strings.ToLower(strings.Join(strings.Fields(addr), " "))
}

// Resolve maps an address to coordinates. A cache hit returns immediately
// without consuming quota; at the hard cap no outbound call is attempted.
// A successful, validated resolution commits the cache entry and the quota
// increment together. Every failure path returns ok == false; nothing is
// raised to the caller.
func (g *Geocoder) Resolve(ctx context.Context, addr string) (lat, lng float64, ok bool) {
	query := normalizeQuery(addr)
	if query == "" {
		return 0, 0, false
	}

	lat, lng, found, err := g.store.LookupGeocode(ctx, query)
	if err != nil {
		g.log.Warnw("geocache lookup failed", "address", addr, "error", err)
	} else if found {
		return lat, lng, true
	}

	month := g.now().Format("2006-01")
	count, err := g.store.GeocodeCallCount(ctx, month)
	if err != nil {
		g.log.Warnw("geocode quota check failed", "address", addr, "error", err)
		return 0, 0, false
	}
	if count >= g.hardCap {
		g.log.Infow("geocoding hard cap reached", "month", month, "count", count, "cap", g.hardCap)
		return 0, 0, false
	}

	callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	results, err := g.client.Geocode(callCtx, &maps.GeocodingRequest{
		Address:    addr,
		Components: map[maps.Component]string{maps.ComponentCountry: "IT"},
		Language:   "it",
	})
	if err != nil {
		g.log.Warnw("geocoding request failed", "address", addr, "error", err)
		return 0, 0, false
	}
	if len(results) == 0 {
		return 0, 0, false
	}

	best := pickCandidate(results)
	if !validCandidate(best) {
		g.log.Debugw("geocode candidate rejected", "address", addr,
			"location_type", best.Geometry.LocationType)
		return 0, 0, false
	}

	lat = best.Geometry.Location.Lat
	lng = best.Geometry.Location.Lng

	if err := g.store.StoreGeocode(ctx, query, lat, lng, month); err != nil {
		// The resolution is still usable even if caching it failed
		g.log.Warnw("failed to store geocode result", "address", addr, "error", err)
	}

	return lat, lng, true
}

// pickCandidate prefers the first result without a partial-match flag,
// falling back to the first result unconditionally
func pickCandidate(results []maps.GeocodingResult) maps.GeocodingResult {
	for _, r := range results {
		if !r.PartialMatch {
			return r
		}
	}
	return results[0]
}

// validCandidate requires a recognized locality component and an accepted
// geometry precision
func validCandidate(r maps.GeocodingResult) bool {
	if !acceptedLocationTypes[r.Geometry.LocationType] {
		return false
	}
	for _, comp := range r.AddressComponents {
		for _, t := range comp.Types {
			for _, want := range requiredComponents {
				if t == want {
					return true
				}
			}
		}
	}
	return false
}
