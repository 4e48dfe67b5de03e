package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

type fakeGeocodeStore struct {
	cache      map[string][2]float64
	count      int
	storeCalls int
	lastQuery  string
	lastMonth  string
	storeErr   error
	countErr   error
	lookupErr  error
}

func newFakeGeocodeStore() *fakeGeocodeStore {
	return &fakeGeocodeStore{cache: make(map[string][2]float64)}
}

func (s *fakeGeocodeStore) LookupGeocode(_ context.Context, query string) (float64, float64, bool, error) {
	if s.lookupErr != nil {
		return 0, 0, false, s.lookupErr
	}
	coords, found := s.cache[query]
	return coords[0], coords[1], found, nil
}

func (s *fakeGeocodeStore) StoreGeocode(_ context.Context, query string, lat, lng float64, month string) error {
	if s.storeErr != nil {
		return s.storeErr
	}
	s.storeCalls++
	s.lastQuery = query
	s.lastMonth = month
	s.cache[query] = [2]float64{lat, lng}
	s.count++
	return nil
}

func (s *fakeGeocodeStore) GeocodeCallCount(_ context.Context, _ string) (int, error) {
	return s.count, s.countErr
}

type fakeGeocodeClient struct {
	results []maps.GeocodingResult
	err     error
	calls   int
}

func (c *fakeGeocodeClient) Geocode(_ context.Context, _ *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	c.calls++
	return c.results, c.err
}

func geocodingResult(lat, lng float64, locationType string, partial bool, componentTypes ...string) maps.GeocodingResult {
	r := maps.GeocodingResult{PartialMatch: partial}
	r.Geometry.Location = maps.LatLng{Lat: lat, Lng: lng}
	r.Geometry.LocationType = locationType
	for _, ct := range componentTypes {
		r.AddressComponents = append(r.AddressComponents, maps.AddressComponent{Types: []string{ct}})
	}
	return r
}

func newTestGeocoder(client geocodeClient, store GeocodeStore, hardCap int) *Geocoder {
	return &Geocoder{
		client:  client,
		store:   store,
		hardCap: hardCap,
		log:     zap.NewNop().Sugar(),
		now:     func() time.Time { return time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC) },
	}
}

func TestResolveCacheHitSkipsQuota(t *testing.T) {
	store := newFakeGeocodeStore()
	store.cache["via roma 1, milano"] = [2]float64{45.4642, 9.19}
	client := &fakeGeocodeClient{}
	g := newTestGeocoder(client, store, 10)

	lat, lng, ok := g.Resolve(context.Background(), "Via Roma 1, Milano")

	require.True(t, ok)
	assert.InDelta(t, 45.4642, lat, 1e-9)
	assert.InDelta(t, 9.19, lng, 1e-9)
	assert.Zero(t, client.calls, "cache hits must not reach the geocoding API")
	assert.Zero(t, store.storeCalls)
}

func TestResolveCachesSuccessfulCall(t *testing.T) {
	store := newFakeGeocodeStore()
	client := &fakeGeocodeClient{results: []maps.GeocodingResult{
		geocodingResult(45.07, 7.68, "ROOFTOP", false, "locality"),
	}}
	g := newTestGeocoder(client, store, 10)

	lat, lng, ok := g.Resolve(context.Background(), "Piazza Castello, Torino")
	require.True(t, ok)
	assert.InDelta(t, 45.07, lat, 1e-9)
	assert.InDelta(t, 7.68, lng, 1e-9)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 1, store.storeCalls)
	assert.Equal(t, "piazza castello, torino", store.lastQuery)
	assert.Equal(t, "2026-08", store.lastMonth)

	// Second call, different spacing and case, comes from the cache
	_, _, ok = g.Resolve(context.Background(), "  piazza   CASTELLO,   torino ")
	require.True(t, ok)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 1, store.storeCalls)
}

func TestResolveHardCapBlocksOutboundCall(t *testing.T) {
	store := newFakeGeocodeStore()
	store.count = 5
	client := &fakeGeocodeClient{results: []maps.GeocodingResult{
		geocodingResult(45.0, 9.0, "ROOFTOP", false, "locality"),
	}}
	g := newTestGeocoder(client, store, 5)

	_, _, ok := g.Resolve(context.Background(), "Via Garibaldi, Genova")

	assert.False(t, ok)
	assert.Zero(t, client.calls, "no geocoding call is attempted at the cap")
	assert.Zero(t, store.storeCalls)
}

func TestResolveQuotaCheckErrorFailsClosed(t *testing.T) {
	store := newFakeGeocodeStore()
	store.countErr = errors.New("connection refused")
	client := &fakeGeocodeClient{}
	g := newTestGeocoder(client, store, 10)

	_, _, ok := g.Resolve(context.Background(), "Via Dante, Napoli")

	assert.False(t, ok)
	assert.Zero(t, client.calls)
}

func TestResolvePrefersFullMatch(t *testing.T) {
	store := newFakeGeocodeStore()
	client := &fakeGeocodeClient{results: []maps.GeocodingResult{
		geocodingResult(41.0, 12.0, "ROOFTOP", true, "locality"),
		geocodingResult(41.9, 12.49, "ROOFTOP", false, "locality"),
	}}
	g := newTestGeocoder(client, store, 10)

	lat, lng, ok := g.Resolve(context.Background(), "Via del Corso, Roma")

	require.True(t, ok)
	assert.InDelta(t, 41.9, lat, 1e-9)
	assert.InDelta(t, 12.49, lng, 1e-9)
}

func TestResolveFallsBackToPartialMatch(t *testing.T) {
	store := newFakeGeocodeStore()
	client := &fakeGeocodeClient{results: []maps.GeocodingResult{
		geocodingResult(44.49, 11.34, "RANGE_INTERPOLATED", true, "administrative_area_level_3"),
	}}
	g := newTestGeocoder(client, store, 10)

	lat, lng, ok := g.Resolve(context.Background(), "Via Zamboni, Bologna")

	require.True(t, ok)
	assert.InDelta(t, 44.49, lat, 1e-9)
	assert.InDelta(t, 11.34, lng, 1e-9)
}

func TestResolveRejectsImpreciseGeometry(t *testing.T) {
	store := newFakeGeocodeStore()
	client := &fakeGeocodeClient{results: []maps.GeocodingResult{
		geocodingResult(42.0, 12.0, "APPROXIMATE", false, "locality"),
	}}
	g := newTestGeocoder(client, store, 10)

	_, _, ok := g.Resolve(context.Background(), "Italia")

	assert.False(t, ok)
	assert.Zero(t, store.storeCalls, "rejected candidates are not cached")
}

func TestResolveRejectsMissingLocality(t *testing.T) {
	store := newFakeGeocodeStore()
	client := &fakeGeocodeClient{results: []maps.GeocodingResult{
		geocodingResult(42.0, 12.0, "ROOFTOP", false, "route", "country"),
	}}
	g := newTestGeocoder(client, store, 10)

	_, _, ok := g.Resolve(context.Background(), "Strada Statale 1")

	assert.False(t, ok)
	assert.Zero(t, store.storeCalls)
}

func TestResolveNoResults(t *testing.T) {
	store := newFakeGeocodeStore()
	client := &fakeGeocodeClient{}
	g := newTestGeocoder(client, store, 10)

	_, _, ok := g.Resolve(context.Background(), "xyzzy")

	assert.False(t, ok)
	assert.Equal(t, 1, client.calls)
	assert.Zero(t, store.storeCalls)
}

func TestResolveClientError(t *testing.T) {
	store := newFakeGeocodeStore()
	client := &fakeGeocodeClient{err: errors.New("OVER_QUERY_LIMIT")}
	g := newTestGeocoder(client, store, 10)

	_, _, ok := g.Resolve(context.Background(), "Via Etnea, Catania")

	assert.False(t, ok)
	assert.Zero(t, store.storeCalls)
}

func TestResolveEmptyAddress(t *testing.T) {
	store := newFakeGeocodeStore()
	client := &fakeGeocodeClient{}
	g := newTestGeocoder(client, store, 10)

	_, _, ok := g.Resolve(context.Background(), "   ")

	assert.False(t, ok)
	assert.Zero(t, client.calls)
}

func TestResolveStoreFailureStillReturnsCoordinates(t *testing.T) {
	store := newFakeGeocodeStore()
	store.storeErr = errors.New("deadlock detected")
	client := &fakeGeocodeClient{results: []maps.GeocodingResult{
		geocodingResult(45.44, 12.33, "GEOMETRIC_CENTER", false, "locality"),
	}}
	g := newTestGeocoder(client, store, 10)

	lat, lng, ok := g.Resolve(context.Background(), "Piazza San Marco, Venezia")

	require.True(t, ok)
	assert.InDelta(t, 45.44, lat, 1e-9)
	assert.InDelta(t, 12.33, lng, 1e-9)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "via roma 1, milano", normalizeQuery("  Via   Roma 1,  MILANO "))
	assert.Equal(t, "", normalizeQuery("   "))
}
