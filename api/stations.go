package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// StationClient queries the public fuel-price endpoints: a POST search by
// point and radius, and a GET registry lookup for station details.
type StationClient struct {
	searchURL string
	detailURL string // contains an {id} placeholder
	client    *http.Client
	log       *zap.SugaredLogger
}

// NewStationClient creates a client for the price-search and detail endpoints
func NewStationClient(searchURL, detailURL string, log *zap.SugaredLogger) *StationClient {
	return &StationClient{
		searchURL: searchURL,
		detailURL: detailURL,
		client:    &http.Client{Timeout: requestTimeout},
		log:       log,
	}
}

// Search queries stations within radiusKm of a point for the given fuel-type
// selector ("<fuelCode>-<serviceCode>", service "x" for any), requesting
// ascending price order. Returns the decoded results (possibly empty) and
// true, or nil and false on any failure. A single timeout-bounded call, no
// retries.
func (c *StationClient) Search(ctx context.Context, lat, lng, radiusKm float64, fuelType string) ([]Station, bool) {
	payload := searchRequest{
		Points:     []LatLng{{Lat: lat, Lng: lng}},
		Radius:     radiusKm,
		FuelType:   fuelType,
		PriceOrder: "asc",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.log.Warnw("failed to encode station search payload", "error", err)
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(body))
	if err != nil {
		c.log.Warnw("failed to create station search request", "error", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warnw("station search request failed", "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warnw("station search returned non-OK status", "status", resp.StatusCode)
		return nil, false
	}

	// The endpoint may reply with text/plain; decode the body regardless.
	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.log.Warnw("failed to decode station search response", "error", err)
		return nil, false
	}

	return decoded.Results, true
}

// FetchAddress fetches a station's full address from the registry. Used only
// when a search result omits the address field. Returns "" and false on any
// failure; errors are logged, never propagated.
func (c *StationClient) FetchAddress(ctx context.Context, stationID int64) (string, bool) {
	url := strings.Replace(c.detailURL, "{id}", strconv.FormatInt(stationID, 10), 1)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.Warnw("failed to create station detail request", "station_id", stationID, "error", err)
		return "", false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warnw("station detail request failed", "station_id", stationID, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warnw("station detail returned non-OK status", "station_id", stationID, "status", resp.StatusCode)
		return "", false
	}

	var decoded detailResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.log.Warnw("failed to decode station detail response", "station_id", stationID, "error", err)
		return "", false
	}

	if decoded.Address == "" {
		return "", false
	}
	return decoded.Address, true
}
