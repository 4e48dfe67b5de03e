package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSearchDecodesResults(t *testing.T) {
	var got searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		// Real endpoint answers with text/plain; the client must not care
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`{"results":[
			{"id":100,"brand":"Acme","name":"Acme Milano","address":"Via Roma 1",
			 "location":{"lat":45.46,"lng":9.19},
			 "fuels":[{"fuelId":1,"price":1.699,"isSelf":true}],
			 "insertDate":"2026-08-14 06:30:00"}
		]}`))
	}))
	defer server.Close()

	c := NewStationClient(server.URL, server.URL+"/detail/{id}", zap.NewNop().Sugar())

	stations, ok := c.Search(context.Background(), 45.4642, 9.19, 2.5, "1-1")

	require.True(t, ok)
	require.Len(t, stations, 1)
	assert.Equal(t, int64(100), stations[0].ID)
	assert.Equal(t, "Acme", stations[0].Brand)
	assert.InDelta(t, 1.699, stations[0].Fuels[0].Price, 1e-9)
	assert.True(t, stations[0].Fuels[0].IsSelf)

	require.Len(t, got.Points, 1)
	assert.InDelta(t, 45.4642, got.Points[0].Lat, 1e-9)
	assert.InDelta(t, 2.5, got.Radius, 1e-9)
	assert.Equal(t, "1-1", got.FuelType)
	assert.Equal(t, "asc", got.PriceOrder)
}

func TestSearchEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	c := NewStationClient(server.URL, server.URL+"/detail/{id}", zap.NewNop().Sugar())

	stations, ok := c.Search(context.Background(), 45.0, 9.0, 7.5, "2-x")

	assert.True(t, ok, "an empty result set is a successful call")
	assert.Empty(t, stations)
}

func TestSearchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewStationClient(server.URL, server.URL+"/detail/{id}", zap.NewNop().Sugar())

	stations, ok := c.Search(context.Background(), 45.0, 9.0, 2.5, "1-x")

	assert.False(t, ok)
	assert.Nil(t, stations)
}

func TestSearchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	c := NewStationClient(server.URL, server.URL+"/detail/{id}", zap.NewNop().Sugar())

	_, ok := c.Search(context.Background(), 45.0, 9.0, 2.5, "1-x")

	assert.False(t, ok)
}

func TestFetchAddressSubstitutesID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/detail/12345", r.URL.Path)
		_, _ = w.Write([]byte(`{"address":"Corso Buenos Aires 33, Milano"}`))
	}))
	defer server.Close()

	c := NewStationClient(server.URL, server.URL+"/detail/{id}", zap.NewNop().Sugar())

	address, ok := c.FetchAddress(context.Background(), 12345)

	require.True(t, ok)
	assert.Equal(t, "Corso Buenos Aires 33, Milano", address)
}

func TestFetchAddressEmptyField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"address":""}`))
	}))
	defer server.Close()

	c := NewStationClient(server.URL, server.URL+"/detail/{id}", zap.NewNop().Sugar())

	_, ok := c.FetchAddress(context.Background(), 7)

	assert.False(t, ok)
}

func TestFetchAddressNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewStationClient(server.URL, server.URL+"/detail/{id}", zap.NewNop().Sugar())

	_, ok := c.FetchAddress(context.Background(), 7)

	assert.False(t, ok)
}
