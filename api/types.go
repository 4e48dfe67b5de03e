package api

// LatLng is a WGS84 coordinate pair
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FuelPrice is one price entry offered by a station
type FuelPrice struct {
	FuelID int     `json:"fuelId"`
	Name   string  `json:"name,omitempty"`
	Price  float64 `json:"price"`
	IsSelf bool    `json:"isSelf"`
}

// Station represents a fuel station as returned by the price-search API.
// Address may be empty; the detail endpoint backfills it.
type Station struct {
	ID         int64       `json:"id"`
	Brand      string      `json:"brand"`
	Name       string      `json:"name"`
	Address    string      `json:"address"`
	Location   LatLng      `json:"location"`
	Fuels      []FuelPrice `json:"fuels"`
	InsertDate string      `json:"insertDate,omitempty"`
}

type searchRequest struct {
	Points     []LatLng `json:"points"`
	Radius     float64  `json:"radius"`
	FuelType   string   `json:"fuelType"`
	PriceOrder string   `json:"priceOrder"`
}

type searchResponse struct {
	Results []Station `json:"results"`
}

type detailResponse struct {
	Address string `json:"address"`
}
