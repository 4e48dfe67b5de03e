// Package ranking selects the cheapest stations for one fuel inside a single
// search radius and annotates them against the zone average price.
package ranking

import (
	"math"
	"sort"

	"trovabenzina-bot/api"
)

// TopN is the number of ranked stations rendered to the user
const TopN = 3

// Entry is one ranked station with its chosen fuel entry.
// Pct is the rounded percentage below the zone average: zero means in line
// with the average, positive means cheaper by that many percent.
type Entry struct {
	Station api.Station
	Price   float64
	IsSelf  bool
	Pct     int
}

// Result is the outcome of one ranking pass. When Found is false no station
// survived the filters; NumStations and, when it was computed, Average are
// still populated for search logging.
type Result struct {
	Found       bool
	Average     float64
	Entries     []Entry
	NumStations int
}

// cheaper orders fuel entries by price, preferring self-service on exact ties
func cheaper(a, b api.FuelPrice) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.IsSelf && !b.IsSelf
}

// Rank filters stations to those offering fuelID, resolves the service type
// from the global minimum-price entry (self-service wins exact ties), keeps
// each station's cheapest matching entry of that type, computes the zone
// average, drops stations above it, and returns the cheapest TopN in stable
// ascending price order.
func Rank(stations []api.Station, fuelID int) Result {
	type candidate struct {
		station api.Station
		fuels   []api.FuelPrice
		chosen  api.FuelPrice
	}

	var candidates []candidate
	for _, st := range stations {
		var matching []api.FuelPrice
		for _, f := range st.Fuels {
			if f.FuelID == fuelID {
				matching = append(matching, f)
			}
		}
		if len(matching) > 0 {
			candidates = append(candidates, candidate{station: st, fuels: matching})
		}
	}

	if len(candidates) == 0 {
		return Result{NumStations: len(stations)}
	}

	// The service type of the single cheapest entry across all stations
	// becomes the target for this pass
	target := candidates[0].fuels[0]
	for _, c := range candidates {
		for _, f := range c.fuels {
			if cheaper(f, target) {
				target = f
			}
		}
	}

	var kept []candidate
	for _, c := range candidates {
		c.chosen = c.fuels[0]
		for _, f := range c.fuels[1:] {
			if cheaper(f, c.chosen) {
				c.chosen = f
			}
		}
		if c.chosen.IsSelf == target.IsSelf {
			kept = append(kept, c)
		}
	}

	if len(kept) == 0 {
		return Result{NumStations: 0}
	}

	var sum float64
	for _, c := range kept {
		sum += c.chosen.Price
	}
	avg := sum / float64(len(kept))

	var belowAvg []candidate
	for _, c := range kept {
		if c.chosen.Price <= avg {
			belowAvg = append(belowAvg, c)
		}
	}

	if len(belowAvg) == 0 {
		// The average was computed and is still worth logging
		return Result{Average: avg, NumStations: len(kept)}
	}

	sort.SliceStable(belowAvg, func(i, j int) bool {
		return belowAvg[i].chosen.Price < belowAvg[j].chosen.Price
	})

	n := len(belowAvg)
	if n > TopN {
		n = TopN
	}

	entries := make([]Entry, 0, n)
	for _, c := range belowAvg[:n] {
		entries = append(entries, Entry{
			Station: c.station,
			Price:   c.chosen.Price,
			IsSelf:  c.chosen.IsSelf,
			Pct:     pctBelowAverage(c.chosen.Price, avg),
		})
	}

	return Result{
		Found:       true,
		Average:     avg,
		Entries:     entries,
		NumStations: len(kept),
	}
}

// pctBelowAverage rounds (avg - price) / avg to whole percent
func pctBelowAverage(price, avg float64) int {
	if avg == 0 {
		return 0
	}
	return int(math.Round((avg - price) / avg * 100))
}
