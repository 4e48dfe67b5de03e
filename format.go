package main

import (
	"fmt"
	"html"
	"net/url"
	"strconv"
	"time"
)

// formatRadius renders a radius in km without trailing zeros ("2.5 km")
func formatRadius(km float64) string {
	return strconv.FormatFloat(km, 'f', -1, 64) + " km"
}

// formatPrice renders a fuel price with its unit ("1.700 €/L")
func formatPrice(price float64, unit string) string {
	return fmt.Sprintf("%.3f €/%s", price, unit)
}

// directionsURL builds a Google Maps navigation link to a station
func directionsURL(lat, lng float64) string {
	dest := fmt.Sprintf("%.6f,%.6f", lat, lng)
	return "https://www.google.com/maps/dir/?api=1&destination=" + url.QueryEscape(dest)
}

// avgComparisonNote renders the percentage-vs-average annotation.
// Positive pct means cheaper than average, negative more expensive.
func avgComparisonNote(lang string, pct int) string {
	switch {
	case pct > 0:
		return t(lang, "note_cheaper", pct)
	case pct < 0:
		return t(lang, "note_more_expensive", -pct)
	default:
		return t(lang, "note_equal")
	}
}

var insertDateLayouts = []string{
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// formatInsertDate renders the station price timestamp, falling back to the
// raw value when the upstream format is unexpected
func formatInsertDate(raw string) string {
	for _, layout := range insertDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format("02/01/2006 15:04")
		}
	}
	return raw
}

// esc escapes user- and API-provided text for HTML messages
func esc(s string) string {
	return html.EscapeString(s)
}
