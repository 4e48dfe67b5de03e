package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRadius(t *testing.T) {
	assert.Equal(t, "2.5 km", formatRadius(2.5))
	assert.Equal(t, "7.5 km", formatRadius(7.5))
	assert.Equal(t, "5 km", formatRadius(5))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1.699 €/L", formatPrice(1.699, "L"))
	assert.Equal(t, "1.700 €/kg", formatPrice(1.7, "kg"))
}

func TestDirectionsURL(t *testing.T) {
	got := directionsURL(45.4642, 9.19)
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=45.464200%2C9.190000", got)
}

func TestAvgComparisonNote(t *testing.T) {
	assert.Equal(t, "3% sotto la media", avgComparisonNote("it", 3))
	assert.Equal(t, "2% sopra la media", avgComparisonNote("it", -2))
	assert.Equal(t, "in linea con la media", avgComparisonNote("it", 0))
	assert.Equal(t, "5% below average", avgComparisonNote("en", 5))
}

func TestFormatInsertDate(t *testing.T) {
	assert.Equal(t, "14/08/2026 06:30", formatInsertDate("2026-08-14 06:30:00"))
	assert.Equal(t, "14/08/2026 06:30", formatInsertDate("2026-08-14 06:30:00+02"))
	assert.Equal(t, "14/08/2026 06:30", formatInsertDate("2026-08-14T06:30:00"))
	// Unexpected formats pass through untouched
	assert.Equal(t, "yesterday", formatInsertDate("yesterday"))
}

func TestEsc(t *testing.T) {
	assert.Equal(t, "Q8 &amp; C. &lt;Nord&gt;", esc("Q8 & C. <Nord>"))
}
