package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogFuelLookups(t *testing.T) {
	c := NewCatalog()

	fuel, ok := c.FuelByName("Gasolio")
	require.True(t, ok)
	assert.Equal(t, "2", fuel.Code)
	assert.Equal(t, 2, fuel.ID)
	assert.Equal(t, "L", fuel.Unit)

	fuel, ok = c.FuelByCode("3")
	require.True(t, ok)
	assert.Equal(t, "Metano", fuel.Name)
	assert.Equal(t, "kg", fuel.Unit)

	_, ok = c.FuelByName("Kerosene")
	assert.False(t, ok)
}

func TestCatalogServiceLookups(t *testing.T) {
	c := NewCatalog()

	s, ok := c.ServiceByName("Self")
	require.True(t, ok)
	assert.Equal(t, "1", s.Code)

	s, ok = c.ServiceByCode("x")
	require.True(t, ok)
	assert.Equal(t, "Indifferente", s.Name)

	_, ok = c.ServiceByCode("9")
	assert.False(t, ok)
}

func TestCatalogLanguageLookups(t *testing.T) {
	c := NewCatalog()

	l, ok := c.LanguageByCode("en")
	require.True(t, ok)
	assert.Equal(t, "English", l.Name)

	l, ok = c.LanguageByName("Italiano")
	require.True(t, ok)
	assert.Equal(t, "it", l.Code)

	_, ok = c.LanguageByCode("de")
	assert.False(t, ok)
}

func TestCatalogSelector(t *testing.T) {
	c := NewCatalog()

	assert.Equal(t, "1-1", c.Selector("1", "1"))
	assert.Equal(t, "2-0", c.Selector("2", "0"))
	assert.Equal(t, "4-x", c.Selector("4", "x"))
	// Missing service defaults to the wildcard
	assert.Equal(t, "3-x", c.Selector("3", ""))
}
