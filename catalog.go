package main

import "fmt"

// Fuel describes one fuel type offered by the price-search API.
// AvgConsumptionPer100Km feeds the annual-saving estimate in /statistics.
type Fuel struct {
	Code                   string
	ID                     int
	Name                   string
	Unit                   string // "L" or "kg"
	AvgConsumptionPer100Km float64
}

// Service describes a service-type selector value
type Service struct {
	Code string // "1" self, "0" served, "x" either
	Name string
}

// Language is a supported interface language
type Language struct {
	Code string
	Name string
}

// Catalog is the process-wide read-only lookup table for fuels, service
// types and languages. Built once at startup and passed by reference into
// the components that need it.
type Catalog struct {
	fuels     []Fuel
	services  []Service
	languages []Language

	fuelsByName    map[string]Fuel
	fuelsByCode    map[string]Fuel
	servicesByName map[string]Service
	servicesByCode map[string]Service
	languageByCode map[string]Language
}

// NewCatalog builds the default lookup tables
func NewCatalog() *Catalog {
	c := &Catalog{
		fuels: []Fuel{
			{Code: "1", ID: 1, Name: "Benzina", Unit: "L", AvgConsumptionPer100Km: 7.0},
			{Code: "2", ID: 2, Name: "Gasolio", Unit: "L", AvgConsumptionPer100Km: 6.0},
			{Code: "3", ID: 3, Name: "Metano", Unit: "kg", AvgConsumptionPer100Km: 4.5},
			{Code: "4", ID: 4, Name: "GPL", Unit: "L", AvgConsumptionPer100Km: 9.0},
		},
		services: []Service{
			{Code: "1", Name: "Self"},
			{Code: "0", Name: "Servito"},
			{Code: "x", Name: "Indifferente"},
		},
		languages: []Language{
			{Code: "it", Name: "Italiano"},
			{Code: "en", Name: "English"},
		},
	}

	c.fuelsByName = make(map[string]Fuel, len(c.fuels))
	c.fuelsByCode = make(map[string]Fuel, len(c.fuels))
	for _, f := range c.fuels {
		c.fuelsByName[f.Name] = f
		c.fuelsByCode[f.Code] = f
	}

	c.servicesByName = make(map[string]Service, len(c.services))
	c.servicesByCode = make(map[string]Service, len(c.services))
	for _, s := range c.services {
		c.servicesByName[s.Name] = s
		c.servicesByCode[s.Code] = s
	}

	c.languageByCode = make(map[string]Language, len(c.languages))
	for _, l := range c.languages {
		c.languageByCode[l.Code] = l
	}

	return c
}

// Fuels returns the fuels in display order
func (c *Catalog) Fuels() []Fuel {
	return c.fuels
}

// Services returns the service types in display order
func (c *Catalog) Services() []Service {
	return c.services
}

// Languages returns the supported languages in display order
func (c *Catalog) Languages() []Language {
	return c.languages
}

// FuelByName resolves a fuel from its keyboard label
func (c *Catalog) FuelByName(name string) (Fuel, bool) {
	f, ok := c.fuelsByName[name]
	return f, ok
}

// FuelByCode resolves a fuel from its stored code
func (c *Catalog) FuelByCode(code string) (Fuel, bool) {
	f, ok := c.fuelsByCode[code]
	return f, ok
}

// ServiceByName resolves a service type from its keyboard label
func (c *Catalog) ServiceByName(name string) (Service, bool) {
	s, ok := c.servicesByName[name]
	return s, ok
}

// ServiceByCode resolves a service type from its stored code
func (c *Catalog) ServiceByCode(code string) (Service, bool) {
	s, ok := c.servicesByCode[code]
	return s, ok
}

// LanguageByCode resolves a language from its stored code
func (c *Catalog) LanguageByCode(code string) (Language, bool) {
	l, ok := c.languageByCode[code]
	return l, ok
}

// LanguageByName resolves a language from its keyboard label
func (c *Catalog) LanguageByName(name string) (Language, bool) {
	for _, l := range c.languages {
		if l.Name == name {
			return l, true
		}
	}
	return Language{}, false
}

// Selector builds the fuel-type selector sent to the price-search API,
// "<fuelCode>-<serviceCode>" with "x" as the service wildcard
func (c *Catalog) Selector(fuelCode, serviceCode string) string {
	if serviceCode == "" {
		serviceCode = "x"
	}
	return fmt.Sprintf("%s-%s", fuelCode, serviceCode)
}
