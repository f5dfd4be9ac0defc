package weather

import (
	"sort"
	"strings"
)

// Coordinates is a city's position in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

var cities = map[string]Coordinates{
	"Delhi":     {28.7041, 77.1025},
	"Mumbai":    {19.0760, 72.8777},
	"Bangalore": {12.9716, 77.5946},
	"Goa":       {15.4909, 73.8278},
	"Hyderabad": {17.3850, 78.4867},
	"Chennai":   {13.0827, 80.2707},
	"Kolkata":   {22.5726, 88.3639},
	"Jaipur":    {26.9124, 75.7873},
	"Pune":      {18.5204, 73.8567},
	"Ahmedabad": {23.0225, 72.5714},
}

// Lookup resolves a city case-insensitively and returns its canonical name.
func Lookup(city string) (string, Coordinates, bool) {
	city = strings.TrimSpace(city)
	for name, c := range cities {
		if strings.EqualFold(name, city) {
			return name, c, true
		}
	}
	return "", Coordinates{}, false
}

// KnownCities returns the supported city names in alphabetical order.
func KnownCities() []string {
	names := make([]string, 0, len(cities))
	for name := range cities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
