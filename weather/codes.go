package weather

// WMO weather interpretation codes as reported by Open-Meteo.
var conditions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Foggy",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	80: "Slight showers",
	81: "Moderate showers",
	82: "Violent showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with hail",
	99: "Thunderstorm with hail",
}

func Condition(code int) string {
	if c, ok := conditions[code]; ok {
		return c
	}
	return "Unknown"
}

// IsWet reports whether the code means rain, drizzle, showers or storms.
func IsWet(code int) bool {
	return (code >= 51 && code <= 67) || (code >= 80 && code <= 82) || code >= 95
}
