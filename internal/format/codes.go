package format

// Category is the semantic class of a WMO weather code.
type Category string

const (
	CategoryClear  Category = "clear"
	CategoryClouds Category = "clouds"
	CategoryFog    Category = "fog"
	CategoryRain   Category = "rain"
	CategorySnow   Category = "snow"
	CategoryStorm  Category = "storm"
)

var weatherText = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Freezing drizzle",
	61: "Slight rain",
	63: "Rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Freezing rain",
	71: "Slight snow",
	73: "Snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Rain showers",
	81: "Heavy rain showers",
	82: "Violent rain showers",
	85: "Snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with hail",
	99: "Severe thunderstorm with hail",
}

// WeatherText describes a code. A nil code is Unknown.
func WeatherText(code *int) string {
	if code == nil {
		return Unknown
	}
	if s, ok := weatherText[*code]; ok {
		return s
	}
	return "Unknown conditions"
}

// CategoryOf classifies a code. Unknown and absent codes count as clear.
func CategoryOf(code *int) Category {
	if code == nil {
		return CategoryClear
	}
	switch *code {
	case 95, 96, 99:
		return CategoryStorm
	case 51, 53, 55, 56, 57, 61, 63, 65, 66, 67, 80, 81, 82:
		return CategoryRain
	case 71, 73, 75, 77, 85, 86:
		return CategorySnow
	case 45, 48:
		return CategoryFog
	case 1, 2, 3:
		return CategoryClouds
	default:
		return CategoryClear
	}
}

// IsStorm reports whether code is a thunderstorm code.
func IsStorm(code *int) bool {
	return CategoryOf(code) == CategoryStorm
}

// Theme is the visual theme name for a code and time of day.
func Theme(code *int, isDay bool) string {
	switch CategoryOf(code) {
	case CategoryStorm:
		return "storm"
	case CategoryRain:
		return "rain"
	case CategorySnow:
		return "snow"
	case CategoryFog:
		return "fog"
	case CategoryClouds:
		if isDay {
			return "cloudy-day"
		}
		return "cloudy-night"
	default:
		if isDay {
			return "clear-day"
		}
		return "clear-night"
	}
}

// Icon is a single terminal glyph for a code.
func Icon(code *int, isDay bool) string {
	switch CategoryOf(code) {
	case CategoryStorm:
		return "⛈"
	case CategoryRain:
		return "☂"
	case CategorySnow:
		return "❄"
	case CategoryFog:
		return "≋"
	case CategoryClouds:
		if isDay {
			return "⛅"
		}
		return "☁"
	default:
		if isDay {
			return "☀"
		}
		return "☾"
	}
}
