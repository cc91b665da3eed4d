package openmeteo

// Location is a geocoded place.
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// WeatherSnapshot is the current conditions at a location.
type WeatherSnapshot struct {
	Location     Location `json:"location"`
	Time         string   `json:"time"`
	TemperatureC float64  `json:"temperature_c"`
	WindSpeedKmh float64  `json:"wind_speed_kmh"`
	WindDirDeg   float64  `json:"wind_direction_deg"`
	WeatherCode  int      `json:"weather_code"`
	Description  string   `json:"description"`
}

// DailySnapshot is one day of an aggregated forecast range.
type DailySnapshot struct {
	Date            string  `json:"date"`
	TempMaxC        float64 `json:"temperature_max_c"`
	TempMinC        float64 `json:"temperature_min_c"`
	PrecipitationMM float64 `json:"precipitation_mm"`
	WeatherCode     int     `json:"weather_code"`
	Description     string  `json:"description"`
}

// WeatherRange is a day-by-day forecast between two dates.
type WeatherRange struct {
	Location Location        `json:"location"`
	Days     []DailySnapshot `json:"days"`
}

// WeatherDetails carries the upstream forecast payload unreduced, for the
// "details" tool variant.
type WeatherDetails struct {
	Location Location               `json:"location"`
	Data     map[string]interface{} `json:"data"`
}

// AirQualitySnapshot is the current air quality at a location.
type AirQualitySnapshot struct {
	Location    Location           `json:"location"`
	Time        string             `json:"time"`
	EuropeanAQI float64            `json:"european_aqi"`
	Pollutants  map[string]float64 `json:"pollutants"`
}

// AirQualityDetails carries the upstream air-quality payload unreduced.
type AirQualityDetails struct {
	Location Location               `json:"location"`
	Data     map[string]interface{} `json:"data"`
}

// geocodingResponse mirrors the Open-Meteo geocoding API shape.
type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

// forecastResponse mirrors the forecast API for the fields we reduce.
type forecastResponse struct {
	CurrentWeather struct {
		Time          string  `json:"time"`
		Temperature   float64 `json:"temperature"`
		WindSpeed     float64 `json:"windspeed"`
		WindDirection float64 `json:"winddirection"`
		WeatherCode   int     `json:"weathercode"`
	} `json:"current_weather"`
	Daily struct {
		Time             []string  `json:"time"`
		TemperatureMax   []float64 `json:"temperature_2m_max"`
		TemperatureMin   []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
		WeatherCode      []int     `json:"weather_code"`
	} `json:"daily"`
}

// airQualityResponse mirrors the air-quality API current block.
type airQualityResponse struct {
	Current map[string]interface{} `json:"current"`
}

// wmoDescriptions maps WMO weather interpretation codes to text.
var wmoDescriptions = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "moderate drizzle",
	55: "dense drizzle",
	61: "slight rain",
	63: "moderate rain",
	65: "heavy rain",
	66: "light freezing rain",
	67: "heavy freezing rain",
	71: "slight snowfall",
	73: "moderate snowfall",
	75: "heavy snowfall",
	77: "snow grains",
	80: "slight rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	85: "slight snow showers",
	86: "heavy snow showers",
	95: "thunderstorm",
	96: "thunderstorm with slight hail",
	99: "thunderstorm with heavy hail",
}

func describeWeatherCode(code int) string {
	if desc, ok := wmoDescriptions[code]; ok {
		return desc
	}
	return "unknown conditions"
}
