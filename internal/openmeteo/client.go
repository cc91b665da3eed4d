// Package openmeteo wraps the Open-Meteo geocoding, forecast and air-quality
// APIs. Every lookup geocodes the city name first, then fetches metrics for
// the resolved coordinates. Requests are single round-trips with no retries.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGeocodingBaseURL  = "https://geocoding-api.open-meteo.com"
	defaultForecastBaseURL   = "https://api.open-meteo.com"
	defaultAirQualityBaseURL = "https://air-quality-api.open-meteo.com"
)

// detailFields is what the "details" weather variant requests upstream.
const detailFields = "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,weather_code,surface_pressure,cloud_cover,wind_speed_10m,wind_direction_10m,wind_gusts_10m"

// defaultPollutants is the air-quality field list when the caller does not
// narrow it down.
var defaultPollutants = []string{"european_aqi", "pm10", "pm2_5", "carbon_monoxide", "nitrogen_dioxide", "sulphur_dioxide", "ozone"}

// Client is a stateless Open-Meteo API client.
type Client struct {
	GeocodingBaseURL  string
	ForecastBaseURL   string
	AirQualityBaseURL string
	HTTPClient        *http.Client
}

// NewClient creates a client against the public Open-Meteo endpoints.
func NewClient() *Client {
	return &Client{
		GeocodingBaseURL:  defaultGeocodingBaseURL,
		ForecastBaseURL:   defaultForecastBaseURL,
		AirQualityBaseURL: defaultAirQualityBaseURL,
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
	}
}

// getJSON performs one GET and decodes the response, mapping transport and
// status failures to UpstreamError.
func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &UpstreamError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{Err: err}
	}
	if resp.StatusCode >= 400 {
		return &UpstreamError{Status: resp.StatusCode}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

// Geocode resolves a free-text city name to coordinates. Returns
// CityNotFoundError when the geocoder has no match.
func (c *Client) Geocode(ctx context.Context, city string) (*Location, error) {
	u := fmt.Sprintf("%s/v1/search?name=%s&count=1", c.GeocodingBaseURL, url.QueryEscape(city))

	var decoded geocodingResponse
	if err := c.getJSON(ctx, u, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Results) == 0 {
		return nil, &CityNotFoundError{City: city}
	}

	r := decoded.Results[0]
	return &Location{
		Name:      r.Name,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Timezone:  r.Timezone,
	}, nil
}

// CurrentWeather returns the current conditions for a city.
func (c *Client) CurrentWeather(ctx context.Context, city string) (*WeatherSnapshot, error) {
	loc, err := c.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v1/forecast?latitude=%.4f&longitude=%.4f&current_weather=true&timezone=auto",
		c.ForecastBaseURL, loc.Latitude, loc.Longitude)

	var decoded forecastResponse
	if err := c.getJSON(ctx, u, &decoded); err != nil {
		return nil, err
	}

	cw := decoded.CurrentWeather
	return &WeatherSnapshot{
		Location:     *loc,
		Time:         cw.Time,
		TemperatureC: cw.Temperature,
		WindSpeedKmh: cw.WindSpeed,
		WindDirDeg:   cw.WindDirection,
		WeatherCode:  cw.WeatherCode,
		Description:  describeWeatherCode(cw.WeatherCode),
	}, nil
}

// WeatherRange returns a day-by-day forecast between two YYYY-MM-DD dates.
// Date ordering is validated by the caller; the upstream rejects anything
// malformed that slips through.
func (c *Client) WeatherRange(ctx context.Context, city, startDate, endDate string) (*WeatherRange, error) {
	loc, err := c.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v1/forecast?latitude=%.4f&longitude=%.4f&daily=temperature_2m_max,temperature_2m_min,precipitation_sum,weather_code&start_date=%s&end_date=%s&timezone=auto",
		c.ForecastBaseURL, loc.Latitude, loc.Longitude, url.QueryEscape(startDate), url.QueryEscape(endDate))

	var decoded forecastResponse
	if err := c.getJSON(ctx, u, &decoded); err != nil {
		return nil, err
	}

	out := &WeatherRange{Location: *loc}
	for i, date := range decoded.Daily.Time {
		day := DailySnapshot{Date: date}
		if i < len(decoded.Daily.TemperatureMax) {
			day.TempMaxC = decoded.Daily.TemperatureMax[i]
		}
		if i < len(decoded.Daily.TemperatureMin) {
			day.TempMinC = decoded.Daily.TemperatureMin[i]
		}
		if i < len(decoded.Daily.PrecipitationSum) {
			day.PrecipitationMM = decoded.Daily.PrecipitationSum[i]
		}
		if i < len(decoded.Daily.WeatherCode) {
			day.WeatherCode = decoded.Daily.WeatherCode[i]
			day.Description = describeWeatherCode(day.WeatherCode)
		}
		out.Days = append(out.Days, day)
	}
	return out, nil
}

// WeatherDetails returns the raw current-conditions payload for a city.
func (c *Client) WeatherDetails(ctx context.Context, city string) (*WeatherDetails, error) {
	loc, err := c.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v1/forecast?latitude=%.4f&longitude=%.4f&current=%s&timezone=auto",
		c.ForecastBaseURL, loc.Latitude, loc.Longitude, detailFields)

	var data map[string]interface{}
	if err := c.getJSON(ctx, u, &data); err != nil {
		return nil, err
	}
	return &WeatherDetails{Location: *loc, Data: data}, nil
}

// AirQuality returns the current air quality for a city, reduced to the
// European AQI plus per-pollutant concentrations.
func (c *Client) AirQuality(ctx context.Context, city string) (*AirQualitySnapshot, error) {
	loc, err := c.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v1/air-quality?latitude=%.4f&longitude=%.4f&current=%s&timezone=auto",
		c.AirQualityBaseURL, loc.Latitude, loc.Longitude, url.QueryEscape(strings.Join(defaultPollutants, ",")))

	var decoded airQualityResponse
	if err := c.getJSON(ctx, u, &decoded); err != nil {
		return nil, err
	}

	snap := &AirQualitySnapshot{
		Location:   *loc,
		Pollutants: make(map[string]float64),
	}
	for k, v := range decoded.Current {
		switch val := v.(type) {
		case string:
			if k == "time" {
				snap.Time = val
			}
		case float64:
			if k == "european_aqi" {
				snap.EuropeanAQI = val
			} else if k != "interval" {
				snap.Pollutants[k] = val
			}
		}
	}
	return snap, nil
}

// AirQualityDetails returns the raw air-quality payload, optionally narrowed
// to the requested pollutant fields.
func (c *Client) AirQualityDetails(ctx context.Context, city string, pollutants []string) (*AirQualityDetails, error) {
	loc, err := c.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	fields := pollutants
	if len(fields) == 0 {
		fields = defaultPollutants
	}
	// Pollutant names come from tool arguments, so they get escaped like any
	// other caller input.
	u := fmt.Sprintf("%s/v1/air-quality?latitude=%.4f&longitude=%.4f&current=%s&timezone=auto",
		c.AirQualityBaseURL, loc.Latitude, loc.Longitude, url.QueryEscape(strings.Join(fields, ",")))

	var data map[string]interface{}
	if err := c.getJSON(ctx, u, &data); err != nil {
		return nil, err
	}
	return &AirQualityDetails{Location: *loc, Data: data}, nil
}
