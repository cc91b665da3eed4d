// Package tools implements the weather, air-quality and time lookup tools.
// Each handler runs scope check, argument validation, upstream delegation
// and result formatting, in that order.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vcto/mcp-weather/internal/openmeteo"
	"github.com/vcto/mcp-weather/internal/registry"
)

// ScopeReadAirQuality gates the air-quality tools. The registry advertises
// it via tools/list; the handlers enforce it. Both sides reference this
// constant so declared and enforced scopes cannot drift.
const ScopeReadAirQuality = "read_airquality"

// WeatherAPI is the upstream surface the handlers depend on.
type WeatherAPI interface {
	CurrentWeather(ctx context.Context, city string) (*openmeteo.WeatherSnapshot, error)
	WeatherRange(ctx context.Context, city, startDate, endDate string) (*openmeteo.WeatherRange, error)
	WeatherDetails(ctx context.Context, city string) (*openmeteo.WeatherDetails, error)
	AirQuality(ctx context.Context, city string) (*openmeteo.AirQualitySnapshot, error)
	AirQualityDetails(ctx context.Context, city string, pollutants []string) (*openmeteo.AirQualityDetails, error)
}

// Handler owns the tool implementations.
type Handler struct {
	api WeatherAPI
}

// NewHandler creates a handler backed by the given upstream client.
func NewHandler(api WeatherAPI) *Handler {
	return &Handler{api: api}
}

// Descriptors returns every tool this server exposes, in listing order.
func (h *Handler) Descriptors() []registry.Descriptor {
	return []registry.Descriptor{
		{
			Tool: mcp.NewTool("get_current_weather",
				mcp.WithDescription("Get the current weather for a city"),
				mcp.WithString("city", mcp.Required(), mcp.Description("City name, e.g. 'Tokyo'")),
			),
			Handler: h.getCurrentWeather,
		},
		{
			Tool: mcp.NewTool("get_weather_by_datetime_range",
				mcp.WithDescription("Get a day-by-day weather forecast for a city between two dates"),
				mcp.WithString("city", mcp.Required(), mcp.Description("City name")),
				mcp.WithString("start_date", mcp.Required(), mcp.Description("Start date, YYYY-MM-DD")),
				mcp.WithString("end_date", mcp.Required(), mcp.Description("End date, YYYY-MM-DD (must not precede start_date)")),
			),
			Handler: h.getWeatherByDatetimeRange,
		},
		{
			Tool: mcp.NewTool("get_weather_details",
				mcp.WithDescription("Get the full current-conditions payload for a city as structured JSON"),
				mcp.WithString("city", mcp.Required(), mcp.Description("City name")),
			),
			Handler: h.getWeatherDetails,
		},
		{
			Tool: mcp.NewTool("get_current_datetime",
				mcp.WithDescription("Get the current date and time in a timezone"),
				mcp.WithString("timezone_name", mcp.Required(), mcp.Description("IANA timezone name, e.g. 'Asia/Tokyo'")),
			),
			Handler: h.getCurrentDatetime,
		},
		{
			Tool: mcp.NewTool("get_timezone_info",
				mcp.WithDescription("Get the abbreviation and UTC offset of a timezone"),
				mcp.WithString("timezone_name", mcp.Required(), mcp.Description("IANA timezone name")),
			),
			Handler: h.getTimezoneInfo,
		},
		{
			Tool: mcp.NewTool("convert_time",
				mcp.WithDescription("Convert a wall-clock time between two timezones"),
				mcp.WithString("time", mcp.Required(), mcp.Description("Time of day, HH:MM (24h)")),
				mcp.WithString("from_timezone", mcp.Required(), mcp.Description("Source IANA timezone name")),
				mcp.WithString("to_timezone", mcp.Required(), mcp.Description("Target IANA timezone name")),
			),
			Handler: h.convertTime,
		},
		{
			Tool: mcp.NewTool("get_air_quality",
				mcp.WithDescription("Get the current air quality for a city. Requires the 'read_airquality' OAuth2 scope."),
				mcp.WithString("city", mcp.Required(), mcp.Description("City name")),
			),
			RequiredScopes: []string{ScopeReadAirQuality},
			Handler:        h.getAirQuality,
		},
		{
			Tool: mcp.NewTool("get_air_quality_details",
				mcp.WithDescription("Get the full air-quality payload for a city as structured JSON. Requires the 'read_airquality' OAuth2 scope."),
				mcp.WithString("city", mcp.Required(), mcp.Description("City name")),
				mcp.WithArray("pollutants", mcp.Description("Pollutant fields to fetch, e.g. ['pm2_5', 'ozone']; default fetches all"),
					mcp.Items(map[string]interface{}{"type": "string"})),
			),
			RequiredScopes: []string{ScopeReadAirQuality},
			Handler:        h.getAirQualityDetails,
		},
	}
}
