package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const dateLayout = "2006-01-02"

func (h *Handler) getCurrentWeather(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	city, errResult := stringArg(request, "city")
	if errResult != nil {
		return errResult, nil
	}

	snap, err := h.api.CurrentWeather(ctx, city)
	if err != nil {
		return upstreamFailure(err), nil
	}

	text := fmt.Sprintf("Current weather in %s, %s: %.1f°C, %s, wind %.0f km/h (as of %s)",
		snap.Location.Name, snap.Location.Country, snap.TemperatureC, snap.Description,
		snap.WindSpeedKmh, snap.Time)
	return mcp.NewToolResultText(text), nil
}

func (h *Handler) getWeatherByDatetimeRange(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	city, errResult := stringArg(request, "city")
	if errResult != nil {
		return errResult, nil
	}
	startRaw, errResult := stringArg(request, "start_date")
	if errResult != nil {
		return errResult, nil
	}
	endRaw, errResult := stringArg(request, "end_date")
	if errResult != nil {
		return errResult, nil
	}

	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return errorResult(errKindInvalidArguments, fmt.Sprintf("start_date must be YYYY-MM-DD, got %q", startRaw)), nil
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return errorResult(errKindInvalidArguments, fmt.Sprintf("end_date must be YYYY-MM-DD, got %q", endRaw)), nil
	}
	if start.After(end) {
		return errorResult(errKindInvalidArguments, "start_date must not be after end_date"), nil
	}

	forecast, err := h.api.WeatherRange(ctx, city, startRaw, endRaw)
	if err != nil {
		return upstreamFailure(err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weather for %s, %s from %s to %s:\n",
		forecast.Location.Name, forecast.Location.Country, startRaw, endRaw)
	for _, day := range forecast.Days {
		fmt.Fprintf(&b, "%s: %.1f°C to %.1f°C, %s, %.1f mm precipitation\n",
			day.Date, day.TempMinC, day.TempMaxC, day.Description, day.PrecipitationMM)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (h *Handler) getWeatherDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	city, errResult := stringArg(request, "city")
	if errResult != nil {
		return errResult, nil
	}

	details, err := h.api.WeatherDetails(ctx, city)
	if err != nil {
		return upstreamFailure(err), nil
	}
	return jsonResult(details), nil
}
