package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vcto/mcp-weather/internal/auth"
)

func (h *Handler) getAirQuality(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := auth.RequireScope(ctx, ScopeReadAirQuality); err != nil {
		return nil, err
	}

	city, errResult := stringArg(request, "city")
	if errResult != nil {
		return errResult, nil
	}

	snap, err := h.api.AirQuality(ctx, city)
	if err != nil {
		return upstreamFailure(err), nil
	}

	text := fmt.Sprintf("Air quality in %s, %s: European AQI %.0f, PM2.5 %.1f µg/m³, PM10 %.1f µg/m³ (as of %s)",
		snap.Location.Name, snap.Location.Country, snap.EuropeanAQI,
		snap.Pollutants["pm2_5"], snap.Pollutants["pm10"], snap.Time)
	return mcp.NewToolResultText(text), nil
}

func (h *Handler) getAirQualityDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := auth.RequireScope(ctx, ScopeReadAirQuality); err != nil {
		return nil, err
	}

	city, errResult := stringArg(request, "city")
	if errResult != nil {
		return errResult, nil
	}

	var pollutants []string
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		if raw, ok := args["pollutants"].([]interface{}); ok {
			for _, item := range raw {
				if s, ok := item.(string); ok && s != "" {
					pollutants = append(pollutants, s)
				}
			}
		}
	}

	details, err := h.api.AirQualityDetails(ctx, city, pollutants)
	if err != nil {
		return upstreamFailure(err), nil
	}
	return jsonResult(details), nil
}
