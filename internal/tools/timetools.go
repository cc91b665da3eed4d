package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const clockLayout = "15:04"

func (h *Handler) getCurrentDatetime(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tz, errResult := stringArg(request, "timezone_name")
	if errResult != nil {
		return errResult, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return errorResult(errKindInvalidArguments, fmt.Sprintf("unknown timezone: %s", tz)), nil
	}

	now := time.Now().In(loc)
	return mcp.NewToolResultText(fmt.Sprintf("Current time in %s: %s", tz, now.Format(time.RFC3339))), nil
}

func (h *Handler) getTimezoneInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tz, errResult := stringArg(request, "timezone_name")
	if errResult != nil {
		return errResult, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return errorResult(errKindInvalidArguments, fmt.Sprintf("unknown timezone: %s", tz)), nil
	}

	now := time.Now().In(loc)
	abbrev, offsetSeconds := now.Zone()
	return mcp.NewToolResultText(fmt.Sprintf("Timezone %s: abbreviation %s, UTC offset %s",
		tz, abbrev, formatUTCOffset(offsetSeconds))), nil
}

func (h *Handler) convertTime(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clock, errResult := stringArg(request, "time")
	if errResult != nil {
		return errResult, nil
	}
	fromTZ, errResult := stringArg(request, "from_timezone")
	if errResult != nil {
		return errResult, nil
	}
	toTZ, errResult := stringArg(request, "to_timezone")
	if errResult != nil {
		return errResult, nil
	}

	parsed, err := time.Parse(clockLayout, clock)
	if err != nil {
		return errorResult(errKindInvalidArguments, fmt.Sprintf("time must be HH:MM (24h), got %q", clock)), nil
	}
	fromLoc, err := time.LoadLocation(fromTZ)
	if err != nil {
		return errorResult(errKindInvalidArguments, fmt.Sprintf("unknown timezone: %s", fromTZ)), nil
	}
	toLoc, err := time.LoadLocation(toTZ)
	if err != nil {
		return errorResult(errKindInvalidArguments, fmt.Sprintf("unknown timezone: %s", toTZ)), nil
	}

	// Anchor the wall-clock time to today's date in the source zone.
	now := time.Now().In(fromLoc)
	source := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, fromLoc)
	converted := source.In(toLoc)

	text := fmt.Sprintf("%s in %s is %s in %s", clock, fromTZ, converted.Format(clockLayout), toTZ)
	if converted.Day() != source.Day() {
		text += fmt.Sprintf(" (%s)", converted.Format(dateLayout))
	}
	return mcp.NewToolResultText(text), nil
}

func formatUTCOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}
