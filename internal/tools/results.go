package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vcto/mcp-weather/internal/openmeteo"
)

// Structured error kinds carried in tool output. These are tool results, not
// protocol errors: a failed lookup must not take the session down.
const (
	errKindCityNotFound        = "city_not_found"
	errKindUpstreamUnavailable = "upstream_unavailable"
	errKindInvalidArguments    = "invalid_arguments"
)

// errorResult encodes a structured error as tool output.
func errorResult(kind, message string) *mcp.CallToolResult {
	payload := map[string]interface{}{
		"error":   kind,
		"message": message,
	}
	data, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(data))
}

// jsonResult renders a structured payload for the "details" tool variants.
func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// upstreamFailure maps client errors to their structured result forms.
func upstreamFailure(err error) *mcp.CallToolResult {
	var notFound *openmeteo.CityNotFoundError
	if errors.As(err, &notFound) {
		return errorResult(errKindCityNotFound, fmt.Sprintf("Could not find city '%s'. Check the spelling and try again.", notFound.City))
	}
	var upstream *openmeteo.UpstreamError
	if errors.As(err, &upstream) {
		return errorResult(errKindUpstreamUnavailable, upstream.Error())
	}
	return mcp.NewToolResultError(err.Error())
}

// stringArg extracts a required non-empty string argument.
func stringArg(request mcp.CallToolRequest, key string) (string, *mcp.CallToolResult) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", errorResult(errKindInvalidArguments, "invalid arguments format")
	}
	value, ok := args[key].(string)
	if !ok || value == "" {
		return "", errorResult(errKindInvalidArguments, fmt.Sprintf("%s parameter is required and must be a non-empty string", key))
	}
	return value, nil
}
