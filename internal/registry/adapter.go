package registry

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vcto/mcp-weather/internal/auth"
)

// scopeFailureResult encodes an authorization failure inside the normal
// success envelope. The field names, including the header-style challenge in
// "www_authenticate", are a compatibility contract with existing clients.
func scopeFailureResult(e *auth.ScopeError) *mcp.CallToolResult {
	available := e.AvailableScopes
	if available == nil {
		available = []string{}
	}
	payload := map[string]interface{}{
		"error":            "insufficient_scope",
		"message":          e.Message,
		"required_scopes":  e.RequiredScopes,
		"available_scopes": available,
		"status_code":      401,
		"www_authenticate": e.Challenge(),
	}
	if e.ResourceMetadataURL != "" {
		payload["resource_metadata_url"] = e.ResourceMetadataURL
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf(`{"error": "insufficient_scope", "message": %q}`, e.Message))
	}
	return mcp.NewToolResultText(string(data))
}

// unknownToolResult encodes a lookup miss as tool output.
func unknownToolResult(name string) *mcp.CallToolResult {
	payload := map[string]interface{}{
		"error":   "unknown_tool",
		"message": fmt.Sprintf("Unknown tool: %s", name),
	}
	data, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(data))
}
