package main

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
)

func TestRequiredScopes(t *testing.T) {
	t.Run("reads the scope extension from a raw schema", func(t *testing.T) {
		tool := mcp.Tool{
			Name:           "get_air_quality",
			RawInputSchema: json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}},"required_scopes":["read_airquality"]}`),
		}
		assert.Equal(t, []string{"read_airquality"}, requiredScopes(tool))
	})

	t.Run("returns nothing for tools without the extension", func(t *testing.T) {
		tool := mcp.NewTool("get_current_weather", mcp.WithString("city"))
		assert.Empty(t, requiredScopes(tool))
	})

	t.Run("tolerates a malformed schema", func(t *testing.T) {
		tool := mcp.Tool{Name: "broken", RawInputSchema: json.RawMessage(`{`)}
		assert.Empty(t, requiredScopes(tool))
	})
}
