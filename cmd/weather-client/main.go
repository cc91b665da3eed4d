// Command weather-client is a small demo client for the weather MCP server.
// It connects over the streamable HTTP transport, optionally with a bearer
// token, and either lists the available tools or calls one with JSON
// arguments.
//
// Examples:
//
//	weather-client -url http://localhost:8080/mcp -list
//	weather-client -url http://localhost:8080/mcp -tool get_current_weather -args '{"city":"Berlin"}'
//	weather-client -url http://localhost:8080/mcp -token $TOKEN -tool get_air_quality -args '{"city":"Berlin"}'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

var (
	serverURL = flag.String("url", "http://localhost:8080/mcp", "Server MCP endpoint")
	token     = flag.String("token", os.Getenv("MCP_BEARER_TOKEN"), "Bearer token to send (optional)")
	toolName  = flag.String("tool", "", "Tool to call")
	toolArgs  = flag.String("args", "{}", "Tool arguments as JSON")
	listTools = flag.Bool("list", false, "List available tools and exit")
)

func main() {
	flag.Parse()

	if !*listTools && *toolName == "" {
		flag.Usage()
		os.Exit(2)
	}

	var opts []transport.StreamableHTTPCOption
	if *token != "" {
		opts = append(opts, transport.WithHTTPHeaders(map[string]string{
			"Authorization": "Bearer " + *token,
		}))
	}

	c, err := client.NewStreamableHttpClient(*serverURL, opts...)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Start(ctx); err != nil {
		log.Fatalf("Failed to start client: %v", err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "weather-client",
		Version: "1.0.0",
	}

	initResult, err := c.Initialize(ctx, initRequest)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	log.Printf("Connected to %s %s (protocol %s)",
		initResult.ServerInfo.Name, initResult.ServerInfo.Version, initResult.ProtocolVersion)

	if *listTools {
		printTools(ctx, c)
		return
	}

	callTool(ctx, c, *toolName, *toolArgs)
}

func printTools(ctx context.Context, c *client.Client) {
	result, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		log.Fatalf("Failed to list tools: %v", err)
	}

	fmt.Printf("%d tools available:\n", len(result.Tools))
	for _, tool := range result.Tools {
		fmt.Printf("  %-32s %s\n", tool.Name, tool.Description)
		if scopes := requiredScopes(tool); len(scopes) > 0 {
			fmt.Printf("  %-32s requires scopes: %s\n", "", strings.Join(scopes, ", "))
		}
	}
}

// requiredScopes extracts the server's "required_scopes" input schema
// extension, which advertises the OAuth2 scopes a tool call needs.
func requiredScopes(tool mcp.Tool) []string {
	raw := []byte(tool.RawInputSchema)
	if len(raw) == 0 {
		data, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil
		}
		raw = data
	}
	var schema struct {
		RequiredScopes []string `json:"required_scopes"`
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil
	}
	return schema.RequiredScopes
}

func callTool(ctx context.Context, c *client.Client, name, rawArgs string) {
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		log.Fatalf("Invalid -args JSON: %v", err)
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := c.CallTool(ctx, request)
	if err != nil {
		log.Fatalf("Tool call failed: %v", err)
	}

	if result.IsError {
		fmt.Println("Tool returned an error:")
	}
	for _, content := range result.Content {
		switch c := content.(type) {
		case mcp.TextContent:
			fmt.Println(c.Text)
		default:
			fmt.Printf("%+v\n", content)
		}
	}
}
