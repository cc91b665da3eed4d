// Package registry holds the tool table: an ordered mapping from tool name to
// descriptor, resolved once at startup and looked up by exact name at call
// time. Registering onto the MCP server wraps every handler with the error
// containment and scope-failure rendering the protocol requires.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vcto/mcp-weather/internal/auth"
)

// Descriptor binds an MCP tool definition to its handler and the OAuth2
// scopes required to invoke it. Immutable after registration.
type Descriptor struct {
	Tool           mcp.Tool
	RequiredScopes []string
	Handler        server.ToolHandlerFunc
}

// Registry is the process-lifetime tool table.
type Registry struct {
	order               []string
	byName              map[string]Descriptor
	resourceMetadataURL string
}

// Option configures a Registry.
type Option func(*Registry)

// WithResourceMetadataURL sets the OAuth protected-resource metadata URL
// included in scope-failure challenges.
func WithResourceMetadataURL(url string) Option {
	return func(r *Registry) {
		r.resourceMetadataURL = url
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{byName: make(map[string]Descriptor)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a descriptor. Duplicate names are a programming error caught
// at startup.
func (r *Registry) Register(d Descriptor) error {
	name := d.Tool.Name
	if name == "" {
		return fmt.Errorf("tool descriptor has no name")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("tool %q registered twice", name)
	}
	r.byName[name] = d
	r.order = append(r.order, name)
	return nil
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Lookup returns the descriptor for a tool name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Apply registers every tool onto the MCP server, with scope metadata folded
// into the advertised schema and handlers wrapped by the response adapter.
// Call exactly once per server; re-applying would duplicate tools.
func (r *Registry) Apply(s *server.MCPServer) {
	for _, name := range r.order {
		d := r.byName[name]
		s.AddTool(r.describe(d), r.wrap(d))
	}
}

// Invoke dispatches a call by name the same way the server would. An
// unregistered name yields a structured unknown-tool result, never an error.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	d, ok := r.byName[name]
	if !ok {
		return unknownToolResult(name), nil
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return r.wrap(d)(ctx, req)
}

// describe returns the tool as advertised via tools/list. Tools that declare
// required scopes carry them in a non-standard "required_scopes" field of the
// input schema, so clients can discover access requirements before calling,
// and in the description text for human readers.
func (r *Registry) describe(d Descriptor) mcp.Tool {
	if len(d.RequiredScopes) == 0 {
		return d.Tool
	}

	t := d.Tool
	schemaJSON, err := json.Marshal(t.InputSchema)
	if err != nil {
		log.Printf("Registry: failed to marshal schema for %s: %v", t.Name, err)
		return d.Tool
	}
	var schema map[string]interface{}
	if err := json.Unmarshal(schemaJSON, &schema); err != nil {
		log.Printf("Registry: failed to decode schema for %s: %v", t.Name, err)
		return d.Tool
	}
	schema["required_scopes"] = d.RequiredScopes

	raw, err := json.Marshal(schema)
	if err != nil {
		log.Printf("Registry: failed to encode schema for %s: %v", t.Name, err)
		return d.Tool
	}
	t.RawInputSchema = raw
	t.InputSchema = mcp.ToolInputSchema{}
	return t
}

// wrap is the protocol response adapter. By the time a tool runs, the
// transport has committed a 2xx status, so failures escaping a handler are
// rendered in-band: scope failures as the insufficient_scope payload, any
// other error as a tool error result. Nothing propagates as a protocol fault.
func (r *Registry) wrap(d Descriptor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := d.Handler(ctx, req)
		if err == nil {
			return result, nil
		}

		var scopeErr *auth.ScopeError
		if errors.As(err, &scopeErr) {
			if scopeErr.ResourceMetadataURL == "" {
				scopeErr.ResourceMetadataURL = r.resourceMetadataURL
			}
			// The challenge never reaches the wire as a real header here, so
			// log it for operability.
			log.Printf("Auth: insufficient scope for tool %s: %s (WWW-Authenticate: %s)",
				d.Tool.Name, scopeErr.Message, scopeErr.Challenge())
			return scopeFailureResult(scopeErr), nil
		}

		log.Printf("Tool %s failed: %v", d.Tool.Name, err)
		return mcp.NewToolResultError(fmt.Sprintf("Error executing tool '%s': %v", d.Tool.Name, err)), nil
	}
}
