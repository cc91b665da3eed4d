package auth

import (
	"context"
	"fmt"
	"strings"
)

// ScopeError reports that the caller's token does not grant the scopes a
// tool requires. It surfaces to the client as an in-band payload, not an
// HTTP 401: by the time a tool runs, the streaming transport has already
// committed a 2xx status.
type ScopeError struct {
	RequiredScopes      []string
	AvailableScopes     []string
	ResourceMetadataURL string
	Message             string
}

func (e *ScopeError) Error() string {
	return e.Message
}

// Challenge builds the WWW-Authenticate value this failure would have carried
// had it happened before the response stream opened, e.g.
// `Bearer, resource_metadata="https://...", scope="read_airquality"`.
func (e *ScopeError) Challenge() string {
	parts := []string{"Bearer"}
	if e.ResourceMetadataURL != "" {
		parts = append(parts, fmt.Sprintf("resource_metadata=%q", e.ResourceMetadataURL))
	}
	parts = append(parts, fmt.Sprintf("scope=%q", strings.Join(e.RequiredScopes, " ")))
	return strings.Join(parts, ", ")
}

// RequireScope checks that the request's claims grant the named scope.
// Requests without claims pass: unauthenticated transports (stdio, SSE, auth
// disabled) have no scopes to check against, so the check is open by policy.
func RequireScope(ctx context.Context, scope string) error {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil
	}
	if claims.HasScope(scope) {
		return nil
	}
	return &ScopeError{
		RequiredScopes:  []string{scope},
		AvailableScopes: claims.Scopes,
		Message:         fmt.Sprintf("Required scope: %s", scope),
	}
}

// RequireAnyScope checks that the claims grant at least one of the scopes.
func RequireAnyScope(ctx context.Context, scopes []string) error {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil
	}
	for _, s := range scopes {
		if claims.HasScope(s) {
			return nil
		}
	}
	return &ScopeError{
		RequiredScopes:  scopes,
		AvailableScopes: claims.Scopes,
		Message:         fmt.Sprintf("Requires one of these scopes: %s", strings.Join(scopes, ", ")),
	}
}
