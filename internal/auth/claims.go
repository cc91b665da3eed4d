// Package auth implements bearer token validation and OAuth2 scope
// enforcement for the HTTP transports. Validation happens once per request in
// the middleware; tool handlers only ever see the resulting Claims through
// the request context.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the validated identity attached to a request. It is created by
// the TokenValidator and discarded when the request ends.
type Claims struct {
	Subject   string
	Issuer    string
	ExpiresAt time.Time
	Scopes    []string
}

// HasScope reports whether the token granted the named scope.
func (c *Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

type claimsKeyType struct{}

var claimsKey = claimsKeyType{}

// WithClaims returns a context carrying the validated claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext retrieves the claims attached by the middleware, if any.
// Requests on unauthenticated transports (stdio, SSE, auth disabled) carry
// no claims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// newClaims builds Claims from verified JWT claims. Scope extraction accepts
// the three formats identity providers use in the wild: a space-separated
// "scope" string (OAuth2), an "scp" array (Azure AD), and a "scopes" array.
func newClaims(mc jwt.MapClaims) *Claims {
	c := &Claims{}
	c.Subject, _ = mc.GetSubject()
	c.Issuer, _ = mc.GetIssuer()
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	c.Scopes = extractScopes(mc)
	return c
}

func extractScopes(mc jwt.MapClaims) []string {
	seen := make(map[string]bool)
	var scopes []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			scopes = append(scopes, s)
		}
	}
	addValue := func(v interface{}) {
		switch val := v.(type) {
		case string:
			for _, s := range strings.Fields(val) {
				add(s)
			}
		case []interface{}:
			for _, item := range val {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		case []string:
			for _, s := range val {
				add(s)
			}
		}
	}
	for _, claim := range []string{"scope", "scp", "scopes"} {
		if v, ok := mc[claim]; ok {
			addValue(v)
		}
	}
	return scopes
}
