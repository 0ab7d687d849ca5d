package middleware

// identity.go defines helper functions shared across middleware files.
// Currently it provides a user identifier extraction used by the rate
// limiter's key builder: it prefers the user_id the JWT middleware
// stored in the Echo context and falls back to the raw token claims.
// When no user is authenticated, "anon" is returned so unauthenticated
// traffic shares one bucket per IP.

import (
    "fmt"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// currentUserID extracts a user identifier for rate-limit keying. It
// returns "anon" when no user is authenticated or the claims are missing.
func currentUserID(c echo.Context) string {
    if v := c.Get("user_id"); v != nil {
        if s, ok := v.(string); ok && s != "" {
            return s
        }
        if n, ok := v.(float64); ok {
            return fmt.Sprintf("%.0f", n)
        }
    }
    if u := c.Get("user"); u != nil {
        if tok, ok := u.(*jwt.Token); ok {
            if cl, ok := tok.Claims.(jwt.MapClaims); ok {
                if v, ok := cl["sub"].(string); ok && v != "" {
                    return v
                }
                if v, ok := cl["user_id"].(string); ok && v != "" {
                    return v
                }
            }
        }
    }
    return "anon"
}
