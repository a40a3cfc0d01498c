package oauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mark3labs/mcp-go/client/transport"
)

// TokenInfo summarizes a stored token for display. Claims are read without
// verifying the signature and are only populated for JWT access tokens.
type TokenInfo struct {
	Type       string    `json:"type,omitempty"`
	Scope      string    `json:"scope,omitempty"`
	Expired    bool      `json:"expired"`
	ExpiresAt  time.Time `json:"expires_at,omitzero"`
	HasRefresh bool      `json:"has_refresh"`
	Subject    string    `json:"subject,omitempty"`
	Issuer     string    `json:"issuer,omitempty"`
	Audience   []string  `json:"audience,omitempty"`
}

// Inspect describes tok without exposing its secret material.
func Inspect(tok *transport.Token) TokenInfo {
	if tok == nil {
		return TokenInfo{}
	}
	info := TokenInfo{
		Type:       tok.TokenType,
		Scope:      tok.Scope,
		ExpiresAt:  tok.ExpiresAt,
		HasRefresh: tok.RefreshToken != "",
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, &claims); err == nil {
		info.Subject = claims.Subject
		info.Issuer = claims.Issuer
		info.Audience = claims.Audience
		if info.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
			info.ExpiresAt = claims.ExpiresAt.Time
		}
	}

	if !info.ExpiresAt.IsZero() {
		info.Expired = time.Now().After(info.ExpiresAt)
	}
	return info
}
