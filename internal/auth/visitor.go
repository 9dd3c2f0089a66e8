package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// VisitorCookieName is the cookie carrying the signed visitor token.
const VisitorCookieName = "c19_visitor"

const visitorIssuer = "consulting19"

// VisitorClaims identifies an anonymous visitor.
type VisitorClaims struct {
	VisitorID string `json:"visitor_id"`
	jwt.RegisteredClaims
}

// VisitorTokens issues and validates visitor tokens.
type VisitorTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewVisitorTokens creates a token manager signing with secret (HS256).
func NewVisitorTokens(secret string, ttl time.Duration) *VisitorTokens {
	return &VisitorTokens{secret: []byte(secret), ttl: ttl}
}

// TTL returns the token lifetime, also used as the cookie Max-Age.
func (m *VisitorTokens) TTL() time.Duration { return m.ttl }

// Issue creates a token for a fresh visitor id and returns both.
func (m *VisitorTokens) Issue(now time.Time) (visitorID, token string, err error) {
	visitorID = uuid.NewString()
	token, err = m.Sign(visitorID, now)
	return visitorID, token, err
}

// Sign creates a token for an existing visitor id.
func (m *VisitorTokens) Sign(visitorID string, now time.Time) (string, error) {
	claims := &VisitorClaims{
		VisitorID: visitorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   visitorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Issuer:    visitorIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign visitor token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its visitor id.
func (m *VisitorTokens) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &VisitorClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(visitorIssuer))
	if err != nil {
		return "", fmt.Errorf("parse visitor token: %w", err)
	}

	claims, ok := token.Claims.(*VisitorClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid visitor token claims")
	}
	if _, err := uuid.Parse(claims.VisitorID); err != nil {
		return "", fmt.Errorf("invalid visitor id: %w", err)
	}
	return claims.VisitorID, nil
}
