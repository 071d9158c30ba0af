package jwt

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"conduit/errs"
)

// SessionLength is how long an issued token stays valid.
const SessionLength = 14 * 24 * time.Hour

// Scheme is the Authorization header scheme for bearer tokens.
const Scheme = "Token"

// Claims represents the payload structure of an issued token.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager signs user identities into bearer tokens and verifies them.
// The signing key is injected from configuration and the current time is
// passed per call, so both are under test control.
type Manager struct {
	signingKey []byte
}

// NewManager creates a token manager around the given HMAC signing key.
func NewManager(signingKey []byte) *Manager {
	return &Manager{signingKey: signingKey}
}

// Sign encodes the user id and an expiry of now + SessionLength into a
// signed HS384 token. Signing is deterministic for fixed key and now.
func (m *Manager) Sign(userID uuid.UUID, now time.Time) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionLength)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS384, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", errs.Internal(err)
	}

	return signed, nil
}

// Verify authenticates an Authorization header value of the form
// "Token <jwt>". Any parse failure, signature mismatch, wrong scheme or
// expired claim yields ErrUnauthorized.
func (m *Manager) Verify(authorization string, now time.Time) (uuid.UUID, error) {
	encoded, ok := strings.CutPrefix(authorization, Scheme+" ")
	if !ok {
		return uuid.Nil, errs.ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(encoded, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS384.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		// The expiry instant itself is still valid; only now > exp rejects.
		jwt.WithLeeway(time.Second),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, errs.ErrUnauthorized
	}

	return claims.UserID, nil
}

// VerifyOptional is Verify for endpoints where authentication is optional.
// An absent header yields no identity and no error; a present but invalid
// token is still rejected.
func (m *Manager) VerifyOptional(authorization string, now time.Time) (*uuid.UUID, error) {
	if authorization == "" {
		return nil, nil
	}

	userID, err := m.Verify(authorization, now)
	if err != nil {
		return nil, err
	}
	return &userID, nil
}

func (m *Manager) keyFunc(t *jwt.Token) (interface{}, error) {
	return m.signingKey, nil
}
