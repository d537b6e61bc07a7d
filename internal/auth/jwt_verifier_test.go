package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"assetdesk/internal/domain"
	"assetdesk/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKID = "test-key"

func newTestVerifier(t *testing.T) (*JWKSVerifier, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	kf, err := keyfunc.NewJWKSetJSON(jwksJSON(t, &key.PublicKey))
	require.NoError(t, err)

	return newVerifier(kf, slog.New(slog.NewTextHandler(io.Discard, nil))), key
}

// jwksJSON publishes pub the way an identity provider's JWKS endpoint does
func jwksJSON(t *testing.T, pub *ecdsa.PublicKey) json.RawMessage {
	t.Helper()
	coord := func(n *big.Int) string {
		return base64.RawURLEncoding.EncodeToString(n.FillBytes(make([]byte, 32)))
	}
	raw, err := json.Marshal(map[string]interface{}{
		"keys": []map[string]string{{
			"kty": "EC",
			"crv": "P-256",
			"kid": testKID,
			"alg": "ES256",
			"use": "sig",
			"x":   coord(pub.X),
			"y":   coord(pub.Y),
		}},
	})
	require.NoError(t, err)
	return raw
}

func sign(t *testing.T, key *ecdsa.PrivateKey, claims models.AuthClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = testKID
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() models.AuthClaims {
	return models.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "authenticated",
	}
}

func TestJWKSVerifier_VerifyToken(t *testing.T) {
	v, key := newTestVerifier(t)

	claims, err := v.VerifyToken(sign(t, key, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.GetUserID())

	tests := []struct {
		name   string
		mutate func(c *models.AuthClaims)
	}{
		{"expired", func(c *models.AuthClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute)) }},
		{"no expiry", func(c *models.AuthClaims) { c.ExpiresAt = nil }},
		{"anonymous role", func(c *models.AuthClaims) { c.Role = "anon" }},
		{"no subject", func(c *models.AuthClaims) { c.Subject = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validClaims()
			tt.mutate(&c)
			_, err := v.VerifyToken(sign(t, key, c))
			assert.True(t, errors.Is(err, domain.ErrUnauthorized))
		})
	}
}

func TestJWKSVerifier_RejectsSymmetricTokens(t *testing.T) {
	v, _ := newTestVerifier(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	token.Header["kid"] = testKID
	s, err := token.SignedString([]byte("shared secret"))
	require.NoError(t, err)

	_, err = v.VerifyToken(s)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestJWKSVerifier_RejectsGarbage(t *testing.T) {
	v, _ := newTestVerifier(t)
	_, err := v.VerifyToken("not-a-token")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
