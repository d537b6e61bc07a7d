package auth

import "assetdesk/internal/domain/models"

// JWTVerifier verifies bearer tokens issued by the identity provider.
// The middleware depends on this interface only.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.AuthClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
