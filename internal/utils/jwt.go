package utils

import (
	"errors" // Error inspection
	"fmt"    // Error wrapping
	"time"   // Time for token expiration

	"account_service/internal/apperr" // Error taxonomy

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// AccessTokenTTL is the fixed lifetime of every access token
const AccessTokenTTL = 15 * time.Minute

// Token verification failures. Both are unauthorized errors.
var (
	ErrTokenExpired = fmt.Errorf("%w: token has expired", apperr.ErrUnauthorized)
	ErrTokenInvalid = fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)
)

// Claims carried by an access token: subject (username), issued-at and expiry
type Claims struct {
	jwt.RegisteredClaims // Standard JWT claims
}

// TokenService mints and verifies HS256 access tokens
type TokenService struct {
	secret []byte           // HMAC secret
	ttl    time.Duration    // Token lifetime
	now    func() time.Time // Clock, replaceable in tests
}

// NewTokenService creates a token service signing with secret
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: AccessTokenTTL, now: time.Now}
}

// WithClock returns a copy of the service reading time from now
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	clone := *s
	clone.now = now
	return &clone
}

// TTL returns the lifetime of minted tokens
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Mint creates a signed token for subject expiring after the fixed TTL
func (s *TokenService) Mint(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is empty")
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,                            // Username
			IssuedAt:  jwt.NewNumericDate(now),            // Issued at current time
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)), // Token expires in 15 minutes
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString(s.secret)                        // Sign the token with the secret
}

// Verify checks signature and expiry and returns the subject claim.
// It fails with ErrTokenExpired or ErrTokenInvalid.
func (s *TokenService) Verify(tokenStr string) (string, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExpiresAt verifies the token and returns its expiry time
func (s *TokenService) ExpiresAt(tokenStr string) (time.Time, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

func (s *TokenService) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil // Return the secret key for validation
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
		jwt.WithStrictDecoding(), // Canonical base64 only
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
