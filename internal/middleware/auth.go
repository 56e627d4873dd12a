package middleware

import (
	"context"  // Request context for lookups
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"account_service/internal/apperr" // Error taxonomy
	"account_service/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// Context keys set by Authenticate
const (
	identityKey = "identity"
	tokenKey    = "accessToken"
)

// Authenticator resolves callers from Basic credentials or bearer tokens
type Authenticator interface {
	VerifyCredentials(ctx context.Context, username, password string) (domain.User, error)
	ResolveToken(ctx context.Context, token string) (domain.User, error)
}

// Authenticate resolves the caller identity from the Authorization header.
// Both "Basic" and "Bearer" schemes are accepted. Failed Basic attempts are
// charged to limiter, which may be nil.
func Authenticate(auth Authenticator, limiter *LoginRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization")) // Get Authorization header
		scheme, credentials, _ := strings.Cut(authHeader, " ")        // Split scheme and credentials

		switch strings.ToLower(scheme) {
		case "bearer":
			token := strings.TrimSpace(credentials) // Extract the token string
			if token == "" {
				abortUnauthorized(c, "Bearer", "Missing or invalid Authorization header")
				return
			}
			user, err := auth.ResolveToken(c.Request.Context(), token) // Verify, check blacklist, load user
			if err != nil {
				abortWithError(c, "Bearer", err)
				return
			}
			c.Set(tokenKey, token) // Keep the raw token for logout-style handlers
			c.Set(identityKey, user)
		case "basic":
			username, password, ok := c.Request.BasicAuth() // Decode base64 credentials
			if !ok {
				abortUnauthorized(c, "Basic", "Missing or invalid Authorization header")
				return
			}
			ip := c.ClientIP()
			if limiter.exhausted(ip) {
				abortTooManyAttempts(c)
				return
			}
			user, err := auth.VerifyCredentials(c.Request.Context(), username, password)
			if err != nil {
				if errors.Is(err, apperr.ErrUnauthorized) {
					limiter.charge(ip) // Wrong password counts as a login attempt
				}
				abortWithError(c, "Basic", err)
				return
			}
			c.Set(identityKey, user)
		default:
			// No usable credentials
			abortUnauthorized(c, "Bearer", "Missing or invalid Authorization header")
			return
		}
		c.Next() // Proceed to the next handler
	}
}

// CurrentUser returns the identity resolved by Authenticate
func CurrentUser(c *gin.Context) (domain.User, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)
	return user, ok
}

// AccessToken returns the bearer token of the request, if any
func AccessToken(c *gin.Context) (string, bool) {
	token := c.GetString(tokenKey)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, scheme, msg string) {
	c.Header("WWW-Authenticate", scheme)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

func abortWithError(c *gin.Context, scheme string, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusUnauthorized {
		abortUnauthorized(c, scheme, strings.TrimPrefix(err.Error(), apperr.ErrUnauthorized.Error()+": "))
		return
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		logrus.WithError(err).Error("Authentication failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.Message(err)})
}
