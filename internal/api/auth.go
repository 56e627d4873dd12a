package api

import (
	"net/http" // HTTP status codes

	"account_service/internal/middleware" // Resolved identity
	"account_service/internal/service"    // Account services

	"github.com/gin-gonic/gin" // Gin web framework
)

// LoginRequest accepts an OAuth2 password form or a JSON body
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"` // Username must be provided
	Password string `form:"password" json:"password" binding:"required"` // Password must be provided
}

// TokenResponse is the bearer credential returned by login
type TokenResponse struct {
	AccessToken string `json:"access_token"` // Signed JWT
	TokenType   string `json:"token_type"`   // Always "bearer"
	ExpiresIn   int    `json:"expires_in"`   // Seconds until expiry
}

// LogoutRequest carries the token to revoke
type LogoutRequest struct {
	AccessToken string `form:"access_token" json:"access_token" binding:"required"` // Token to revoke
}

// LoginHandler authenticates a user and returns an access token
func LoginHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind form or JSON by Content-Type
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		res, err := auth.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err) // Invalid credentials map to 401
			return
		}
		c.JSON(http.StatusOK, TokenResponse{
			AccessToken: res.AccessToken,
			TokenType:   res.TokenType,
			ExpiresIn:   int(res.ExpiresIn.Seconds()),
		})
	}
}

// LogoutHandler revokes the submitted token until it expires
func LogoutHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LogoutRequest
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		if err := auth.Logout(c.Request.Context(), req.AccessToken); err != nil {
			respondError(c, err) // Expired or invalid tokens are 401
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "Successfully logged out"})
	}
}

// ProtectedHandler is a demo route behind the identity gate
func ProtectedHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"msg": "Access granted", "username": user.Username})
	}
}
