package api

import (
	"net/http" // HTTP status codes

	"account_service/internal/service" // Account services

	"github.com/gin-gonic/gin" // Gin web framework
)

// ProfileRequest changes only the profile fields present in the body
type ProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=50"` // First name
	LastName  *string `json:"last_name" binding:"omitempty,max=50"`  // Last name
	Phone     *string `json:"phone" binding:"omitempty,max=15"`      // Phone number
}

// GetProfileHandler returns the caller's profile
func GetProfileHandler(profiles *service.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := currentUser(c)
		if !ok {
			return
		}
		profile, err := profiles.Get(c.Request.Context(), caller.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// UpdateProfileHandler creates or updates the caller's profile
func UpdateProfileHandler(profiles *service.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := currentUser(c)
		if !ok {
			return
		}
		var req ProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request: "+err.Error())
			return
		}
		profile, err := profiles.Upsert(c.Request.Context(), caller.ID, service.ProfileInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}
