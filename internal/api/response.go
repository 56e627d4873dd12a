package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Query and path parsing
	"time"     // Timestamps in responses

	"account_service/internal/apperr"     // Error taxonomy
	"account_service/internal/domain"     // Importing domain models
	"account_service/internal/middleware" // Resolved identity
	"account_service/internal/service"    // Account services

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// UserResponse is a user with its profile fields embedded
type UserResponse struct {
	ID        uint      `json:"id"`         // User ID
	Username  string    `json:"username"`   // Username
	Email     string    `json:"email"`      // Email address
	Role      string    `json:"role"`       // User role
	FirstName string    `json:"first_name"` // From profile
	LastName  string    `json:"last_name"`  // From profile
	Phone     string    `json:"phone"`      // From profile
	CreatedAt time.Time `json:"created_at"` // Creation timestamp
	UpdatedAt time.Time `json:"updated_at"` // Last update timestamp
}

func newUserResponse(u domain.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Profile != nil {
		resp.FirstName = u.Profile.FirstName
		resp.LastName = u.Profile.LastName
		resp.Phone = u.Profile.Phone
	}
	return resp
}

// respondError writes err as {"error": ...} with the status of its category.
// Internal errors are logged and reported without details.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	switch status {
	case http.StatusUnauthorized:
		c.Header("WWW-Authenticate", "Bearer")
	case http.StatusInternalServerError:
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("Request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.Message(err)})
}

// badRequest reports a binding or validation failure
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// parsePage reads page and page_size, falling back to defaults for bad values
func parsePage(c *gin.Context) service.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(service.DefaultPageSize)))
	return service.Page{Page: page, PageSize: pageSize}
}

// pageBody renders one listing page under key
func pageBody[T any, R any](key string, res service.PageResult[T], mapFn func(T) R) gin.H {
	items := make([]R, len(res.Items))
	for i, item := range res.Items {
		items[i] = mapFn(item)
	}
	return gin.H{
		key:           items,          // Page items
		"page":        res.Page,       // Current page
		"page_size":   res.PageSize,   // Page size
		"total":       res.Total,      // Total number of rows
		"total_pages": res.TotalPages, // Total pages
	}
}

func identity[T any](v T) T { return v }

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// currentUser returns the resolved identity or aborts with 401
func currentUser(c *gin.Context) (domain.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return user, ok
}
