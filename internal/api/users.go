package api

import (
	"net/http" // HTTP status codes

	"account_service/internal/domain"  // Importing domain models
	"account_service/internal/service" // Account services

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRequest creates an account and its profile
type RegisterRequest struct {
	Username  string  `json:"username" binding:"required,min=3,max=15"` // 3-15 characters
	Email     string  `json:"email" binding:"required,email,max=254"`   // Must be a valid email
	Password  string  `json:"password" binding:"required,min=8,max=20"` // 8-20 characters
	FirstName *string `json:"first_name" binding:"omitempty,max=50"`    // Optional profile field
	LastName  *string `json:"last_name" binding:"omitempty,max=50"`     // Optional profile field
	Phone     *string `json:"phone" binding:"omitempty,max=15"`         // Optional profile field
}

// UpdateUserRequest changes only the fields present in the body
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=254"`   // New email
	Password *string `json:"password" binding:"omitempty,min=8,max=20"` // New password
	Role     *string `json:"role" binding:"omitempty,oneof=user admin"` // Admins only
}

func (r UpdateUserRequest) input() service.UpdateUserInput {
	return service.UpdateUserInput{Email: r.Email, Password: r.Password, Role: r.Role}
}

// RegisterHandler creates a user together with its profile
func RegisterHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request: "+err.Error())
			return
		}
		user, err := users.Create(c.Request.Context(), service.CreateUserInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
			Profile: service.ProfileInput{
				FirstName: req.FirstName,
				LastName:  req.LastName,
				Phone:     req.Phone,
			},
		})
		if err != nil {
			respondError(c, err) // Duplicate username or email is 409
			return
		}
		c.JSON(http.StatusCreated, newUserResponse(user))
	}
}

// GetMeHandler returns the caller with its profile
func GetMeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, newUserResponse(user))
	}
}

// UpdateMeHandler changes the caller's email or password
func UpdateMeHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := currentUser(c)
		if !ok {
			return
		}
		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request: "+err.Error())
			return
		}
		if req.Role != nil && !caller.IsAdmin() {
			forbidRole(c)
			return
		}
		user, err := users.Update(c.Request.Context(), caller.Username, req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newUserResponse(user))
	}
}

// DeleteMeHandler deletes the caller and everything it owns
func DeleteMeHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := currentUser(c)
		if !ok {
			return
		}
		user, err := users.Delete(c.Request.Context(), caller.Username)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "User deleted", "user": newUserResponse(user)})
	}
}

// ListUsersHandler returns a page of users
func ListUsersHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := users.List(c.Request.Context(), parsePage(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, pageBody("users", res, newUserResponse))
	}
}

// GetUserHandler returns the user named in the path
func GetUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authorizeTarget(c); !ok {
			return
		}
		user, err := users.Get(c.Request.Context(), c.Param("username"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newUserResponse(user))
	}
}

// UpdateUserHandler updates the user named in the path. Only admins may change roles.
func UpdateUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := authorizeTarget(c)
		if !ok {
			return
		}
		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request: "+err.Error())
			return
		}
		if req.Role != nil && !caller.IsAdmin() {
			forbidRole(c)
			return
		}
		user, err := users.Update(c.Request.Context(), c.Param("username"), req.input())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, newUserResponse(user))
	}
}

// DeleteUserHandler deletes the user named in the path
func DeleteUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authorizeTarget(c); !ok {
			return
		}
		user, err := users.Delete(c.Request.Context(), c.Param("username"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "User deleted", "user": newUserResponse(user)})
	}
}

// authorizeTarget lets the caller act on :username when it is the caller or the caller is an admin
func authorizeTarget(c *gin.Context) (domain.User, bool) {
	caller, ok := currentUser(c)
	if !ok {
		return domain.User{}, false
	}
	if caller.IsAdmin() || caller.Username == service.NormalizeUsername(c.Param("username")) {
		return caller, true
	}
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not allowed to access this user"})
	return domain.User{}, false
}

func forbidRole(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Only admins may change roles"})
}
