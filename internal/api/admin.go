package api

import (
	"net/http" // HTTP status codes

	"account_service/internal/domain"  // Importing domain models
	"account_service/internal/service" // Account services

	"github.com/gin-gonic/gin" // Gin web framework
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	UserResponse
	AddressCount int `json:"address_count"` // Number of addresses owned
	OrderCount   int `json:"order_count"`   // Number of orders owned
}

func newUserAdminResponse(u domain.User) UserAdminResponse {
	return UserAdminResponse{
		UserResponse: newUserResponse(u),
		AddressCount: len(u.Addresses),
		OrderCount:   len(u.Orders),
	}
}

// AdminUsersHandler returns all users with profile and ownership counts
func AdminUsersHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := users.ListWithRelations(c.Request.Context(), parsePage(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, pageBody("users", res, newUserAdminResponse))
	}
}

// AdminProfilesHandler returns all profiles
func AdminProfilesHandler(profiles *service.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := profiles.List(c.Request.Context(), parsePage(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, pageBody("profiles", res, identity[domain.Profile]))
	}
}

// AdminAddressesHandler returns all addresses
func AdminAddressesHandler(addresses *service.AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := addresses.List(c.Request.Context(), parsePage(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, pageBody("addresses", res, identity[domain.Address]))
	}
}

// AdminOrdersHandler returns all orders
func AdminOrdersHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := orders.List(c.Request.Context(), parsePage(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, pageBody("orders", res, identity[domain.Order]))
	}
}
