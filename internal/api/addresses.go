package api

import (
	"net/http" // HTTP status codes

	"account_service/internal/service" // Account services

	"github.com/gin-gonic/gin" // Gin web framework
)

// AddressRequest describes a new address
type AddressRequest struct {
	AddressType string `json:"address_type" binding:"required,max=50"`
	Street      string `json:"street" binding:"required,max=50"`
	City        string `json:"city" binding:"required,max=50"`
	Status      string `json:"status" binding:"max=50"`
	Country     string `json:"country" binding:"required,max=50"`
	PostIndex   string `json:"post_index" binding:"max=10"`
}

// ListAddressesHandler returns the caller's addresses
func ListAddressesHandler(addresses *service.AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := currentUser(c)
		if !ok {
			return
		}
		items, err := addresses.ListForUser(c.Request.Context(), caller.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"addresses": items})
	}
}

// CreateAddressHandler adds an address for the caller
func CreateAddressHandler(addresses *service.AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := currentUser(c)
		if !ok {
			return
		}
		var req AddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request: "+err.Error())
			return
		}
		address, err := addresses.Create(c.Request.Context(), caller.ID, service.AddressInput{
			AddressType: req.AddressType,
			Street:      req.Street,
			City:        req.City,
			Status:      req.Status,
			Country:     req.Country,
			PostIndex:   req.PostIndex,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, address)
	}
}

// DeleteAddressHandler removes one of the caller's addresses
func DeleteAddressHandler(addresses *service.AddressService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		// Someone else's address is reported as not found
		if err := addresses.Delete(c.Request.Context(), caller.ID, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
