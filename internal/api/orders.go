package api

import (
	"net/http" // HTTP status codes

	"account_service/internal/service" // Account services

	"github.com/gin-gonic/gin" // Gin web framework
)

// OrderRequest names a new order
type OrderRequest struct {
	Name string `json:"name" binding:"required,max=50"` // Order name
}

// ListOrdersHandler returns the caller's orders
func ListOrdersHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := currentUser(c)
		if !ok {
			return
		}
		items, err := orders.ListForOwner(c.Request.Context(), caller.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": items})
	}
}

// CreateOrderHandler places an order owned by the caller
func CreateOrderHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := currentUser(c)
		if !ok {
			return
		}
		var req OrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request: "+err.Error())
			return
		}
		order, err := orders.Create(c.Request.Context(), caller.ID, req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// DeleteOrderHandler removes one of the caller's orders
func DeleteOrderHandler(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := currentUser(c)
		if !ok {
			return
		}
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := orders.Delete(c.Request.Context(), caller.ID, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
