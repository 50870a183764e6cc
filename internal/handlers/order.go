package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/services"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (oh *OrderHandler) Create(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid request body")))
		return
	}
	order, err := oh.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"order": order})
}

func (oh *OrderHandler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		RespondError(c, apierr.InvalidArgument(fmt.Errorf("invalid order id")))
		return
	}
	order, err := oh.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"order": order})
}

func (oh *OrderHandler) List(c *gin.Context) {
	orders, err := oh.orderService.ListOrders(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"orders": orders})
}
