package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-queue/middlewares"
	"github.com/yeremiapane/cafe-queue/models"
	"github.com/yeremiapane/cafe-queue/services"
	"github.com/yeremiapane/cafe-queue/utils"
)

type OrderController struct {
	Composer *services.OrderComposer
	Queue    *services.OrderQueue
}

func NewOrderController(composer *services.OrderComposer, queue *services.OrderQueue) *OrderController {
	return &OrderController{Composer: composer, Queue: queue}
}

type createOrderRequest struct {
	CustomerName string               `json:"customer_name"`
	Items        []services.LineInput `json:"items"`
}

// CreateOrder -> POST /orders, the caller's session owns the order
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	sess := middlewares.GetSession(c)
	var userID string
	if sess != nil {
		userID = sess.UserID
	}

	orderID, err := oc.Composer.SubmitOrder(c.Request.Context(), userID, req.CustomerName, req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", gin.H{"order_id": orderID})
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	details, err := oc.Queue.GetOrderDetails(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order details", details)
}

// GetOrdersAhead -> GET /orders/:order_id/ahead
func (oc *OrderController) GetOrdersAhead(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	ahead, err := oc.Queue.GetOrdersAheadCount(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders ahead", gin.H{"order_id": id, "ahead": ahead})
}

// CancelOrder only succeeds while the order is still pending and belongs to
// the caller (baristas may cancel any order); otherwise zero affected rows.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	rows, err := oc.Queue.CancelOrder(c.Request.Context(), middlewares.GetSession(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cancel processed", gin.H{
		"order_id":      id,
		"cancelled":     rows > 0,
		"rows_affected": rows,
	})
}

// GetAllOrders -> barista board, every order in queue order
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.Queue.GetOrders(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetQueue -> only pending and in_progress orders
func (oc *OrderController) GetQueue(c *gin.Context) {
	orders, err := oc.Queue.GetQueue(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active queue", orders)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	var input struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badBody(c, err)
		return
	}

	if err := oc.Queue.UpdateOrderStatus(c.Request.Context(), middlewares.GetSession(c), id, input.Status); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", gin.H{"order_id": id, "status": input.Status})
}
