package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/mill-ops-console/config"
	"github.com/kendall-kelly/mill-ops-console/models"
	"github.com/kendall-kelly/mill-ops-console/services"
)

const orderView = "/order/"

func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB(), config.GetLogger())
}

func orderInput(c *gin.Context) services.OrderInput {
	return services.OrderInput{
		OrderCode:  c.PostForm("order_code"),
		Quantity:   c.PostForm("quantity"),
		Payment:    c.PostForm("payment"),
		Status:     c.PostForm("status"),
		FabricType: c.PostForm("fabric_type"),
	}
}

// OrderDashboard handles GET /order/ - lists orders with search, status filter and stats
func OrderDashboard(c *gin.Context) {
	svc := orderService()
	ctx := c.Request.Context()

	orders, err := svc.List(ctx, c.Query("search"), c.Query("status"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	stats, err := svc.Stats(ctx)
	if err != nil {
		respondError(c, err, "")
		return
	}

	respondView(c, gin.H{
		"orders":   orders,
		"stats":    stats,
		"statuses": models.OrderStatuses,
		"search":   c.Query("search"),
		"status":   c.Query("status"),
	})
}

// OrderAction handles POST /order/ - delete_order deletes, edit_order updates
func OrderAction(c *gin.Context) {
	svc := orderService()
	ctx := c.Request.Context()

	deleting, editing := has(c, "delete_order"), has(c, "edit_order")
	if !deleting && !editing {
		abortWithError(c, http.StatusBadRequest, services.CodeValidation, "Unknown order action.", orderView)
		return
	}

	id, err := parseID(c.PostForm("order_id"))
	if err != nil {
		respondError(c, err, orderView)
		return
	}

	if deleting {
		notices, err := svc.Delete(ctx, id)
		if err != nil {
			respondError(c, err, orderView)
			return
		}
		respondAction(c, http.StatusOK, orderView, notices, nil)
		return
	}

	order, notices, err := svc.Update(ctx, id, orderInput(c))
	if err != nil {
		respondError(c, err, orderView)
		return
	}
	respondAction(c, http.StatusOK, orderView, notices, order)
}

// AddOrderForClient handles POST /order/add/:client_id/ - creates an order bound to the client
func AddOrderForClient(c *gin.Context) {
	clientID, err := parseID(c.Param("client_id"))
	if err != nil {
		respondError(c, err, orderView)
		return
	}

	order, notices, err := orderService().Create(c.Request.Context(), clientID, orderInput(c))
	if err != nil {
		respondError(c, err, orderView)
		return
	}
	respondAction(c, http.StatusCreated, orderView, notices, order)
}
