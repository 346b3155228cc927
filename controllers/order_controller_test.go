package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/kendall-kelly/mill-ops-console/models"
	"github.com/kendall-kelly/mill-ops-console/services"
	"github.com/kendall-kelly/mill-ops-console/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOrderForClient(t *testing.T) {
	router, db := newTestRouter(t)
	client := testutil.CreateClient(t, db, "Ali Khan", "")

	w := postForm(router, fmt.Sprintf("/order/add/%d/", client.ID), url.Values{
		"order_code":  {"ORD-0001"},
		"quantity":    {"25"},
		"payment":     {"1500.50"},
		"fabric_type": {"Denim"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decode(t, w)
	assert.Equal(t, "/order/", env.Redirect)
	assert.Equal(t, "Order ORD-0001 added successfully for Ali Khan!", env.Notices[0].Message)

	var order models.Order
	require.NoError(t, db.Where("order_code = ?", "ORD-0001").First(&order).Error)
	assert.Equal(t, client.ID, order.ClientID)
	assert.Equal(t, 25, order.Quantity)
	assert.True(t, order.Payment.Equal(decimal.RequireFromString("1500.50")))
	assert.Equal(t, models.OrderStatusSamplePreparing, order.Status)
}

func TestAddOrderForClientErrors(t *testing.T) {
	router, db := newTestRouter(t)
	client := testutil.CreateClient(t, db, "Ali Khan", "")
	testutil.CreateOrder(t, db, client.ID, "ORD-TAKEN", "10")

	tests := []struct {
		name       string
		path       string
		form       url.Values
		wantStatus int
		wantCode   string
	}{
		{"unknown client", "/order/add/99/", url.Values{"quantity": {"1"}, "payment": {"1"}}, http.StatusNotFound, "NOT_FOUND"},
		{"bad client id", "/order/add/abc/", url.Values{"quantity": {"1"}, "payment": {"1"}}, http.StatusBadRequest, services.CodeValidation},
		{"non-numeric quantity", fmt.Sprintf("/order/add/%d/", client.ID), url.Values{"quantity": {"ten"}, "payment": {"1"}}, http.StatusBadRequest, services.CodeInvalidNumber},
		{"duplicate code", fmt.Sprintf("/order/add/%d/", client.ID), url.Values{"order_code": {"ORD-TAKEN"}, "quantity": {"1"}, "payment": {"1"}}, http.StatusBadRequest, services.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(router, tt.path, tt.form)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, decode(t, w).Error.Code)
		})
	}
}

func TestEditOrder(t *testing.T) {
	router, db := newTestRouter(t)
	client := testutil.CreateClient(t, db, "Ali Khan", "")
	order := testutil.CreateOrder(t, db, client.ID, "ORD-1", "100")
	testutil.CreateInvoice(t, db, order.ID, "60")

	w := postForm(router, "/order/", url.Values{
		"edit_order": {""},
		"order_id":   {fmt.Sprint(order.ID)},
		"quantity":   {"12"},
		"payment":    {"120"},
		"status":     {models.OrderStatusShipped},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Order ORD-1 updated successfully.", decode(t, w).Notices[0].Message)

	var updated models.Order
	require.NoError(t, db.First(&updated, order.ID).Error)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	assert.Equal(t, 12, updated.Quantity)

	w = postForm(router, "/order/", url.Values{
		"edit_order": {""},
		"order_id":   {fmt.Sprint(order.ID)},
		"quantity":   {"12"},
		"payment":    {"50"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Order total cannot be less than the amount already paid ($60.00).", decode(t, w).Error.Message)
}

func TestDeleteOrder(t *testing.T) {
	router, db := newTestRouter(t)
	client := testutil.CreateClient(t, db, "Ali Khan", "")
	order := testutil.CreateOrder(t, db, client.ID, "ORD-1", "100")
	testutil.CreateInvoice(t, db, order.ID, "60")

	w := postForm(router, "/order/", url.Values{"delete_order": {""}, "order_id": {fmt.Sprint(order.ID)}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Order ORD-1 deleted successfully.", decode(t, w).Notices[0].Message)

	var orders, invoices int64
	db.Model(&models.Order{}).Count(&orders)
	db.Model(&models.Invoice{}).Count(&invoices)
	assert.Zero(t, orders)
	assert.Zero(t, invoices)

	w = postForm(router, "/order/", url.Values{"order_id": {fmt.Sprint(order.ID)}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderDashboard(t *testing.T) {
	router, db := newTestRouter(t)
	client := testutil.CreateClient(t, db, "Ali Khan", "")
	testutil.CreateOrder(t, db, client.ID, "ORD-AAA", "100")
	shipped := testutil.CreateOrder(t, db, client.ID, "ORD-BBB", "100")
	require.NoError(t, db.Model(&shipped).Update("status", models.OrderStatusShipped).Error)

	var data struct {
		Orders   []models.Order      `json:"orders"`
		Stats    services.OrderStats `json:"stats"`
		Statuses []string            `json:"statuses"`
	}
	w := get(router, "/order/?status=shipped")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &data)

	require.Len(t, data.Orders, 1)
	assert.Equal(t, "ORD-BBB", data.Orders[0].OrderCode)
	assert.Equal(t, services.OrderStats{Total: 2, Pending: 2, Shipped: 1, Completed: 0}, data.Stats)
	assert.Equal(t, models.OrderStatuses, data.Statuses)
}
