package controllers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the operations console on r
func RegisterRoutes(r gin.IRoutes) {
	r.GET("/", MainDashboard)

	r.GET("/client/", ClientDashboard)
	r.POST("/client/", ClientAction)

	r.GET("/order/", OrderDashboard)
	r.POST("/order/", OrderAction)
	r.POST("/order/add/:client_id/", AddOrderForClient)

	r.GET("/reorder/", ReorderDashboard)
	r.POST("/reorder/", PlaceReorder)

	r.GET("/inventory/", InventoryDashboard)
	r.POST("/inventory/", InventoryAction)

	r.GET("/finance/", FinanceDashboard)
	r.POST("/finance/", FinanceAction)
	r.GET("/finance/export/", ExportFinance)
	r.GET("/finance/invoice/:id/", ViewInvoice)
	r.GET("/finance/invoice/:id/pdf/", DownloadInvoicePDF)

	r.GET("/api/clients/", ClientSearchAPI)
	r.GET("/api/material/:id/vendors/", MaterialVendors)

	r.GET("/api/me/", GetMyProfile)
	r.POST("/api/me/", UpdateMyProfile)
}
