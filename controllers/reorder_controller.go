package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/mill-ops-console/config"
	"github.com/kendall-kelly/mill-ops-console/services"
)

const reorderView = "/reorder/"

func reorderService() *services.ReorderService {
	return services.NewReorderService(config.GetDB(), config.GetLogger())
}

// ReorderDashboard handles GET /reorder/ - materials at or below threshold
func ReorderDashboard(c *gin.Context) {
	svc := reorderService()
	ctx := c.Request.Context()

	materials, err := svc.Candidates(ctx, c.Query("search"), c.Query("status"))
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
		"materials":  materials,
		"stats":      stats,
		"new_vendor": services.NewVendorSentinel,
		"search":     c.Query("search"),
		"status":     c.Query("status"),
	})
}

// PlaceReorder handles POST /reorder/ - records a reorder from an existing or new vendor
func PlaceReorder(c *gin.Context) {
	materialID, err := parseID(c.PostForm("material_id"))
	if err != nil {
		respondError(c, err, reorderView)
		return
	}

	reorder, notices, err := reorderService().PlaceReorder(c.Request.Context(), services.ReorderRequest{
		MaterialID:    materialID,
		Quantity:      c.PostForm("order_quantity"),
		VendorName:    c.PostForm("vendor_name"),
		NewVendorName: c.PostForm("new_vendor_name"),
		DeliveryDate:  c.PostForm("delivery_date"),
	})
	if err != nil {
		respondError(c, err, reorderView)
		return
	}

	respondAction(c, http.StatusCreated, reorderView, notices, reorder)
}
