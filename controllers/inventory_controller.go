package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/mill-ops-console/config"
	"github.com/kendall-kelly/mill-ops-console/services"
)

const inventoryView = "/inventory/"

func inventoryService() *services.InventoryService {
	return services.NewInventoryService(config.GetDB(), config.GetLogger())
}

func materialInput(c *gin.Context) services.MaterialInput {
	return services.MaterialInput{
		Name:        c.PostForm("name"),
		Quantity:    c.PostForm("quantity"),
		Unit:        c.PostForm("unit"),
		Threshold:   c.PostForm("threshold"),
		MaxQuantity: c.PostForm("max_quantity"),
	}
}

// InventoryDashboard handles GET /inventory/ - materials with stock levels, search, filter and stats
func InventoryDashboard(c *gin.Context) {
	svc := inventoryService()
	ctx := c.Request.Context()

	materials, err := svc.List(ctx, c.Query("search"), c.Query("status"))
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
		"materials": materials,
		"stats":     stats,
		"search":    c.Query("search"),
		"status":    c.Query("status"),
	})
}

// InventoryAction handles POST /inventory/ - delete_material, edit_material, or a new material
func InventoryAction(c *gin.Context) {
	svc := inventoryService()
	ctx := c.Request.Context()

	switch {
	case has(c, "delete_material"):
		id, err := parseID(c.PostForm("material_id"))
		if err != nil {
			respondError(c, err, inventoryView)
			return
		}
		notices, err := svc.Delete(ctx, id)
		if err != nil {
			respondError(c, err, inventoryView)
			return
		}
		respondAction(c, http.StatusOK, inventoryView, notices, nil)

	case has(c, "edit_material"):
		id, err := parseID(c.PostForm("material_id"))
		if err != nil {
			respondError(c, err, inventoryView)
			return
		}
		material, notices, err := svc.Update(ctx, id, materialInput(c))
		if err != nil {
			respondError(c, err, inventoryView)
			return
		}
		respondAction(c, http.StatusOK, inventoryView, notices, material)

	case has(c, "name") && has(c, "quantity"):
		material, notices, err := svc.Create(ctx, materialInput(c))
		if err != nil {
			respondError(c, err, inventoryView)
			return
		}
		respondAction(c, http.StatusCreated, inventoryView, notices, material)

	default:
		abortWithError(c, http.StatusBadRequest, services.CodeValidation, "Unknown inventory action.", inventoryView)
	}
}

// MaterialVendors handles GET /api/material/:id/vendors/ - vendors linked to a material
func MaterialVendors(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
		return
	}

	vendors, err := inventoryService().Vendors(c.Request.Context(), id)
	if err != nil {
		var notFound *services.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
			return
		}
		respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"vendors": vendors})
}
