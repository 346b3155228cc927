package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/mill-ops-console/config"
	"github.com/kendall-kelly/mill-ops-console/services"
)

// MainDashboard handles GET / - aggregate counts and the latest activity
func MainDashboard(c *gin.Context) {
	summary, err := services.NewDashboardService(config.GetDB(), config.GetLogger()).Summary(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}

	respondView(c, gin.H{"summary": summary})
}
