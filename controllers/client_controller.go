package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/mill-ops-console/config"
	"github.com/kendall-kelly/mill-ops-console/services"
)

const clientView = "/client/"

func clientService() *services.ClientService {
	return services.NewClientService(config.GetDB(), config.GetLogger(), services.GetImageService())
}

// ClientDashboard handles GET /client/ - lists clients with search, status filter and stats
func ClientDashboard(c *gin.Context) {
	svc := clientService()
	ctx := c.Request.Context()

	clients, err := svc.List(ctx, c.Query("search"), c.Query("status"))
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
		"clients": clients,
		"stats":   stats,
		"search":  c.Query("search"),
		"status":  c.Query("status"),
	})
}

// ClientAction handles POST /client/ - deletes with delete_client, updates when client_id is set, otherwise creates
func ClientAction(c *gin.Context) {
	svc := clientService()
	ctx := c.Request.Context()

	if has(c, "delete_client") {
		id, err := parseID(c.PostForm("client_id"))
		if err != nil {
			respondError(c, err, clientView)
			return
		}
		notices, err := svc.Delete(ctx, id)
		if err != nil {
			respondError(c, err, clientView)
			return
		}
		respondAction(c, http.StatusOK, clientView, notices, nil)
		return
	}

	var id uint
	if raw := strings.TrimSpace(c.PostForm("client_id")); raw != "" {
		var err error
		if id, err = parseID(raw); err != nil {
			respondError(c, err, clientView)
			return
		}
	}

	avatar, err := c.FormFile("avatar")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		respondError(c, &services.ValidationError{Code: services.CodeValidation, Message: "Invalid avatar upload."}, clientView)
		return
	}

	client, notices, err := svc.Save(ctx, id, services.ClientInput{
		Name:     c.PostForm("name"),
		Email:    c.PostForm("email"),
		Phone:    c.PostForm("phone"),
		Company:  c.PostForm("company"),
		IsActive: checked(c.PostForm("is_active")),
		Avatar:   avatar,
	})
	if err != nil {
		respondError(c, err, clientView)
		return
	}

	status := http.StatusOK
	if id == 0 {
		status = http.StatusCreated
	}
	respondAction(c, status, clientView, notices, client)
}

// ClientSearchAPI handles GET /api/clients/?q= - autocomplete for the order form
func ClientSearchAPI(c *gin.Context) {
	matches, err := clientService().Lookup(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, matches)
}

// checked reads an HTML checkbox value
func checked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
