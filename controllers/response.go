package controllers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/mill-ops-console/config"
	"github.com/kendall-kelly/mill-ops-console/services"
	"github.com/kendall-kelly/mill-ops-console/utils"
	"go.uber.org/zap"
)

const (
	flashCookie = "flash"
	flashMaxAge = 60
)

// respondView answers a dashboard GET. Notices left by a previous redirect are
// attached and cleared.
func respondView(c *gin.Context, data gin.H) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"notices": takeFlash(c),
	})
}

// respondAction answers a successful POST with its notices and the view to go back to
func respondAction(c *gin.Context, status int, redirect string, notices []services.Notice, data interface{}) {
	if notices == nil {
		notices = []services.Notice{}
	}
	body := gin.H{
		"success":  true,
		"notices":  notices,
		"redirect": redirect,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// respondError maps domain errors to the error envelope
func respondError(c *gin.Context, err error, redirect string) {
	var (
		notFound   *services.NotFoundError
		validation *services.ValidationError
		toolErr    *services.ExternalToolError
		uploadErr  *utils.FileUploadError
	)

	switch {
	case errors.As(err, &notFound):
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", notFound.Error(), redirect)
	case errors.As(err, &validation):
		abortWithError(c, http.StatusBadRequest, validation.Code, validation.Message, redirect)
	case errors.As(err, &uploadErr):
		abortWithError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message, redirect)
	case errors.As(err, &toolErr):
		config.GetLogger().Warn("external tool failed", zap.String("code", toolErr.Code), zap.Error(err))
		abortWithError(c, http.StatusBadGateway, toolErr.Code, toolErr.Message, redirect)
	default:
		config.GetLogger().Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "DATABASE_ERROR", "An unexpected error occurred", redirect)
	}
}

func abortWithError(c *gin.Context, status int, code, message, redirect string) {
	body := gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
	if redirect != "" {
		body["redirect"] = redirect
	}
	c.AbortWithStatusJSON(status, body)
}

// redirectWithNotice stores the notice for the next dashboard GET and sends a 303 to target
func redirectWithNotice(c *gin.Context, target string, n services.Notice) {
	setFlash(c, []services.Notice{n})
	c.Redirect(http.StatusSeeOther, target)
}

func setFlash(c *gin.Context, notices []services.Notice) {
	payload, err := json.Marshal(notices)
	if err != nil {
		return
	}
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(payload), flashMaxAge, "/", "", false, true)
}

func takeFlash(c *gin.Context) []services.Notice {
	notices := []services.Notice{}

	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return notices
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	payload, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return notices
	}
	_ = json.Unmarshal(payload, &notices)
	return notices
}

// parseID reads a positive numeric id from a path or form value
func parseID(value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, &services.ValidationError{Code: services.CodeValidation, Message: "Invalid id."}
	}
	return uint(id), nil
}

// has reports whether a form field was submitted, empty or not
func has(c *gin.Context, field string) bool {
	_, ok := c.GetPostForm(field)
	return ok
}
