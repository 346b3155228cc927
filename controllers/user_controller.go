package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/mill-ops-console/config"
	"github.com/kendall-kelly/mill-ops-console/services"
)

const profileView = "/api/me/"

func userService() *services.UserService {
	return services.NewUserService(config.GetDB(), config.GetLogger(), nil)
}

// actingUserID returns the staff user resolved for this request.
// Without one the request is answered with 401 and ok is false.
func actingUserID(c *gin.Context) (uint, bool) {
	id := services.ActorFromContext(c.Request.Context())
	if id == nil {
		abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information", "")
		return 0, false
	}
	return *id, true
}

// GetMyProfile handles GET /api/me/ - the staff user operating the console
func GetMyProfile(c *gin.Context) {
	id, ok := actingUserID(c)
	if !ok {
		return
	}

	user, err := userService().Profile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "")
		return
	}

	respondView(c, gin.H{"user": user})
}

// UpdateMyProfile handles POST /api/me/ - changes the display name or email
func UpdateMyProfile(c *gin.Context) {
	id, ok := actingUserID(c)
	if !ok {
		return
	}

	user, notices, err := userService().UpdateProfile(c.Request.Context(), id, c.PostForm("name"), c.PostForm("email"))
	if err != nil {
		respondError(c, err, profileView)
		return
	}

	respondAction(c, http.StatusOK, profileView, notices, user)
}
