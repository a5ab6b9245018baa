package handlers

import (
	"net/http"

	"kidala/middleware"
	"kidala/services"
	"kidala/utils"

	"github.com/gin-gonic/gin"
)

var appServices *services.Container

func SetServices(container *services.Container) {
	appServices = container
}

func getServices() *services.Container {
	if appServices == nil {
		panic("services container is not initialized")
	}
	return appServices
}

func caller(c *gin.Context) services.Caller {
	return services.Caller{
		UserID: middleware.CallerID(c),
		Domain: middleware.CallerDomain(c),
		IP:     c.ClientIP(),
	}
}

func respondServiceError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if appErr, ok := err.(*services.AppError); ok {
		utils.Error(c, appErr.HTTPCode, appErr.Message)
		return true
	}
	utils.Error(c, http.StatusInternalServerError, "internal error")
	return true
}
