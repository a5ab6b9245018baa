package handlers

import (
	"net/http"

	"kidala/services"
	"kidala/utils"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "missing username or password")
		return
	}

	out, err := getServices().Auth.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, gin.H{
		"access_token": out.AccessToken,
		"info":         out.Info,
	})
}

func GetUser(c *gin.Context) {
	ca := caller(c)
	if ca.Anonymous() {
		utils.Error(c, http.StatusBadRequest, "no token provided")
		return
	}

	user, err := getServices().Auth.GetUser(c.Request.Context(), ca.UserID)
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, gin.H{"user": user})
}

func GetAllUsers(c *gin.Context) {
	users, err := getServices().Auth.ListUsers(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	c.JSON(http.StatusOK, users)
}
