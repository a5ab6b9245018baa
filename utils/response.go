package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, data gin.H) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data gin.H) {
	c.JSON(http.StatusCreated, data)
}

func Error(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"msg": msg})
}
