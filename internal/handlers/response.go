package handlers

import (
	"github.com/gin-gonic/gin"
)

// The browser extension expects every non-payload response as {"message": …}.
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}
