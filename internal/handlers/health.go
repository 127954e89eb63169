package handlers

import "github.com/gin-gonic/gin"

// Health returns a liveness probe handler.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "collabdesk"})
	}
}
