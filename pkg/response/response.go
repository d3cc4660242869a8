package response

import "github.com/gin-gonic/gin"

// Error writes a uniform error envelope.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// OK writes a success envelope with an optional message.
func OK(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}
