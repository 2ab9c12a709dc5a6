package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/streamvault/internal/models"
)

// PrincipalHeader carries the caller identity. Absent or blank means anonymous.
const PrincipalHeader = "X-Principal"

const principalKey = "principal"

// Identify stores the caller principal on the gin context
func Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := models.Principal(strings.TrimSpace(c.GetHeader(PrincipalHeader)))
		c.Set(principalKey, p)
		c.Next()
	}
}

// Principal returns the caller stored by Identify, or the anonymous principal
func Principal(c *gin.Context) models.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(models.Principal); ok {
			return p
		}
	}
	return models.Anonymous
}
