package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campushub/campus-portal-api/internal/middleware"
	"github.com/campushub/campus-portal-api/internal/models"
)

// claimsFromContext returns the authenticated claims, or nil when the request
// carried no valid session.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
