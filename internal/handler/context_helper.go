package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skolaris/skolaris-api/internal/middleware"
	"github.com/skolaris/skolaris-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// companyFromContext returns the authenticated tenant id, 0 when missing.
func companyFromContext(c *gin.Context) int64 {
	claims := claimsFromContext(c)
	if claims == nil {
		return 0
	}
	return claims.CompanyID
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
