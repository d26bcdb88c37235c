package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
)

// getClaimsFromContext returns the JWT claims set by the auth middleware, or
// nil on an unauthenticated request.
func getClaimsFromContext(c echo.Context) *models.JwtCustomClaims {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// getUserIDFromContext returns the authenticated user's id, or zero when the
// request carries no valid claims.
func getUserIDFromContext(c echo.Context) uint {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
