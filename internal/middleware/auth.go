// Package middleware holds the gin middleware shared by the API routes.
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/apierrors"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/auth"
)

const currentUserKey = "current_user"

// RequireAuth validates the bearer token and stores the claims on the
// context for handlers to read via GetCurrentUser.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.Error(c, apierrors.CodeUnauthorized)
			c.Abort()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			apierrors.Error(c, apierrors.CodeInvalidToken)
			c.Abort()
			return
		}

		claims, err := jwtManager.Validate(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				apierrors.Error(c, apierrors.CodeTokenExpired)
			} else {
				apierrors.Error(c, apierrors.CodeInvalidToken)
			}
			c.Abort()
			return
		}

		c.Set(currentUserKey, claims)
		c.Next()
	}
}

// RequireRole allows only the listed roles past this point. Must run after
// RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetCurrentUser(c)
		if !ok {
			apierrors.Error(c, apierrors.CodeUnauthorized)
			c.Abort()
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		apierrors.Error(c, apierrors.CodeForbidden)
		c.Abort()
	}
}

// GetCurrentUser returns the authenticated user's claims, if any.
func GetCurrentUser(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
