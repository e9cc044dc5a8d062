package v1

import (
	"errors"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/apierrors"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/middleware"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/repository"
)

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleLogin authenticates a user and issues an access token.
func (router *APIRouter) handleLogin(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apierrors.Error(c, apierrors.CodeInvalidRequest)
		return
	}

	user, err := router.users.GetByLogin(c.Request.Context(), body.Login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			apierrors.ErrorWithMessage(c, apierrors.CodeUnauthorized, "Invalid credentials")
			return
		}
		router.respondDomainError(c, err)
		return
	}
	if user.ValidID != 1 {
		apierrors.ErrorWithMessage(c, apierrors.CodeUnauthorized, "Account disabled")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)) != nil {
		apierrors.ErrorWithMessage(c, apierrors.CodeUnauthorized, "Invalid credentials")
		return
	}

	token, err := router.jwt.Generate(user)
	if err != nil {
		router.respondDomainError(c, err)
		return
	}

	sendSuccess(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"login": user.Login,
			"email": user.Email,
			"name":  user.FullName(),
			"role":  user.Role,
		},
	})
}

// handleCurrentUser returns the authenticated user's claims.
func (router *APIRouter) handleCurrentUser(c *gin.Context) {
	claims, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Error(c, apierrors.CodeUnauthorized)
		return
	}
	sendSuccess(c, gin.H{
		"id":    claims.UserID,
		"email": claims.Email,
		"name":  claims.Name,
		"role":  claims.Role,
	})
}
