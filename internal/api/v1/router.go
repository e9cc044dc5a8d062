// Package v1 implements the versioned JSON API.
package v1

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/approval"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/auth"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/conversation"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/middleware"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/repository"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/template"
)

// APIRouter carries the dependencies shared by all v1 handlers.
type APIRouter struct {
	requests      repository.RequestRepository
	approvals     repository.ApprovalRepository
	conversations repository.ConversationRepository
	history       repository.HistoryRepository
	users         repository.UserRepository
	engine        *approval.Engine
	templates     *template.Registry
	tracker       *conversation.Tracker
	jwt           *auth.JWTManager
	logger        *log.Logger
}

// Deps bundles the collaborators the router needs.
type Deps struct {
	Requests      repository.RequestRepository
	Approvals     repository.ApprovalRepository
	Conversations repository.ConversationRepository
	History       repository.HistoryRepository
	Users         repository.UserRepository
	Engine        *approval.Engine
	Templates     *template.Registry
	Tracker       *conversation.Tracker
	JWT           *auth.JWTManager
}

func NewAPIRouter(deps Deps) *APIRouter {
	return &APIRouter{
		requests:      deps.Requests,
		approvals:     deps.Approvals,
		conversations: deps.Conversations,
		history:       deps.History,
		users:         deps.Users,
		engine:        deps.Engine,
		templates:     deps.Templates,
		tracker:       deps.Tracker,
		jwt:           deps.JWT,
		logger:        log.New(os.Stdout, "api: ", log.LstdFlags),
	}
}

// RegisterRoutes mounts the v1 API under the given group.
func (router *APIRouter) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", router.handleHealth)
	rg.POST("/auth/login", router.handleLogin)

	authed := rg.Group("")
	authed.Use(middleware.RequireAuth(router.jwt))
	{
		authed.GET("/auth/me", router.handleCurrentUser)

		authed.GET("/templates", router.handleListTemplates)

		authed.POST("/requests", router.handleCreateRequest)
		authed.GET("/requests", router.handleListRequests)
		authed.GET("/requests/export", router.handleExportRequests)
		authed.GET("/requests/:id", router.handleGetRequest)
		authed.POST("/requests/:id/cancel", router.handleCancelRequest)
		authed.GET("/requests/:id/approvals", router.handleListRequestApprovals)
		authed.POST("/requests/:id/approvals/auto-approve",
			middleware.RequireRole(models.RoleTechnician, models.RoleAdmin), router.handleAutoApprove)
		authed.GET("/requests/:id/history", router.handleRequestHistory)

		authed.GET("/approvals/pending", router.handlePendingApprovals)
		authed.POST("/approvals/action", router.handleApprovalAction)
		authed.GET("/approvals/:id/conversations", router.handleListConversations)
		authed.POST("/approvals/:id/conversations", router.handlePostConversation)
		authed.POST("/approvals/:id/conversations/mark-read", router.handleMarkThreadRead)
	}
}

// APIResponse is the envelope every v1 endpoint responds with.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func sendSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func sendCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

func sendError(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{Success: false, Error: message})
}

func (router *APIRouter) handleHealth(c *gin.Context) {
	sendSuccess(c, gin.H{
		"status":  "healthy",
		"service": "helpdesk-api",
	})
}
