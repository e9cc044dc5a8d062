package v1

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/apierrors"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/approval"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/auth"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/history"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/middleware"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/template"
)

type createRequestBody struct {
	Subject    string          `json:"subject" binding:"required"`
	TemplateID string          `json:"template_id" binding:"required"`
	Priority   string          `json:"priority"`
	FormData   json.RawMessage `json:"form_data"`
}

// handleCreateRequest validates the submitted form against its template,
// stores the request and initializes the approval chain.
func (router *APIRouter) handleCreateRequest(c *gin.Context) {
	claims, _ := middleware.GetCurrentUser(c)

	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		apierrors.Error(c, apierrors.CodeInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	tpl, err := router.templates.Get(body.TemplateID)
	if err != nil {
		router.respondDomainError(c, err)
		return
	}
	if err := router.templates.ValidateFormData(body.TemplateID, body.FormData); err != nil {
		router.respondDomainError(c, err)
		return
	}

	now := time.Now().UTC()
	status := models.RequestStatusOpen
	approvalStatus := approval.StatusApproved.String()
	if tpl.HasApprovals() {
		status = models.RequestStatusForApproval
		approvalStatus = approval.StatusPending.String()
	}
	if body.Priority == "" {
		body.Priority = "medium"
	}

	req := &models.Request{
		ID:             uuid.NewString(),
		Subject:        body.Subject,
		RequesterID:    claims.UserID,
		RequesterName:  claims.Name,
		RequesterEmail: claims.Email,
		TemplateID:     body.TemplateID,
		Status:         status,
		Priority:       body.Priority,
		ApprovalStatus: approvalStatus,
		FormData:       body.FormData,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := router.requests.Create(ctx, req); err != nil {
		router.respondDomainError(c, err)
		return
	}

	router.appendHistory(c, req.ID, models.HistoryActionCreated, claims, tpl.Name)

	if err := router.engine.InitializeChain(ctx, req, tpl.ApprovalChain); err != nil {
		router.respondDomainError(c, err)
		return
	}

	sendCreated(c, gin.H{"request": req})
}

// handleListRequests lists requests, optionally filtered by status. Requesters
// only see their own.
func (router *APIRouter) handleListRequests(c *gin.Context) {
	claims, _ := middleware.GetCurrentUser(c)

	filter := models.RequestFilter{
		Status: c.Query("status"),
		Limit:  100,
	}
	if claims.Role == models.RoleRequester {
		filter.RequesterID = claims.UserID
	}

	requests, err := router.requests.List(c.Request.Context(), filter)
	if err != nil {
		router.respondDomainError(c, err)
		return
	}
	sendSuccess(c, gin.H{"requests": requests})
}

// handleGetRequest returns one request with its template, approval records,
// request-level notes and the derived overall approval status.
func (router *APIRouter) handleGetRequest(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := router.requests.GetByID(ctx, c.Param("id"))
	if err != nil {
		router.respondDomainError(c, err)
		return
	}
	records, err := router.approvals.ListByRequest(ctx, req.ID)
	if err != nil {
		router.respondDomainError(c, err)
		return
	}
	notes, err := router.conversations.ListNotes(ctx, req.ID)
	if err != nil {
		router.respondDomainError(c, err)
		return
	}

	var tpl *models.FormTemplate
	if t, err := router.templates.Get(req.TemplateID); err == nil {
		tpl = t
	} else if !errors.Is(err, template.ErrTemplateNotFound) {
		router.respondDomainError(c, err)
		return
	}

	sendSuccess(c, gin.H{
		"request":        req,
		"template":       tpl,
		"approvals":      records,
		"conversations":  notes,
		"display_status": approval.OverallStatus(req, records, nil),
	})
}

// handleCancelRequest cancels a request. Only the requester or an admin may
// cancel, and only while it is not already closed or cancelled.
func (router *APIRouter) handleCancelRequest(c *gin.Context) {
	claims, _ := middleware.GetCurrentUser(c)
	ctx := c.Request.Context()

	req, err := router.requests.GetByID(ctx, c.Param("id"))
	if err != nil {
		router.respondDomainError(c, err)
		return
	}
	if claims.UserID != req.RequesterID && claims.Role != models.RoleAdmin {
		apierrors.Error(c, apierrors.CodeForbidden)
		return
	}
	if req.IsCancelled() || req.Status == models.RequestStatusClosed {
		apierrors.Error(c, apierrors.CodeRequestCancelled)
		return
	}

	if err := router.requests.SetStatus(ctx, req.ID, models.RequestStatusCancelled); err != nil {
		router.respondDomainError(c, err)
		return
	}
	router.appendHistory(c, req.ID, models.HistoryActionCancelled, claims, "")

	sendSuccess(c, gin.H{"status": models.RequestStatusCancelled})
}

// handleRequestHistory returns the request's audit log, formatted for
// display.
func (router *APIRouter) handleRequestHistory(c *gin.Context) {
	entries, err := router.history.ListByRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		router.respondDomainError(c, err)
		return
	}
	sendSuccess(c, gin.H{"history": history.FormatAll(entries)})
}

// handleListTemplates lists the available form templates.
func (router *APIRouter) handleListTemplates(c *gin.Context) {
	sendSuccess(c, gin.H{"templates": router.templates.List()})
}

func (router *APIRouter) appendHistory(c *gin.Context, requestID, action string, claims *auth.Claims, details string) {
	entry := &models.HistoryEntry{
		ID:        uuid.NewString(),
		RequestID: requestID,
		Action:    action,
		Actor:     actorName(claims),
		ActorType: actorType(claims.Role),
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if err := router.history.Append(c.Request.Context(), entry); err != nil {
		router.logger.Printf("append history for %s: %v", requestID, err)
	}
}
