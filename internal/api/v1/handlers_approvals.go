package v1

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/apierrors"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/approval"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/middleware"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// handlePendingApprovals lists the approval records awaiting the current
// user's decision.
func (router *APIRouter) handlePendingApprovals(c *gin.Context) {
	claims, _ := middleware.GetCurrentUser(c)

	summaries, err := router.approvals.ListPendingForApprover(c.Request.Context(), claims.UserID)
	if err != nil {
		router.respondDomainError(c, err)
		return
	}
	sendSuccess(c, gin.H{"approvals": summaries})
}

type approvalActionBody struct {
	ApprovalID string `json:"approval_id" binding:"required"`
	Action     string `json:"action" binding:"required"`
	Comments   string `json:"comments"`
}

// handleApprovalAction applies one approver decision. Reject and clarify
// require a comment; that is checked here before any store access so a bad
// submission never reaches the engine.
func (router *APIRouter) handleApprovalAction(c *gin.Context) {
	claims, _ := middleware.GetCurrentUser(c)

	var body approvalActionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		apierrors.Error(c, apierrors.CodeInvalidRequest)
		return
	}

	action, err := approval.ParseAction(body.Action)
	if err != nil {
		apierrors.Error(c, apierrors.CodeUnknownAction)
		return
	}
	if (action == approval.ActionReject || action == approval.ActionClarify) &&
		strings.TrimSpace(body.Comments) == "" {
		apierrors.Error(c, apierrors.CodeCommentRequired)
		return
	}

	rec, err := router.engine.ApplyAction(c.Request.Context(), body.ApprovalID, action, body.Comments, actorFromClaims(claims))
	if err != nil {
		router.respondDomainError(c, err)
		return
	}
	sendSuccess(c, gin.H{"approval": rec})
}

// handleListRequestApprovals returns the full approval record set for one
// request, each with its normalized display status, plus the derived overall
// status.
func (router *APIRouter) handleListRequestApprovals(c *gin.Context) {
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

	type approvalView struct {
		models.ApprovalRecord
		DisplayStatus string `json:"display_status"`
	}
	views := make([]approvalView, 0, len(records))
	for _, rec := range records {
		views = append(views, approvalView{
			ApprovalRecord: rec,
			DisplayStatus:  approval.DisplayStatus(approval.NormalizeStatus(rec.Status)),
		})
	}

	sendSuccess(c, gin.H{
		"approvals":      views,
		"overall_status": approval.OverallStatus(req, records, nil),
	})
}

// handleAutoApprove runs the duplicate-approver sweep for one request.
func (router *APIRouter) handleAutoApprove(c *gin.Context) {
	result, err := router.engine.AutoApproveDuplicates(c.Request.Context(), c.Param("id"))
	if err != nil {
		router.respondDomainError(c, err)
		return
	}

	failed := make(map[string]string, len(result.Failed))
	for id, ferr := range result.Failed {
		failed[id] = ferr.Error()
	}
	sendSuccess(c, gin.H{
		"candidates": result.Candidates,
		"approved":   result.Approved,
		"failed":     failed,
	})
}
