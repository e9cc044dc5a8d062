package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/apierrors"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/conversation"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/middleware"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// handleListConversations returns one approval's thread with messages
// rendered to safe HTML, plus the viewer's unread count and badge state.
func (router *APIRouter) handleListConversations(c *gin.Context) {
	claims, _ := middleware.GetCurrentUser(c)
	ctx := c.Request.Context()

	rec, err := router.approvals.GetByID(ctx, c.Param("id"))
	if err != nil {
		router.respondDomainError(c, err)
		return
	}
	entries, err := router.conversations.ListByApproval(ctx, rec.ID)
	if err != nil {
		router.respondDomainError(c, err)
		return
	}

	unread, err := router.tracker.Unread(ctx, claims.UserID, rec.RequestID, rec.ID, entries)
	if err != nil {
		router.respondDomainError(c, err)
		return
	}

	type entryView struct {
		models.ConversationEntry
		HTML string `json:"html"`
	}
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, entryView{
			ConversationEntry: e,
			HTML:              conversation.RenderMessage(e.Message),
		})
	}

	sendSuccess(c, gin.H{
		"conversations": views,
		"unread":        unread,
		"show_badge":    conversation.ShowBadge(unread, false),
	})
}

type postConversationBody struct {
	Message string `json:"message" binding:"required"`
	Type    string `json:"type"`
}

// handlePostConversation appends one message to an approval's thread. The
// entry type defaults from the caller's role when not given.
func (router *APIRouter) handlePostConversation(c *gin.Context) {
	claims, _ := middleware.GetCurrentUser(c)
	ctx := c.Request.Context()

	var body postConversationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		apierrors.Error(c, apierrors.CodeInvalidRequest)
		return
	}

	rec, err := router.approvals.GetByID(ctx, c.Param("id"))
	if err != nil {
		router.respondDomainError(c, err)
		return
	}

	entryType := body.Type
	switch entryType {
	case "":
		entryType = actorType(claims.Role)
	case models.EntryTypeSystem:
		// Callers may not forge system entries.
		apierrors.Error(c, apierrors.CodeInvalidRequest)
		return
	case models.EntryTypeUser, models.EntryTypeRequester, models.EntryTypeTechnician, models.EntryTypeApprover:
	default:
		apierrors.Error(c, apierrors.CodeInvalidRequest)
		return
	}

	entry := &models.ConversationEntry{
		ID:         uuid.NewString(),
		RequestID:  rec.RequestID,
		ApprovalID: rec.ID,
		Type:       entryType,
		Author:     actorName(claims),
		Message:    body.Message,
		CreatedAt:  time.Now().UTC(),
	}
	if err := router.conversations.Append(ctx, entry); err != nil {
		router.respondDomainError(c, err)
		return
	}
	sendCreated(c, gin.H{"conversation": entry})
}

// handleMarkThreadRead sets the viewer's watermark to the newest entry of the
// freshly loaded thread and clears their unread count.
func (router *APIRouter) handleMarkThreadRead(c *gin.Context) {
	claims, _ := middleware.GetCurrentUser(c)
	ctx := c.Request.Context()

	rec, err := router.approvals.GetByID(ctx, c.Param("id"))
	if err != nil {
		router.respondDomainError(c, err)
		return
	}
	// Re-fetch inside the handler so the watermark covers messages that
	// arrived after the client's last fetch.
	entries, err := router.conversations.ListByApproval(ctx, rec.ID)
	if err != nil {
		router.respondDomainError(c, err)
		return
	}
	if err := router.tracker.OpenThread(ctx, claims.UserID, rec.RequestID, rec.ID, entries); err != nil {
		router.respondDomainError(c, err)
		return
	}
	sendSuccess(c, gin.H{"unread": 0})
}
