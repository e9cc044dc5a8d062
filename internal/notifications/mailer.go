package notifications

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/flosch/pongo2/v6"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// Mailer turns workflow events into outbound emails. It satisfies the
// approval engine's Notifier interface. Every send is best-effort: failures
// are logged, never propagated.
type Mailer struct {
	provider EmailProvider
	logger   *log.Logger
}

func NewMailer(provider EmailProvider) *Mailer {
	return &Mailer{
		provider: provider,
		logger:   log.New(os.Stdout, "notifications: ", log.LstdFlags),
	}
}

func (m *Mailer) ApprovalRequested(ctx context.Context, req *models.Request, records []models.ApprovalRecord) {
	for _, rec := range records {
		if rec.ApproverEmail == "" {
			continue
		}
		body, err := render(tplApprovalRequested, pongo2.Context{
			"approver_name":  rec.ApproverName,
			"subject":        req.Subject,
			"request_id":     req.ID,
			"requester_name": req.RequesterName,
			"level_name":     rec.LevelName,
		})
		if err != nil {
			m.logger.Printf("approval requested for %s: %v", rec.ID, err)
			continue
		}
		m.send(ctx, rec.ApproverEmail, fmt.Sprintf("Approval required: %s", req.Subject), body)
	}
}

func (m *Mailer) ClarificationRequested(ctx context.Context, req *models.Request, rec *models.ApprovalRecord, question string) {
	if req.RequesterEmail == "" {
		return
	}
	body, err := render(tplClarification, pongo2.Context{
		"requester_name": req.RequesterName,
		"approver_name":  rec.ApproverName,
		"subject":        req.Subject,
		"request_id":     req.ID,
		"question":       question,
	})
	if err != nil {
		m.logger.Printf("clarification for %s: %v", req.ID, err)
		return
	}
	m.send(ctx, req.RequesterEmail, fmt.Sprintf("Clarification needed: %s", req.Subject), body)
}

func (m *Mailer) RequestApproved(ctx context.Context, req *models.Request) {
	if req.RequesterEmail == "" {
		return
	}
	body, err := render(tplApproved, pongo2.Context{
		"requester_name": req.RequesterName,
		"subject":        req.Subject,
		"request_id":     req.ID,
	})
	if err != nil {
		m.logger.Printf("request approved for %s: %v", req.ID, err)
		return
	}
	m.send(ctx, req.RequesterEmail, fmt.Sprintf("Approved: %s", req.Subject), body)
}

func (m *Mailer) RequestRejected(ctx context.Context, req *models.Request, rec *models.ApprovalRecord) {
	if req.RequesterEmail == "" {
		return
	}
	reason := ""
	if rec.Comments != nil {
		reason = *rec.Comments
	}
	body, err := render(tplRejected, pongo2.Context{
		"requester_name": req.RequesterName,
		"approver_name":  rec.ApproverName,
		"subject":        req.Subject,
		"request_id":     req.ID,
		"level_name":     rec.LevelName,
		"reason":         reason,
	})
	if err != nil {
		m.logger.Printf("request rejected for %s: %v", req.ID, err)
		return
	}
	m.send(ctx, req.RequesterEmail, fmt.Sprintf("Rejected: %s", req.Subject), body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) {
	err := m.provider.Send(ctx, EmailMessage{
		To:      []string{to},
		Subject: subject,
		Body:    body,
		HTML:    true,
	})
	if err != nil {
		m.logger.Printf("send to %s failed: %v", to, err)
	}
}
