package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rickar/cal/v2"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/approval"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/notifications"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/repository"
)

// ReminderJob nags approvers whose approval records have sat pending longer
// than the configured grace period. It only runs on business days so nobody
// is nagged over a weekend they could not act on.
type ReminderJob struct {
	approvals repository.ApprovalRepository
	requests  repository.RequestRepository
	provider  notifications.EmailProvider
	calendar  *cal.BusinessCalendar
	after     time.Duration
	logger    *log.Logger
	now       func() time.Time
}

func NewReminderJob(
	approvals repository.ApprovalRepository,
	requests repository.RequestRepository,
	provider notifications.EmailProvider,
	after time.Duration,
) *ReminderJob {
	return &ReminderJob{
		approvals: approvals,
		requests:  requests,
		provider:  provider,
		calendar:  cal.NewBusinessCalendar(),
		after:     after,
		logger:    log.New(os.Stdout, "reminder: ", log.LstdFlags),
		now:       time.Now,
	}
}

// Name implements Job.
func (j *ReminderJob) Name() string { return "approval-reminder" }

// Run sends one reminder email per approver covering all their stale pending
// approvals.
func (j *ReminderJob) Run(ctx context.Context) error {
	now := j.now()
	if !j.calendar.IsWorkday(now) {
		return nil
	}

	records, err := j.approvals.ListStalePending(ctx, now.Add(-j.after))
	if err != nil {
		return fmt.Errorf("list stale approvals: %w", err)
	}

	byApprover := map[string][]models.ApprovalRecord{}
	for _, rec := range records {
		if approval.NormalizeStatus(rec.Status) != approval.StatusPending {
			continue
		}
		if rec.ApproverEmail == "" {
			continue
		}
		byApprover[rec.ApproverEmail] = append(byApprover[rec.ApproverEmail], rec)
	}

	sent := 0
	for email, recs := range byApprover {
		if err := j.remind(ctx, email, recs); err != nil {
			j.logger.Printf("remind %s: %v", email, err)
			continue
		}
		sent++
	}
	if sent > 0 {
		j.logger.Printf("sent %d reminder(s) covering %d stale approval(s)", sent, len(records))
	}
	return nil
}

func (j *ReminderJob) remind(ctx context.Context, email string, recs []models.ApprovalRecord) error {
	body := "<p>The following requests are still waiting for your approval:</p><ul>"
	for _, rec := range recs {
		subject := rec.RequestID
		if req, err := j.requests.GetByID(ctx, rec.RequestID); err == nil {
			subject = req.Subject
		}
		body += fmt.Sprintf("<li>%s (%s)</li>", subject, rec.LevelName)
	}
	body += "</ul><p>Please review them in the helpdesk portal.</p>"

	return j.provider.Send(ctx, notifications.EmailMessage{
		To:      []string{email},
		Subject: fmt.Sprintf("Reminder: %d approval(s) pending", len(recs)),
		Body:    body,
		HTML:    true,
	})
}
