package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/notifications"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/repository"
)

type captureProvider struct {
	sent []notifications.EmailMessage
}

func (c *captureProvider) Send(ctx context.Context, msg notifications.EmailMessage) error {
	c.sent = append(c.sent, msg)
	return nil
}

// Monday 2025-06-16 10:00 UTC, a plain workday.
var workdayClock = func() time.Time {
	return time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)
}

func seedStale(t *testing.T, approvals *repository.MemoryApprovalRepository, id, email, status string, sentOn time.Time) {
	t.Helper()
	require.NoError(t, approvals.Create(context.Background(), &models.ApprovalRecord{
		ID: id, RequestID: "r-1", Level: 1, LevelName: "Manager Approval",
		ApproverID: "u-" + id, ApproverEmail: email, ApproverName: email,
		Status: status, SentOn: &sentOn,
	}))
}

func TestReminderMailsStaleApprovers(t *testing.T) {
	approvals := repository.NewMemoryApprovalRepository()
	requests := repository.NewMemoryRequestRepository()
	provider := &captureProvider{}

	require.NoError(t, requests.Create(context.Background(), &models.Request{
		ID: "r-1", Subject: "Laptop replacement",
	}))

	now := workdayClock()
	seedStale(t, approvals, "a1", "alice@example.com", "Pending Approval", now.Add(-48*time.Hour))
	seedStale(t, approvals, "a2", "alice@example.com", "Pending Approval", now.Add(-30*time.Hour))
	seedStale(t, approvals, "a3", "bob@example.com", "Pending Approval", now.Add(-1*time.Hour))

	job := NewReminderJob(approvals, requests, provider, 24*time.Hour)
	job.now = workdayClock

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, provider.sent, 1)
	assert.Equal(t, []string{"alice@example.com"}, provider.sent[0].To)
	assert.Equal(t, "Reminder: 2 approval(s) pending", provider.sent[0].Subject)
	assert.Contains(t, provider.sent[0].Body, "Laptop replacement")
}

func TestReminderSkipsWeekends(t *testing.T) {
	approvals := repository.NewMemoryApprovalRepository()
	requests := repository.NewMemoryRequestRepository()
	provider := &captureProvider{}

	now := workdayClock()
	seedStale(t, approvals, "a1", "alice@example.com", "Pending Approval", now.Add(-48*time.Hour))

	job := NewReminderJob(approvals, requests, provider, 24*time.Hour)
	// Sunday 2025-06-15.
	job.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, provider.sent)
}

func TestReminderIgnoresNonPendingStatuses(t *testing.T) {
	approvals := repository.NewMemoryApprovalRepository()
	requests := repository.NewMemoryRequestRepository()
	provider := &captureProvider{}

	now := workdayClock()
	seedStale(t, approvals, "a1", "alice@example.com", "For Clarification", now.Add(-48*time.Hour))

	job := NewReminderJob(approvals, requests, provider, 24*time.Hour)
	job.now = workdayClock

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, provider.sent)
}
