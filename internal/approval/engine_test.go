package approval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/repository"
)

type chainFunc func(ctx context.Context, req *models.Request) ([]models.ApprovalLevelDef, error)

func (f chainFunc) ChainFor(ctx context.Context, req *models.Request) ([]models.ApprovalLevelDef, error) {
	return f(ctx, req)
}

type testEnv struct {
	engine        *Engine
	approvals     *repository.MemoryApprovalRepository
	requests      *repository.MemoryRequestRepository
	conversations *repository.MemoryConversationRepository
	history       *repository.MemoryHistoryRepository
	now           time.Time
}

func newTestEnv(t *testing.T, chain []models.ApprovalLevelDef) *testEnv {
	t.Helper()
	env := &testEnv{
		approvals:     repository.NewMemoryApprovalRepository(),
		requests:      repository.NewMemoryRequestRepository(),
		conversations: repository.NewMemoryConversationRepository(),
		history:       repository.NewMemoryHistoryRepository(),
		now:           time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}
	env.approvals.AttachRequests(env.requests)
	env.engine = NewEngine(env.approvals, env.requests, env.conversations, env.history,
		WithClock(func() time.Time { return env.now }),
		WithChainSource(chainFunc(func(ctx context.Context, req *models.Request) ([]models.ApprovalLevelDef, error) {
			return chain, nil
		})),
	)
	return env
}

func (env *testEnv) seedRequest(t *testing.T, id string) *models.Request {
	t.Helper()
	req := &models.Request{
		ID:             id,
		Subject:        "New laptop",
		RequesterID:    "u-100",
		RequesterName:  "Pat Cruz",
		Status:         models.RequestStatusForApproval,
		ApprovalStatus: StatusPending.String(),
		CreatedAt:      env.now,
		UpdatedAt:      env.now,
	}
	require.NoError(t, env.requests.Create(context.Background(), req))
	return req
}

func (env *testEnv) seedApproval(t *testing.T, id, requestID string, level int, approver models.ApproverRef, status string, sent bool) *models.ApprovalRecord {
	t.Helper()
	rec := &models.ApprovalRecord{
		ID:            id,
		RequestID:     requestID,
		Level:         level,
		LevelName:     levelName(level),
		ApproverID:    approver.ID,
		ApproverEmail: approver.Email,
		ApproverName:  approver.Name,
		Status:        status,
	}
	if sent {
		sentOn := env.now
		rec.SentOn = &sentOn
	}
	require.NoError(t, env.approvals.Create(context.Background(), rec))
	return rec
}

func levelName(level int) string {
	switch level {
	case 1:
		return "Manager Approval"
	case 2:
		return "Department Head Approval"
	default:
		return "Final Approval"
	}
}

var (
	approverA = models.ApproverRef{ID: "u-1", Email: "alice@example.com", Name: "Alice Reyes"}
	approverB = models.ApproverRef{ID: "u-2", Email: "bob@example.com", Name: "Bob Tan"}
)

func TestApplyActionApproveSynthesizesComment(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedRequest(t, "r-1")
	env.seedApproval(t, "a-1", "r-1", 1, approverA, "pending approval", true)

	rec, err := env.engine.ApplyAction(context.Background(), "a-1", ActionApprove, "",
		Actor{ID: approverA.ID, Name: approverA.Name, Type: models.ActorTypeApprover})
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, NormalizeStatus(rec.Status))
	require.NotNil(t, rec.ActedOn)
	require.NotNil(t, rec.Comments)
	assert.Equal(t, "Request approved by Alice Reyes on Jun 15, 2025 10:00 AM", *rec.Comments)
}

func TestApplyActionRejectRequiresComment(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedRequest(t, "r-1")
	env.seedApproval(t, "a-1", "r-1", 1, approverA, "pending approval", true)

	_, err := env.engine.ApplyAction(context.Background(), "a-1", ActionReject, "   ",
		Actor{Name: approverA.Name, Type: models.ActorTypeApprover})
	require.ErrorIs(t, err, ErrCommentRequired)

	// Nothing changed.
	rec, err := env.approvals.GetByID(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, NormalizeStatus(rec.Status))
	assert.Nil(t, rec.ActedOn)
}

func TestApplyActionClarifyAppendsConversation(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedRequest(t, "r-1")
	env.seedApproval(t, "a-1", "r-1", 1, approverA, "pending approval", true)

	rec, err := env.engine.ApplyAction(context.Background(), "a-1", ActionClarify,
		"Which cost center should this bill to?",
		Actor{ID: approverA.ID, Name: approverA.Name, Type: models.ActorTypeApprover})
	require.NoError(t, err)
	assert.Equal(t, StatusForClarification, NormalizeStatus(rec.Status))

	thread, err := env.conversations.ListByApproval(context.Background(), "a-1")
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, models.EntryTypeApprover, thread[0].Type)
	assert.Equal(t, "Which cost center should this bill to?", thread[0].Message)
	assert.Equal(t, "Alice Reyes", thread[0].Author)

	// The request's lifecycle status is untouched.
	req, err := env.requests.GetByID(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusForApproval, req.Status)
}

func TestApplyActionOnTerminalRecord(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedRequest(t, "r-1")
	env.seedApproval(t, "a-1", "r-1", 1, approverA, "approved", true)
	env.seedApproval(t, "a-2", "r-1", 1, approverB, "rejected", true)

	for _, action := range []Action{ActionApprove, ActionReject, ActionClarify, ActionAcknowledge} {
		_, err := env.engine.ApplyAction(context.Background(), "a-1", action, "why not",
			Actor{Name: "Anyone"})
		assert.ErrorIs(t, err, ErrInvalidTransition, "action %s on approved record", action)

		_, err = env.engine.ApplyAction(context.Background(), "a-2", action, "why not",
			Actor{Name: "Anyone"})
		assert.ErrorIs(t, err, ErrInvalidTransition, "action %s on rejected record", action)
	}
}

func TestApproveLastRecordActivatesNextLevel(t *testing.T) {
	chain := []models.ApprovalLevelDef{
		{Level: 1, LevelName: levelName(1), Approvers: []models.ApproverRef{approverA}},
		{Level: 2, LevelName: levelName(2), Approvers: []models.ApproverRef{approverB}},
	}
	env := newTestEnv(t, chain)
	req := env.seedRequest(t, "r-1")
	require.NoError(t, env.engine.InitializeChain(context.Background(), req, chain))

	records, err := env.approvals.ListByRequest(context.Background(), "r-1")
	require.NoError(t, err)
	require.Len(t, records, 1, "only level 1 exists before it completes")

	_, err = env.engine.ApplyAction(context.Background(), records[0].ID, ActionApprove, "ok",
		Actor{ID: approverA.ID, Name: approverA.Name, Type: models.ActorTypeApprover})
	require.NoError(t, err)

	records, err = env.approvals.ListByRequest(context.Background(), "r-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	level2 := records[1]
	assert.Equal(t, 2, level2.Level)
	assert.Equal(t, approverB.ID, level2.ApproverID)
	assert.Equal(t, StatusPending, NormalizeStatus(level2.Status))
	require.NotNil(t, level2.SentOn, "activation stamps sentOn")

	// History carries the activation event.
	entries, err := env.history.ListByRequest(context.Background(), "r-1")
	require.NoError(t, err)
	found := false
	for _, e := range entries {
		if e.Action == models.HistoryActionLevelActivated {
			found = true
		}
	}
	assert.True(t, found, "expected a level activation history entry")
}

func TestLevelActivationIdempotentOnRetry(t *testing.T) {
	chain := []models.ApprovalLevelDef{
		{Level: 1, LevelName: levelName(1), Approvers: []models.ApproverRef{approverA}},
		{Level: 2, LevelName: levelName(2), Approvers: []models.ApproverRef{approverB}},
	}
	env := newTestEnv(t, chain)
	req := env.seedRequest(t, "r-1")
	require.NoError(t, env.engine.InitializeChain(context.Background(), req, chain))

	records, err := env.approvals.ListByRequest(context.Background(), "r-1")
	require.NoError(t, err)
	approvalID := records[0].ID

	_, err = env.engine.ApplyAction(context.Background(), approvalID, ActionApprove, "ok",
		Actor{Name: approverA.Name})
	require.NoError(t, err)

	// Duplicate network retry of the same approve.
	_, err = env.engine.ApplyAction(context.Background(), approvalID, ActionApprove, "ok",
		Actor{Name: approverA.Name})
	require.ErrorIs(t, err, ErrInvalidTransition)

	records, err = env.approvals.ListByRequest(context.Background(), "r-1")
	require.NoError(t, err)
	count := 0
	for _, r := range records {
		if r.Level == 2 {
			count++
		}
	}
	assert.Equal(t, 1, count, "retry must not create a second set of level-2 records")
}

func TestLastLevelApprovalFinalizesRequest(t *testing.T) {
	chain := []models.ApprovalLevelDef{
		{Level: 1, LevelName: levelName(1), Approvers: []models.ApproverRef{approverA}},
	}
	env := newTestEnv(t, chain)
	req := env.seedRequest(t, "r-1")
	require.NoError(t, env.engine.InitializeChain(context.Background(), req, chain))

	records, err := env.approvals.ListByRequest(context.Background(), "r-1")
	require.NoError(t, err)
	_, err = env.engine.ApplyAction(context.Background(), records[0].ID, ActionApprove, "",
		Actor{Name: approverA.Name})
	require.NoError(t, err)

	updated, err := env.requests.GetByID(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, NormalizeStatus(updated.ApprovalStatus))

	records, err = env.approvals.ListByRequest(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Approved", OverallStatus(updated, records, nil))
}

func TestAcknowledgeClearsPendingWithoutChangingOutcome(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedRequest(t, "r-1")
	env.seedApproval(t, "a-1", "r-1", 1, approverA, "rejected", true)
	env.seedApproval(t, "a-2", "r-1", 1, approverB, "pending approval", true)

	pending, err := env.approvals.ListPendingForApprover(context.Background(), approverB.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = env.engine.ApplyAction(context.Background(), "a-2", ActionAcknowledge, "",
		Actor{ID: approverB.ID, Name: approverB.Name, Type: models.ActorTypeApprover})
	require.NoError(t, err)

	pending, err = env.approvals.ListPendingForApprover(context.Background(), approverB.ID)
	require.NoError(t, err)
	assert.Empty(t, pending, "acknowledged record leaves the pending list")

	req, err := env.requests.GetByID(context.Background(), "r-1")
	require.NoError(t, err)
	records, err := env.approvals.ListByRequest(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Rejected", OverallStatus(req, records, nil), "outcome unchanged")
}

func TestRejectionFreezesWorkflow(t *testing.T) {
	chain := []models.ApprovalLevelDef{
		{Level: 1, LevelName: levelName(1), Approvers: []models.ApproverRef{approverA, approverB}},
		{Level: 2, LevelName: levelName(2), Approvers: []models.ApproverRef{approverB}},
	}
	env := newTestEnv(t, chain)
	req := env.seedRequest(t, "r-1")
	require.NoError(t, env.engine.InitializeChain(context.Background(), req, chain))

	records, err := env.approvals.ListByRequest(context.Background(), "r-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	var aliceID, bobID string
	for _, r := range records {
		switch r.ApproverID {
		case approverA.ID:
			aliceID = r.ID
		case approverB.ID:
			bobID = r.ID
		}
	}

	_, err = env.engine.ApplyAction(context.Background(), bobID, ActionReject, "duplicate request",
		Actor{Name: approverB.Name})
	require.NoError(t, err)

	// Alice approving afterwards completes nothing: level 2 never activates.
	_, err = env.engine.ApplyAction(context.Background(), aliceID, ActionApprove, "",
		Actor{Name: approverA.Name})
	require.NoError(t, err)

	records, err = env.approvals.ListByRequest(context.Background(), "r-1")
	require.NoError(t, err)
	for _, r := range records {
		assert.Equal(t, 1, r.Level, "no level-2 records after a rejection")
	}
}
