package approval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

func TestAutoApproveDuplicates(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedRequest(t, "r-1")
	// Alice already approved level 1; she is also listed at level 2, which is
	// now the active level.
	env.seedApproval(t, "a-1", "r-1", 1, approverA, "approved", true)
	env.seedApproval(t, "a-2", "r-1", 2, approverA, "pending approval", true)
	env.seedApproval(t, "a-3", "r-1", 2, approverB, "pending approval", true)
	// Alice also appears at level 3; one pass touches only the active level.
	env.seedApproval(t, "a-4", "r-1", 3, approverA, "pending approval", false)

	result, err := env.engine.AutoApproveDuplicates(context.Background(), "r-1")
	require.NoError(t, err)
	require.Equal(t, 1, result.Candidates)
	assert.Equal(t, []string{"a-2"}, result.Approved)
	assert.Empty(t, result.Failed)

	rec, err := env.approvals.GetByID(context.Background(), "a-2")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, NormalizeStatus(rec.Status))
	require.NotNil(t, rec.Comments)
	assert.Equal(t, AutoApproveComment, *rec.Comments)

	// Bob's level-2 record and Alice's level-3 record are untouched.
	rec, err = env.approvals.GetByID(context.Background(), "a-3")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, NormalizeStatus(rec.Status))
	rec, err = env.approvals.GetByID(context.Background(), "a-4")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, NormalizeStatus(rec.Status))
}

func TestAutoApproveNoDuplicatesIsNoop(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedRequest(t, "r-1")
	env.seedApproval(t, "a-1", "r-1", 1, approverA, "approved", true)
	env.seedApproval(t, "a-2", "r-1", 2, approverB, "pending approval", true)

	result, err := env.engine.AutoApproveDuplicates(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Zero(t, result.Candidates)
	assert.Empty(t, result.Approved)

	rec, err := env.approvals.GetByID(context.Background(), "a-2")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, NormalizeStatus(rec.Status))
	assert.Nil(t, rec.ActedOn)
}

func TestAutoApproveIdempotentOnRerun(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedRequest(t, "r-1")
	env.seedApproval(t, "a-1", "r-1", 1, approverA, "approved", true)
	env.seedApproval(t, "a-2", "r-1", 2, approverA, "pending approval", true)
	env.seedApproval(t, "a-3", "r-1", 2, approverB, "pending approval", true)

	first, err := env.engine.AutoApproveDuplicates(context.Background(), "r-1")
	require.NoError(t, err)
	require.Equal(t, 1, first.Candidates)

	second, err := env.engine.AutoApproveDuplicates(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Zero(t, second.Candidates, "second pass finds no candidates")
}

func TestAutoApproveIdentityFallback(t *testing.T) {
	// No emails anywhere; identity falls back to the user id.
	noEmailA := models.ApproverRef{ID: "u-9", Name: "Casey Lim"}
	env := newTestEnv(t, nil)
	env.seedRequest(t, "r-1")
	env.seedApproval(t, "a-1", "r-1", 1, noEmailA, "approved", true)
	env.seedApproval(t, "a-2", "r-1", 2, noEmailA, "pending approval", true)

	result, err := env.engine.AutoApproveDuplicates(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a-2"}, result.Approved)

	// Records with no identity fields at all are silently excluded.
	anon := models.ApproverRef{}
	env2 := newTestEnv(t, nil)
	env2.seedRequest(t, "r-2")
	env2.seedApproval(t, "b-1", "r-2", 1, anon, "approved", true)
	env2.seedApproval(t, "b-2", "r-2", 2, anon, "pending approval", true)

	result, err = env2.engine.AutoApproveDuplicates(context.Background(), "r-2")
	require.NoError(t, err)
	assert.Zero(t, result.Candidates)
}

func TestEndToEndTwoLevelScenario(t *testing.T) {
	// Level 1 = [A]; Level 2 = [A, B]. A approves level 1, level 2 activates
	// for both, the sweep auto-approves A's level-2 record, B rejects, and
	// every viewer sees Rejected.
	chain := []models.ApprovalLevelDef{
		{Level: 1, LevelName: levelName(1), Approvers: []models.ApproverRef{approverA}},
		{Level: 2, LevelName: levelName(2), Approvers: []models.ApproverRef{approverA, approverB}},
	}
	env := newTestEnv(t, chain)
	req := env.seedRequest(t, "r-1")
	ctx := context.Background()
	require.NoError(t, env.engine.InitializeChain(ctx, req, chain))

	records, err := env.approvals.ListByRequest(ctx, "r-1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = env.engine.ApplyAction(ctx, records[0].ID, ActionApprove, "",
		Actor{ID: approverA.ID, Name: approverA.Name, Type: models.ActorTypeApprover})
	require.NoError(t, err)

	records, err = env.approvals.ListByRequest(ctx, "r-1")
	require.NoError(t, err)
	require.Len(t, records, 3, "level 2 activated for both approvers")

	result, err := env.engine.AutoApproveDuplicates(ctx, "r-1")
	require.NoError(t, err)
	require.Len(t, result.Approved, 1, "A's duplicate level-2 record auto-approved")

	records, err = env.approvals.ListByRequest(ctx, "r-1")
	require.NoError(t, err)
	var bobRec *models.ApprovalRecord
	pendingCount := 0
	for i := range records {
		if NormalizeStatus(records[i].Status) == StatusPending {
			pendingCount++
			bobRec = &records[i]
		}
		if records[i].Level == 2 && records[i].ApproverID == approverA.ID {
			require.NotNil(t, records[i].Comments)
			assert.Equal(t, AutoApproveComment, *records[i].Comments)
		}
	}
	require.Equal(t, 1, pendingCount, "only B's level-2 record remains pending")
	require.Equal(t, approverB.ID, bobRec.ApproverID)

	_, err = env.engine.ApplyAction(ctx, bobRec.ID, ActionReject, "insufficient budget",
		Actor{ID: approverB.ID, Name: approverB.Name, Type: models.ActorTypeApprover})
	require.NoError(t, err)

	req, err = env.requests.GetByID(ctx, "r-1")
	require.NoError(t, err)
	records, err = env.approvals.ListByRequest(ctx, "r-1")
	require.NoError(t, err)

	assert.Equal(t, "Rejected", OverallStatus(req, records, nil))
	// Including for approver A, focused on a record they approved.
	for i := range records {
		if records[i].ApproverID == approverA.ID {
			assert.Equal(t, "Rejected", OverallStatus(req, records, &records[i]))
		}
	}
}
