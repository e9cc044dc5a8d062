package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"rejected", StatusRejected},
		{"Rejected", StatusRejected},
		{"Rejected_Pending", StatusRejected},
		{"REJECT", StatusRejected},
		{"approved", StatusApproved},
		{"Approved", StatusApproved},
		{"APPROVE", StatusApproved},
		{"pending approval", StatusPending},
		{"Pending_Approval", StatusPending},
		{"pending-approval", StatusPending},
		{"Approval Pending", StatusPending},
		{"pending clarification", StatusPendingClarification},
		{"pending_clarification", StatusPendingClarification},
		{"Pending Clarification", StatusPendingClarification},
		{"for clarification", StatusForClarification},
		{"for-clarification", StatusForClarification},
		{"For_Clarification", StatusForClarification},
		{"", StatusPending},
		{"   ", StatusPending},
		{"something else entirely", StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.raw), "raw=%q", tt.raw)
		})
	}
}

func TestNormalizeStatusIdempotent(t *testing.T) {
	raws := []string{
		"Rejected_Pending", "Approved", "pending_clarification",
		"for-clarification", "", "Pending Approval", "garbage",
	}
	for _, raw := range raws {
		once := NormalizeStatus(raw)
		twice := NormalizeStatus(once.String())
		assert.Equal(t, once, twice, "normalize(normalize(%q))", raw)
	}
}

func TestDisplayStatus(t *testing.T) {
	assert.Equal(t, "Pending Approval", DisplayStatus(StatusPending))
	assert.Equal(t, "For Clarification", DisplayStatus(StatusForClarification))
	assert.Equal(t, "Pending Clarification", DisplayStatus(StatusPendingClarification))
	assert.Equal(t, "Approved", DisplayStatus(StatusApproved))
	assert.Equal(t, "Rejected", DisplayStatus(StatusRejected))
}

func TestDisplayRaw(t *testing.T) {
	assert.Equal(t, "Pending Approval", DisplayRaw(""))
	assert.Equal(t, "Pending Approval", DisplayRaw("PENDING_APPROVAL"))
	assert.Equal(t, "Awaiting Budget Review", DisplayRaw("awaiting-budget-review"))
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusForClarification.Terminal())
	assert.False(t, StatusPendingClarification.Terminal())
}
