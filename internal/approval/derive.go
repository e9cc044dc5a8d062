package approval

import (
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// Display strings for derived overall status.
const (
	displayCancelled     = "Cancelled"
	displayRejected      = "Rejected"
	displayApproved      = "Approved"
	displayLevelApproved = "Level Approved"
)

// OverallStatus derives the single human-readable approval status shown for
// a request. Precedence:
//
//  1. cancelled request            -> "Cancelled"
//  2. any rejected record anywhere -> "Rejected" (one rejection poisons all)
//  3. overall field approved       -> "Approved"
//  4. focused record, if any       -> that record's status ("Level Approved"
//     for an approved record, since the request as a whole is not done)
//  5. overall field, title-cased   -> default "Pending Approval"
//
// focused may be nil when no specific record is selected for the viewer.
func OverallStatus(req *models.Request, records []models.ApprovalRecord, focused *models.ApprovalRecord) string {
	if req != nil && req.IsCancelled() {
		return displayCancelled
	}

	for i := range records {
		if NormalizeStatus(records[i].Status) == StatusRejected {
			return displayRejected
		}
	}

	if req != nil && NormalizeStatus(req.ApprovalStatus) == StatusApproved {
		return displayApproved
	}

	if focused != nil {
		switch NormalizeStatus(focused.Status) {
		case StatusApproved:
			return displayLevelApproved
		case StatusRejected:
			return displayRejected
		case StatusForClarification:
			return DisplayStatus(StatusForClarification)
		case StatusPendingClarification:
			return DisplayStatus(StatusPendingClarification)
		default:
			return DisplayStatus(StatusPending)
		}
	}

	if req != nil && req.ApprovalStatus != "" {
		return DisplayRaw(req.ApprovalStatus)
	}
	return DisplayStatus(StatusPending)
}

// CurrentActiveLevel returns the lowest level that still has a record
// awaiting a decision, or 0 when every record is settled (or there are no
// records at all).
func CurrentActiveLevel(records []models.ApprovalRecord) int {
	active := 0
	for i := range records {
		if !NormalizeStatus(records[i].Status).AwaitingDecision() {
			continue
		}
		if active == 0 || records[i].Level < active {
			active = records[i].Level
		}
	}
	return active
}

// Rejected reports whether any record of the set has been rejected.
func Rejected(records []models.ApprovalRecord) bool {
	for i := range records {
		if NormalizeStatus(records[i].Status) == StatusRejected {
			return true
		}
	}
	return false
}

// LevelComplete reports whether every record at the given level is approved.
// An empty level is not complete: activation of a level with no records is a
// definition error handled upstream.
func LevelComplete(records []models.ApprovalRecord, level int) bool {
	found := false
	for i := range records {
		if records[i].Level != level {
			continue
		}
		found = true
		if NormalizeStatus(records[i].Status) != StatusApproved {
			return false
		}
	}
	return found
}
