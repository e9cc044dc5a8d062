// Package approval implements the multi-level approval workflow engine:
// status normalization, the action handler with level activation, the
// duplicate-approver auto-approval sweep, and derived overall status.
package approval

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the canonical approval status. Raw strings from storage arrive in
// inconsistent casing and punctuation ("Pending_Approval", "for-clarification");
// they are decoded exactly once via NormalizeStatus and never re-matched
// afterwards.
type Status int

const (
	StatusPending Status = iota
	StatusForClarification
	StatusPendingClarification
	StatusApproved
	StatusRejected
)

// String returns the canonical lower-case form.
func (s Status) String() string {
	switch s {
	case StatusForClarification:
		return "for clarification"
	case StatusPendingClarification:
		return "pending clarification"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	default:
		return "pending approval"
	}
}

// Terminal reports whether the record can no longer receive approve/reject
// actions.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// AwaitingDecision reports whether the record still blocks its level from
// completing. Clarification states keep the level open: the approver still
// owes a decision once the requester answers.
func (s Status) AwaitingDecision() bool {
	return !s.Terminal()
}

var titleCaser = cases.Title(language.English)

// NormalizeStatus maps any raw status string onto the canonical Status.
// Keyword precedence, first match wins:
//
//  1. contains "reject"                      -> rejected
//  2. contains "approve" without "pending"   -> approved
//  3. contains "pending clarification"       -> pending clarification
//  4. contains "for clarification"           -> for clarification
//  5. contains "pending"                     -> pending approval
//  6. anything else (including empty)        -> pending approval
func NormalizeStatus(raw string) Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)

	switch {
	case strings.Contains(s, "reject"):
		return StatusRejected
	case strings.Contains(s, "approve") && !strings.Contains(s, "pending"):
		return StatusApproved
	case strings.Contains(s, "pending clarification"):
		return StatusPendingClarification
	case strings.Contains(s, "for clarification"):
		return StatusForClarification
	case strings.Contains(s, "pending"):
		return StatusPending
	default:
		return StatusPending
	}
}

// DisplayStatus renders the canonical form for the UI, e.g.
// "pending approval" -> "Pending Approval".
func DisplayStatus(s Status) string {
	return titleCaser.String(s.String())
}

// DisplayRaw title-cases an arbitrary raw status string after normalizing
// separators, used for fallback rendering of overall approval fields.
func DisplayRaw(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DisplayStatus(StatusPending)
	}
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return titleCaser.String(strings.ToLower(s))
}
