package models

import "time"

// ApprovalRecord is one approver's pending/decided status at a given level of
// a request's approval chain. Status is stored as free text (legacy data uses
// inconsistent casing such as "Pending_Approval"); callers must normalize it
// through the approval package before branching on it.
//
// Version supports optimistic locking: updates must match the version read or
// fail with a conflict, so two approvers racing on the same record are
// detected instead of silently last-write-wins.
type ApprovalRecord struct {
	ID            string     `json:"id" db:"id"`
	RequestID     string     `json:"request_id" db:"request_id"`
	Level         int        `json:"level" db:"level"`
	LevelName     string     `json:"level_name" db:"level_name"`
	ApproverID    string     `json:"approver_id" db:"approver_id"`
	ApproverEmail string     `json:"approver_email" db:"approver_email"`
	ApproverName  string     `json:"approver_name" db:"approver_name"`
	Status        string     `json:"status" db:"status"`
	SentOn        *time.Time `json:"sent_on" db:"sent_on"`
	ActedOn       *time.Time `json:"acted_on" db:"acted_on"`
	Comments      *string    `json:"comments" db:"comments"`
	Version       int        `json:"version" db:"version"`
}

// ApprovalLevelDef defines one level of a template's approval chain: the
// stage name and the approvers whose records are created when the level
// activates. Levels are 1-based and activate in ascending order.
type ApprovalLevelDef struct {
	Level     int           `json:"level" yaml:"level"`
	LevelName string        `json:"level_name" yaml:"level_name"`
	Approvers []ApproverRef `json:"approvers" yaml:"approvers"`
}

// ApproverRef identifies an approver in a chain definition.
type ApproverRef struct {
	ID    string `json:"id" yaml:"id"`
	Email string `json:"email" yaml:"email"`
	Name  string `json:"name" yaml:"name"`
}

// ApprovalSummary is the list-view shape returned for an actor's pending
// approvals.
type ApprovalSummary struct {
	ApprovalID     string     `json:"approval_id"`
	RequestID      string     `json:"request_id"`
	RequestSubject string     `json:"request_subject"`
	RequesterName  string     `json:"requester_name"`
	Level          int        `json:"level"`
	LevelName      string     `json:"level_name"`
	Status         string     `json:"status"`
	SentOn         *time.Time `json:"sent_on"`
}
