package models

import "time"

// History action identifiers. Structured details ride in the Details field
// using the legacy double-percent payload convention decoded by the history
// package.
const (
	HistoryActionCreated         = "RequestCreated"
	HistoryActionApproved        = "ApprovalApproved"
	HistoryActionRejected        = "ApprovalRejected"
	HistoryActionClarification   = "ClarificationRequested"
	HistoryActionAcknowledged    = "ApprovalAcknowledged"
	HistoryActionLevelActivated  = "NextLevelActivated"
	HistoryActionOverallApproved = "RequestApproved"
	HistoryActionStatusChanged   = "StatusChanged"
	HistoryActionWorkLogAdded    = "WorkLogAdded"
	HistoryActionAutoApproved    = "AutoApproved"
	HistoryActionCancelled       = "RequestCancelled"
	HistoryActionNoteAdded       = "NoteAdded"
)

// Actor types recorded against history entries.
const (
	ActorTypeRequester  = "requester"
	ActorTypeApprover   = "approver"
	ActorTypeTechnician = "technician"
	ActorTypeSystem     = "system"
)

// HistoryEntry is an append-only audit record of an action taken on a
// request. Entries are never mutated or deleted.
type HistoryEntry struct {
	ID        string    `json:"id" db:"id"`
	RequestID string    `json:"request_id" db:"request_id"`
	Action    string    `json:"action" db:"action"`
	Actor     string    `json:"actor" db:"actor"`
	ActorType string    `json:"actor_type" db:"actor_type"`
	Details   string    `json:"details" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
