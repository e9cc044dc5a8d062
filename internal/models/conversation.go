package models

import "time"

// Conversation entry types. "user" is the requester side, "technician" the
// approver/agent side; "system" entries are synthesized by the engine and
// never count toward unread totals.
const (
	EntryTypeSystem     = "system"
	EntryTypeUser       = "user"
	EntryTypeRequester  = "requester"
	EntryTypeTechnician = "technician"
	EntryTypeApprover   = "approver"
)

// ConversationEntry is one immutable message either on a request's general
// notes thread (ApprovalID empty) or on a specific approval's dialogue.
type ConversationEntry struct {
	ID          string                   `json:"id" db:"id"`
	RequestID   string                   `json:"request_id" db:"request_id"`
	ApprovalID  string                   `json:"approval_id" db:"approval_id"`
	Type        string                   `json:"type" db:"entry_type"`
	Author      string                   `json:"author" db:"author"`
	Message     string                   `json:"message" db:"message"`
	CreatedAt   time.Time                `json:"created_at" db:"created_at"`
	Attachments []ConversationAttachment `json:"attachments,omitempty"`
}

// ConversationAttachment references an uploaded file attached to an entry.
// Storage of the bytes themselves is handled elsewhere.
type ConversationAttachment struct {
	ID       string `json:"id" db:"id"`
	EntryID  string `json:"entry_id" db:"entry_id"`
	Filename string `json:"filename" db:"filename"`
	Size     int64  `json:"size" db:"size"`
}
