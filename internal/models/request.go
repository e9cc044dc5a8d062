package models

import (
	"encoding/json"
	"time"
)

// Request lifecycle statuses. These track the ticket itself, not the
// approval chain; the approval outcome lives in ApprovalStatus.
const (
	RequestStatusForApproval = "for_approval"
	RequestStatusOpen        = "open"
	RequestStatusOnHold      = "on_hold"
	RequestStatusResolved    = "resolved"
	RequestStatusCancelled   = "cancelled"
	RequestStatusClosed      = "closed"
)

// Request represents a single service/incident ticket submitted through a
// form template. FormData carries the template-defined fields verbatim;
// ApprovalStatus is the raw overall approval field as stored (normalized on
// read, never trusted as canonical).
type Request struct {
	ID             string          `json:"id" db:"id"`
	Subject        string          `json:"subject" db:"subject"`
	RequesterID    string          `json:"requester_id" db:"requester_id"`
	RequesterName  string          `json:"requester_name" db:"requester_name"`
	RequesterEmail string          `json:"requester_email" db:"requester_email"`
	TemplateID     string          `json:"template_id" db:"template_id"`
	Status         string          `json:"status" db:"status"`
	Priority       string          `json:"priority" db:"priority"`
	ApprovalStatus string          `json:"approval_status" db:"approval_status"`
	FormData       json.RawMessage `json:"form_data" db:"form_data"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// IsCancelled reports whether the ticket has been cancelled by the requester
// or an administrator.
func (r *Request) IsCancelled() bool {
	return r.Status == RequestStatusCancelled
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	Status      string
	RequesterID string
	Limit       int
	Offset      int
}
