// Package history provides request history formatting and display utilities.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/xeonx/timeago"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// DisplayEntry is a history entry decorated for presentation.
type DisplayEntry struct {
	ID          string `json:"id"`
	Action      string `json:"action"`
	Actor       string `json:"actor"`
	ActorType   string `json:"actor_type"`
	Label       string `json:"label"`
	CreatedAt   string `json:"created_at"`
	RelativeAge string `json:"relative_age"`
}

// Format renders one audit entry for display.
func Format(entry models.HistoryEntry) DisplayEntry {
	return DisplayEntry{
		ID:          entry.ID,
		Action:      entry.Action,
		Actor:       entry.Actor,
		ActorType:   entry.ActorType,
		Label:       FormatLabel(entry),
		CreatedAt:   entry.CreatedAt.UTC().Format(time.RFC3339),
		RelativeAge: timeago.English.Format(entry.CreatedAt),
	}
}

// FormatAll renders a request's audit log for display, preserving order.
func FormatAll(entries []models.HistoryEntry) []DisplayEntry {
	out := make([]DisplayEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, Format(e))
	}
	return out
}

// FormatLabel converts the structured details field into a human readable
// label. Details use double-percent (%%) delimiters between parts; the part
// layout depends on the action. Unknown actions fall back to joining the
// decoded parts.
func FormatLabel(entry models.HistoryEntry) string {
	parts := splitPayload(entry.Details)

	switch entry.Action {
	case models.HistoryActionCreated:
		if len(parts) > 0 {
			return fmt.Sprintf("Request created (%s)", parts[0])
		}
		return "Request created"

	case models.HistoryActionLevelActivated:
		// parts: level name, comma-joined approver names
		switch len(parts) {
		case 0:
			return "Approvals Initiated"
		case 1:
			return fmt.Sprintf("Approvals Initiated for %s", parts[0])
		default:
			return fmt.Sprintf("Approvals Initiated for %s (%s)", parts[1], parts[0])
		}

	case models.HistoryActionApproved, models.HistoryActionAutoApproved:
		// parts: level name, approver name
		if len(parts) >= 2 {
			return fmt.Sprintf("Approved by %s at %s", parts[1], parts[0])
		}
		return fmt.Sprintf("Approved by %s", entry.Actor)

	case models.HistoryActionRejected:
		// parts: level name, approver name, reason
		label := fmt.Sprintf("Rejected by %s", entry.Actor)
		if len(parts) >= 2 {
			label = fmt.Sprintf("Rejected by %s at %s", parts[1], parts[0])
		}
		if len(parts) >= 3 && parts[2] != "" {
			label += ": " + parts[2]
		}
		return label

	case models.HistoryActionClarification:
		if len(parts) >= 2 {
			return fmt.Sprintf("Clarification requested by %s at %s", parts[1], parts[0])
		}
		return fmt.Sprintf("Clarification requested by %s", entry.Actor)

	case models.HistoryActionAcknowledged:
		if len(parts) >= 2 {
			return fmt.Sprintf("Acknowledged by %s at %s", parts[1], parts[0])
		}
		return fmt.Sprintf("Acknowledged by %s", entry.Actor)

	case models.HistoryActionOverallApproved:
		return "Request fully approved"

	case models.HistoryActionCancelled:
		return fmt.Sprintf("Request cancelled by %s", entry.Actor)

	case models.HistoryActionStatusChanged:
		// parts: old status, new status
		if len(parts) >= 2 {
			return fmt.Sprintf("Status changed from %s to %s", parts[0], parts[1])
		}
		return "Status changed"

	case models.HistoryActionWorkLogAdded:
		return fmt.Sprintf("Work log added by %s", entry.Actor)

	case models.HistoryActionNoteAdded:
		return fmt.Sprintf("Note added by %s", entry.Actor)

	default:
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
		return entry.Action
	}
}

func splitPayload(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.Contains(raw, "%%") {
		return []string{raw}
	}
	tokens := strings.Split(raw, "%%")
	parts := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(strings.Trim(strings.TrimSpace(token), ","))
		parts = append(parts, token)
	}
	return parts
}
