package conversation

import (
	"context"
	"fmt"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// CountsTowardUnread reports whether an entry type contributes to unread
// totals. The viewer's own side ("user"/"requester") and system entries never
// do.
func CountsTowardUnread(entryType string) bool {
	switch entryType {
	case models.EntryTypeSystem, models.EntryTypeUser, models.EntryTypeRequester:
		return false
	default:
		return true
	}
}

// UnreadCount returns how many entries arrived after the watermark from the
// other side of the conversation. An empty watermark means the thread was
// never opened: every countable entry is unread.
func UnreadCount(entries []models.ConversationEntry, watermark string) int {
	count := 0
	for i := range entries {
		if !CountsTowardUnread(entries[i].Type) {
			continue
		}
		key := TimeKey(entries[i].CreatedAt)
		if watermark == "" || key > watermark {
			count++
		}
	}
	return count
}

// LatestKey returns the normalized key of the newest entry, or "" for an
// empty thread.
func LatestKey(entries []models.ConversationEntry) string {
	latest := ""
	for i := range entries {
		if key := TimeKey(entries[i].CreatedAt); key > latest {
			latest = key
		}
	}
	return latest
}

// ShowBadge reports whether the unread badge is visible: there must be
// unread entries and the thread must not have been opened since the fetch
// that introduced them. This suppresses false positives on first load of
// pre-existing history.
func ShowBadge(unread int, openedSinceFetch bool) bool {
	return unread > 0 && !openedSinceFetch
}

// Tracker computes unread state for threads against a WatermarkStore.
type Tracker struct {
	store WatermarkStore
}

// NewTracker creates a tracker over the given store.
func NewTracker(store WatermarkStore) *Tracker {
	return &Tracker{store: store}
}

// Unread computes the viewer's unread count for one approval thread.
func (t *Tracker) Unread(ctx context.Context, viewer, requestID, approvalID string, entries []models.ConversationEntry) (int, error) {
	mark, err := t.store.GetLastSeen(ctx, viewer, requestID, approvalID)
	if err != nil {
		return 0, fmt.Errorf("failed to load watermark: %w", err)
	}
	return UnreadCount(entries, mark), nil
}

// OpenThread marks the thread read up to the newest of the given entries.
// Callers must pass the freshest fetched list, not a cached one, so a
// message arriving between fetch and open is not silently skipped.
func (t *Tracker) OpenThread(ctx context.Context, viewer, requestID, approvalID string, entries []models.ConversationEntry) error {
	latest := LatestKey(entries)
	if latest == "" {
		return nil
	}
	if err := t.store.SetLastSeen(ctx, viewer, requestID, approvalID, latest); err != nil {
		return fmt.Errorf("failed to persist watermark: %w", err)
	}
	return nil
}
