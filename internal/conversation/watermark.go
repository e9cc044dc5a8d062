// Package conversation implements per-approval message threads: unread
// computation against persisted per-viewer watermarks, and message rendering.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// WatermarkStore persists, per viewer, the timestamp key of the last
// conversation entry they are known to have seen. Implementations live in
// the cache package (Redis and in-memory).
type WatermarkStore interface {
	// GetLastSeen returns the stored key, or "" when the viewer has never
	// opened the thread.
	GetLastSeen(ctx context.Context, viewer, requestID, approvalID string) (string, error)
	SetLastSeen(ctx context.Context, viewer, requestID, approvalID, key string) error
}

// StoreKey builds the durable key for one thread's watermark.
func StoreKey(requestID, approvalID string) string {
	return fmt.Sprintf("convSeen:%s:%s", requestID, approvalID)
}

// NormalizeTimestampKey reduces a raw timestamp string to a timezone-agnostic
// sortable key of the form "YYYY-MM-DD HH:MM:SS[.fff]". Source timestamps may
// lack timezone information, so comparisons are done on the string key rather
// than through date parsing, which would apply spurious local-zone shifts.
//
// Accepted inputs include "2024-01-02T03:04:05Z", "2024-1-2 3:4:5",
// "2024-01-02 03:04:05+05:30" and bare dates.
func NormalizeTimestampKey(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.Replace(s, "T", " ", 1)
	s = strings.Replace(s, "t", " ", 1)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "Z"), "z")

	datePart := s
	timePart := ""
	if idx := strings.IndexByte(s, ' '); idx >= 0 {
		datePart = s[:idx]
		timePart = strings.TrimSpace(s[idx+1:])
	}

	// Drop a trailing UTC offset from the time section. The date section's
	// own dashes are untouched.
	if idx := strings.IndexAny(timePart, "+-"); idx >= 0 {
		timePart = timePart[:idx]
	}

	date := padParts(strings.Split(datePart, "-"), []int{4, 2, 2}, "-")
	if timePart == "" {
		return date + " 00:00:00"
	}

	frac := ""
	if idx := strings.IndexByte(timePart, '.'); idx >= 0 {
		frac = timePart[idx:]
		timePart = timePart[:idx]
	}
	clock := padParts(strings.Split(timePart, ":"), []int{2, 2, 2}, ":")
	return date + " " + clock + frac
}

// TimeKey renders a time.Time as the normalized key.
func TimeKey(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

func padParts(parts []string, widths []int, sep string) string {
	out := make([]string, len(widths))
	for i, w := range widths {
		p := ""
		if i < len(parts) {
			p = strings.TrimSpace(parts[i])
		}
		for len(p) < w {
			p = "0" + p
		}
		out[i] = p
	}
	return strings.Join(out, sep)
}
