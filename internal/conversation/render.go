package conversation

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// RenderMessage converts a conversation message to safe display HTML.
// Messages that already look like HTML are sanitized as-is; everything else
// is treated as markdown (plain text passes through unchanged apart from
// paragraph wrapping) and then sanitized.
func RenderMessage(message string) string {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return ""
	}

	if looksLikeHTML(trimmed) {
		return sanitizer.Sanitize(trimmed)
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(trimmed), &buf); err != nil {
		return sanitizer.Sanitize(trimmed)
	}
	return sanitizer.Sanitize(buf.String())
}

func looksLikeHTML(s string) bool {
	if !strings.HasPrefix(s, "<") {
		return false
	}
	end := strings.IndexByte(s, '>')
	return end > 1
}
