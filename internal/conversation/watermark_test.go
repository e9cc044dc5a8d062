package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTimestampKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"rfc3339 utc", "2024-01-02T03:04:05Z", "2024-01-02 03:04:05"},
		{"rfc3339 offset", "2024-01-02T03:04:05+05:30", "2024-01-02 03:04:05"},
		{"negative offset", "2024-01-02 03:04:05-08:00", "2024-01-02 03:04:05"},
		{"space separated", "2024-01-02 03:04:05", "2024-01-02 03:04:05"},
		{"unpadded", "2024-1-2 3:4:5", "2024-01-02 03:04:05"},
		{"missing seconds", "2024-01-02 03:04", "2024-01-02 03:04:00"},
		{"bare date", "2024-01-02", "2024-01-02 00:00:00"},
		{"fractional seconds", "2024-01-02T03:04:05.123Z", "2024-01-02 03:04:05.123"},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTimestampKey(tt.raw))
		})
	}
}

func TestNormalizeTimestampKeyOrdering(t *testing.T) {
	// Keys must sort lexically in chronological order regardless of input
	// formatting.
	earlier := NormalizeTimestampKey("2024-3-9T09:59:59Z")
	later := NormalizeTimestampKey("2024-03-09 10:00:00")
	assert.Less(t, earlier, later)
}

func TestTimeKey(t *testing.T) {
	ts := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-09 10:00:00", TimeKey(ts))

	// Non-UTC times normalize to the same key as their UTC equivalent.
	manila := time.FixedZone("PHT", 8*3600)
	assert.Equal(t, "2024-03-09 02:00:00", TimeKey(time.Date(2024, 3, 9, 10, 0, 0, 0, manila)))
}

func TestStoreKey(t *testing.T) {
	assert.Equal(t, "convSeen:r-1:a-2", StoreKey("r-1", "a-2"))
}
