package hub

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/lumen-live/relay-service/internal/config"
)

func TestDeliverQueuesPayload(t *testing.T) {
	c := NewClient(nil, config.Default().WebSocket)

	if !c.Deliver([]byte("hello")) {
		t.Fatal("Deliver returned false for an open client")
	}

	select {
	case got := <-c.Send:
		if string(got) != "hello" {
			t.Errorf("queued payload = %q, want hello", got)
		}
	default:
		t.Fatal("nothing queued")
	}
}

func TestDeliverDropsWhenQueueFull(t *testing.T) {
	cfg := config.Default().WebSocket
	cfg.SendQueueSize = 1
	c := NewClient(nil, cfg)

	if !c.Deliver([]byte("first")) {
		t.Fatal("first Deliver refused")
	}
	if c.Deliver([]byte("second")) {
		t.Error("Deliver succeeded on a full queue; should drop")
	}
}

func TestDeliverRefusedAfterClose(t *testing.T) {
	c := NewClient(nil, config.Default().WebSocket)

	c.CloseWithReason("going away")
	if c.Deliver([]byte("late")) {
		t.Error("Deliver succeeded on a closed client")
	}

	// Repeated close must be a no-op, not a panic.
	c.CloseWithReason("again")
}

func TestTruncateCloseReasonFitsControlFrame(t *testing.T) {
	short := "User alice already exists"
	if got := truncateCloseReason(short); got != short {
		t.Errorf("short reason altered: %q", got)
	}

	long := "User " + strings.Repeat("x", 200) + " already exists"
	got := truncateCloseReason(long)
	if len(got) > 123 {
		t.Errorf("truncated reason is %d bytes, limit is 123", len(got))
	}
	if !strings.HasPrefix(got, "User ") {
		t.Errorf("truncated reason lost its prefix: %q", got)
	}

	// Truncation must not split a rune.
	multibyte := strings.Repeat("ü", 80) // 160 bytes of two-byte runes
	got = truncateCloseReason(multibyte)
	if !utf8.ValidString(got) {
		t.Errorf("truncated reason is not valid UTF-8: %q", got)
	}
	if len(got) > 123 {
		t.Errorf("truncated multibyte reason is %d bytes", len(got))
	}
}
