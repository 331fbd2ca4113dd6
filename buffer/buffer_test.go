package buffer

import (
	"errors"
	"testing"
	"time"
)

func TestNewRejectsDecreasingTimestamps(t *testing.T) {
	_, err := New([]Message{{Timestamp: 10}, {Timestamp: 5}})
	if !errors.Is(err, ErrUnordered) {
		t.Fatalf("expected ErrUnordered, got %v", err)
	}

	b, err := New([]Message{{Timestamp: 0}, {Timestamp: 0}, {Timestamp: 7}})
	if err != nil {
		t.Fatalf("equal timestamps should be accepted: %v", err)
	}
	if b.Len() != 3 {
		t.Fatalf("expected 3 messages, got %d", b.Len())
	}
}

func TestAppendKeepsOrder(t *testing.T) {
	var b Buffer
	if err := b.Append(100, []byte("a")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := b.Append(250, []byte("b")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := b.Append(200, []byte("c")); !errors.Is(err, ErrUnordered) {
		t.Fatalf("expected ErrUnordered, got %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("rejected append must not grow the buffer, len=%d", b.Len())
	}
	if got := b.Duration(); got != 150*time.Millisecond {
		t.Fatalf("expected duration 150ms, got %s", got)
	}
}

func TestEmptyAndNilBuffer(t *testing.T) {
	var nilBuf *Buffer
	if nilBuf.Len() != 0 {
		t.Fatalf("nil buffer should have zero length")
	}
	if nilBuf.Duration() != 0 {
		t.Fatalf("nil buffer should have zero duration")
	}
	single := &Buffer{Messages: []Message{{Timestamp: 42}}}
	if single.Duration() != 0 {
		t.Fatalf("single message buffer should have zero duration")
	}
}
