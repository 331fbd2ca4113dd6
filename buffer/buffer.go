package buffer

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnordered = errors.New("buffer timestamps must be non-decreasing")

// Message is one recorded packet. Timestamp is in milliseconds relative to
// the capture; only differences between timestamps are meaningful.
type Message struct {
	Timestamp int64
	Payload   []byte
}

// Buffer holds messages in capture order. It is not modified during playback.
type Buffer struct {
	Messages []Message
}

func New(msgs []Message) (*Buffer, error) {
	b := &Buffer{Messages: msgs}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Buffer) Append(ts int64, payload []byte) error {
	if n := len(b.Messages); n > 0 && ts < b.Messages[n-1].Timestamp {
		return fmt.Errorf("%w: %d after %d", ErrUnordered, ts, b.Messages[n-1].Timestamp)
	}
	b.Messages = append(b.Messages, Message{Timestamp: ts, Payload: payload})
	return nil
}

func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Messages)
}

// Duration is the recorded span between the first and last message.
func (b *Buffer) Duration() time.Duration {
	if b.Len() < 2 {
		return 0
	}
	first := b.Messages[0].Timestamp
	last := b.Messages[len(b.Messages)-1].Timestamp
	return time.Duration(last-first) * time.Millisecond
}

func (b *Buffer) Validate() error {
	for i := 1; i < len(b.Messages); i++ {
		if b.Messages[i].Timestamp < b.Messages[i-1].Timestamp {
			return fmt.Errorf("%w: message %d at %d precedes %d", ErrUnordered, i,
				b.Messages[i].Timestamp, b.Messages[i-1].Timestamp)
		}
	}
	return nil
}
