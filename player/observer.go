package player

import "time"

// SendEvent describes one dispatch attempt.
type SendEvent struct {
	Session   string
	Index     int
	Timestamp int64
	Drift     time.Duration
	Wait      time.Duration
}

// Observer is called from the playback goroutine and must not block.
type Observer interface {
	PlaybackStarted(session string, total int)
	MessageSent(ev SendEvent)
	SendFailed(ev SendEvent, err error)
	TraversalRestarted(session string, traversal int)
	PlaybackStopped(session string, st Status)
}

type NopObserver struct{}

func (NopObserver) PlaybackStarted(string, int) {}
func (NopObserver) MessageSent(SendEvent) {}
func (NopObserver) SendFailed(SendEvent, error) {}
func (NopObserver) TraversalRestarted(string, int) {}
func (NopObserver) PlaybackStopped(string, Status) {}

// Observers fans every event out in order.
type Observers []Observer

func (o Observers) PlaybackStarted(session string, total int) {
	for _, obs := range o {
		obs.PlaybackStarted(session, total)
	}
}

func (o Observers) MessageSent(ev SendEvent) {
	for _, obs := range o {
		obs.MessageSent(ev)
	}
}

func (o Observers) SendFailed(ev SendEvent, err error) {
	for _, obs := range o {
		obs.SendFailed(ev, err)
	}
}

func (o Observers) TraversalRestarted(session string, traversal int) {
	for _, obs := range o {
		obs.TraversalRestarted(session, traversal)
	}
}

func (o Observers) PlaybackStopped(session string, st Status) {
	for _, obs := range o {
		obs.PlaybackStopped(session, st)
	}
}
