package player

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"oscreplay/buffer"
)

// Transport sends one datagram. Delivery is not confirmed.
type Transport interface {
	Send(dst *net.UDPAddr, payload []byte) error
}

// Status is a point-in-time view of the player.
type Status struct {
	Session    string `json:"session"`
	Playing    bool   `json:"playing"`
	Position   int    `json:"position"`
	Total      int    `json:"total"`
	Traversals int    `json:"traversals"`
	Sent       int64  `json:"sent"`
	Failed     int64  `json:"failed"`
}

// Player replays a Buffer to a UDP destination, keeping the recorded spacing
// between messages and correcting for drift of the wall clock.
type Player struct {
	transport Transport

	// mu guards the fields below; they are snapshotted when a cycle begins.
	mu    sync.Mutex
	buf   *buffer.Buffer
	cfg   Config
	obs   Observer
	clock Clock

	// active is held for the whole Play call, playing only until the loop
	// decides to exit.
	active     atomic.Bool
	playing    atomic.Bool
	position   atomic.Int64
	total      atomic.Int64
	traversals atomic.Int64
	sent       atomic.Int64
	failed     atomic.Int64
	session    atomic.Value
	cancel     atomic.Pointer[context.CancelFunc]
}

type cycle struct {
	id    string
	msgs  []buffer.Message
	cfg   Config
	dst   *net.UDPAddr
	obs   Observer
	clock Clock
}

func NewPlayer(buf *buffer.Buffer, transport Transport) *Player {
	p := &Player{
		transport: transport,
		buf:       buf,
		cfg:       DefaultConfig(),
		obs:       NopObserver{},
		clock:     systemClock{},
	}
	p.session.Store("")
	return p
}

func (p *Player) SetConfig(cfg Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active.Load() {
		return ErrAlreadyPlaying
	}
	p.cfg = cfg
	return nil
}

func (p *Player) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

func (p *Player) SetBuffer(buf *buffer.Buffer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active.Load() {
		return ErrAlreadyPlaying
	}
	p.buf = buf
	return nil
}

func (p *Player) SetObserver(obs Observer) {
	if obs == nil {
		obs = NopObserver{}
	}
	p.mu.Lock()
	p.obs = obs
	p.mu.Unlock()
}

func (p *Player) SetClock(c Clock) {
	if c == nil {
		c = systemClock{}
	}
	p.mu.Lock()
	p.clock = c
	p.mu.Unlock()
}

func (p *Player) IsPlaying() bool { return p.playing.Load() }

// Position is the index of the next message to send. It resets to 0 on loop
// restart.
func (p *Player) Position() int { return int(p.position.Load()) }

func (p *Player) Status() Status {
	return Status{
		Session:    p.session.Load().(string),
		Playing:    p.playing.Load(),
		Position:   int(p.position.Load()),
		Total:      int(p.total.Load()),
		Traversals: int(p.traversals.Load()),
		Sent:       p.sent.Load(),
		Failed:     p.failed.Load(),
	}
}

// Play runs one playback cycle and blocks until it ends. An empty buffer
// returns nil without playing. A cancelled ctx ends the cycle like Stop and is
// reported as ctx.Err().
func (p *Player) Play(ctx context.Context) error {
	c, err := p.begin()
	if err != nil || c == nil {
		return err
	}
	return p.run(ctx, c)
}

// Start validates like Play and then plays on a separate goroutine.
func (p *Player) Start(ctx context.Context) error {
	c, err := p.begin()
	if err != nil || c == nil {
		return err
	}
	go func() {
		if err := p.run(ctx, c); err != nil {
			log.Printf("Playback %s ended: %v", c.id, err)
		}
	}()
	return nil
}

// Stop ends playback at the next loop boundary. With InterruptibleStop an
// in-flight wait is woken as well. Safe to call from any goroutine.
func (p *Player) Stop() {
	p.playing.Store(false)
	if cancel := p.cancel.Load(); cancel != nil {
		(*cancel)()
	}
}

func (p *Player) begin() (*cycle, error) {
	if !p.active.CompareAndSwap(false, true) {
		return nil, ErrAlreadyPlaying
	}

	p.mu.Lock()
	c := &cycle{cfg: p.cfg, obs: p.obs, clock: p.clock}
	buf := p.buf
	p.mu.Unlock()

	fail := func(err error) (*cycle, error) {
		p.active.Store(false)
		return nil, err
	}

	if err := c.cfg.Validate(); err != nil {
		return fail(err)
	}
	dst, err := c.cfg.Destination()
	if err != nil {
		return fail(err)
	}
	if buf == nil {
		return fail(ErrNoBuffer)
	}
	if err := buf.Validate(); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrInvalidConfiguration, err))
	}
	if buf.Len() == 0 {
		p.active.Store(false)
		return nil, nil
	}

	c.dst = dst
	c.msgs = buf.Messages
	c.id = uuid.NewString()

	p.session.Store(c.id)
	p.position.Store(0)
	p.total.Store(int64(len(c.msgs)))
	p.traversals.Store(0)
	p.sent.Store(0)
	p.failed.Store(0)
	p.playing.Store(true)
	return c, nil
}

func (p *Player) run(parent context.Context, c *cycle) error {
	defer p.active.Store(false)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	p.cancel.Store(&cancel)
	defer p.cancel.Store(nil)

	speed := c.cfg.Speed
	anchor := c.msgs[0].Timestamp
	last := anchor

	log.Printf("Playback %s: %d messages to %s at %.2fx (loop=%v)", c.id, len(c.msgs), c.dst, speed, c.cfg.Loop)
	c.obs.PlaybackStarted(c.id, len(c.msgs))

	ref := c.clock.Now()
	pos := 0
	for pos < len(c.msgs) && p.playing.Load() && ctx.Err() == nil {
		msg := c.msgs[pos]
		idx := pos
		pos++
		p.position.Store(int64(pos))

		nominal := msg.Timestamp - last
		actual := scaledElapsed(c.clock.Now().Sub(ref), speed)
		drift := actual - (last - anchor)
		corrected := Correct(nominal, drift)

		var wait time.Duration
		if corrected > 0 {
			wait = wallWait(corrected, speed)
			if !p.suspend(ctx, c, wait) {
				pos = idx
				p.position.Store(int64(pos))
				break
			}
		}

		ev := SendEvent{
			Session:   c.id,
			Index:     idx,
			Timestamp: msg.Timestamp,
			Drift:     time.Duration(drift) * time.Millisecond,
			Wait:      wait,
		}
		if err := p.transport.Send(c.dst, msg.Payload); err != nil {
			p.failed.Add(1)
			log.Printf("Playback %s: send #%d to %s failed: %v", c.id, idx, c.dst, err)
			c.obs.SendFailed(ev, err)
		} else {
			p.sent.Add(1)
			c.obs.MessageSent(ev)
		}
		last = msg.Timestamp

		if c.cfg.Loop && pos >= len(c.msgs) {
			last = anchor
			ref = c.clock.Now()
			pos = 0
			p.position.Store(0)
			c.obs.TraversalRestarted(c.id, int(p.traversals.Add(1)))
		}
	}

	p.playing.Store(false)
	st := p.Status()
	log.Printf("Playback %s stopped at %d/%d, sent=%d failed=%d", c.id, st.Position, st.Total, st.Sent, st.Failed)
	c.obs.PlaybackStopped(c.id, st)

	return parent.Err()
}

// suspend waits d on the cycle clock. It reports false if the wait was
// interrupted, which only happens with InterruptibleStop.
func (p *Player) suspend(ctx context.Context, c *cycle, d time.Duration) bool {
	timer := c.clock.After(d)
	if !c.cfg.InterruptibleStop {
		<-timer
		return true
	}
	select {
	case <-timer:
		return true
	case <-ctx.Done():
		return false
	}
}
