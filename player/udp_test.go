package player_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oscreplay/buffer"
	"oscreplay/oscnet"
	"oscreplay/player"
)

const timingTolerance = 30 * time.Millisecond

type arrival struct {
	payload string
	at      time.Time
}

func TestPlayOverLoopbackKeepsTiming(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	tests := []struct {
		speed float64
		want  []time.Duration
	}{
		{speed: 1.0, want: []time.Duration{0, 100 * time.Millisecond, 250 * time.Millisecond}},
		{speed: 2.0, want: []time.Duration{0, 50 * time.Millisecond, 125 * time.Millisecond}},
	}

	for _, tt := range tests {
		l, err := oscnet.NewListener("127.0.0.1:0")
		require.NoError(t, err)

		var mu sync.Mutex
		var got []arrival
		received := make(chan struct{}, 3)
		go l.Serve(func(data []byte, _ *net.UDPAddr, at time.Time) {
			mu.Lock()
			got = append(got, arrival{payload: string(data), at: at})
			mu.Unlock()
			received <- struct{}{}
		})

		client, err := oscnet.NewClient()
		require.NoError(t, err)

		buf, err := buffer.New([]buffer.Message{
			{Timestamp: 1000, Payload: []byte("A")},
			{Timestamp: 1100, Payload: []byte("B")},
			{Timestamp: 1250, Payload: []byte("C")},
		})
		require.NoError(t, err)

		p := player.NewPlayer(buf, client)
		cfg := player.DefaultConfig()
		cfg.Port = l.LocalAddr().Port
		cfg.Speed = tt.speed
		require.NoError(t, p.SetConfig(cfg))

		start := time.Now()
		require.NoError(t, p.Play(context.Background()))
		total := time.Since(start)

		for i := 0; i < 3; i++ {
			select {
			case <-received:
			case <-time.After(2 * time.Second):
				t.Fatalf("speed %.1f: only %d datagrams arrived", tt.speed, i)
			}
		}
		l.Stop()
		client.Close()

		mu.Lock()
		require.Len(t, got, 3)
		for i, a := range got {
			assert.Equal(t, string(rune('A'+i)), a.payload)
			assert.InDelta(t, float64(tt.want[i]), float64(a.at.Sub(got[0].at)), float64(timingTolerance),
				"speed %.1f message %d", tt.speed, i)
		}
		mu.Unlock()
		assert.InDelta(t, float64(tt.want[2]), float64(total), float64(timingTolerance))
	}
}

func TestStopBoundsLatencyToOneWait(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	client, err := oscnet.NewClient()
	require.NoError(t, err)
	defer client.Close()
	l, err := oscnet.NewListener("127.0.0.1:0")
	require.NoError(t, err)
	defer l.Stop()
	go l.Serve(func([]byte, *net.UDPAddr, time.Time) {})

	buf := &buffer.Buffer{}
	for i := int64(0); i < 10; i++ {
		require.NoError(t, buf.Append(i*200, []byte{byte(i)}))
	}
	p := player.NewPlayer(buf, client)
	cfg := player.DefaultConfig()
	cfg.Port = l.LocalAddr().Port
	require.NoError(t, p.SetConfig(cfg))

	done := make(chan error, 1)
	go func() { done <- p.Play(context.Background()) }()

	time.Sleep(300 * time.Millisecond)
	stopAt := time.Now()
	p.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Play did not return within one wait interval")
	}
	assert.Less(t, time.Since(stopAt), 200*time.Millisecond+timingTolerance)
	assert.False(t, p.IsPlaying())
	st := p.Status()
	assert.Equal(t, st.Sent, int64(st.Position), "position is last sent index plus one")
	assert.Equal(t, 3, st.Position)
}
