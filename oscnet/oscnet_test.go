package oscnet

import (
	"net"
	"testing"
	"time"
)

func TestClientSendsToListener(t *testing.T) {
	l, err := NewListener("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	got := make(chan []byte, 1)
	done := make(chan struct{})
	go func() {
		l.Serve(func(data []byte, addr *net.UDPAddr, at time.Time) {
			got <- data
		})
		close(done)
	}()

	c, err := NewClient()
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer c.Close()

	if err := c.Send(l.LocalAddr(), []byte("/ping")); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case data := <-got:
		if string(data) != "/ping" {
			t.Fatalf("unexpected payload %q", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("datagram not received")
	}

	l.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}
}

func TestClosedClientRejectsSend(t *testing.T) {
	c, err := NewClient()
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	dst := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}
	if err := c.Send(dst, []byte("x")); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
