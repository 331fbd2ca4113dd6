package oscnet

import (
	"errors"
	"log"
	"net"
	"sync/atomic"
	"time"
)

const (
	MaxPacketSize = 65535
	readBufferLen = 256 * 1024
)

// Handler receives a private copy of each datagram.
type Handler func(data []byte, addr *net.UDPAddr, at time.Time)

type Listener struct {
	conn    *net.UDPConn
	running atomic.Bool
}

// NewListener binds addr, e.g. ":8000" or "127.0.0.1:0".
func NewListener(addr string) (*Listener, error) {
	uaddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", uaddr)
	if err != nil {
		return nil, err
	}
	conn.SetReadBuffer(readBufferLen)
	l := &Listener{conn: conn}
	l.running.Store(true)
	return l, nil
}

func (l *Listener) LocalAddr() *net.UDPAddr {
	return l.conn.LocalAddr().(*net.UDPAddr)
}

// Serve blocks until Stop is called.
func (l *Listener) Serve(h Handler) {
	buf := make([]byte, MaxPacketSize)
	log.Printf("UDP listener on %s", l.conn.LocalAddr())

	for l.running.Load() {
		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if l.running.Load() && !errors.Is(err, net.ErrClosed) {
				log.Printf("Read error: %v", err)
				continue
			}
			return
		}
		at := time.Now()

		data := make([]byte, n)
		copy(data, buf[:n])
		h(data, addr, at)
	}
}

func (l *Listener) Stop() {
	l.running.Store(false)
	l.conn.Close()
}
