package oscnet

import (
	"errors"
	"net"
	"sync/atomic"
)

var ErrClosed = errors.New("client closed")

// Client writes datagrams from a single unconnected UDP socket, so one client
// can reach any destination.
type Client struct {
	conn    *net.UDPConn
	running atomic.Bool
}

func NewClient() (*Client, error) {
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, err
	}
	c := &Client{conn: conn}
	c.running.Store(true)
	return c, nil
}

// Send is fire-and-forget: a nil error only means the datagram left the socket.
func (c *Client) Send(dst *net.UDPAddr, payload []byte) error {
	if !c.running.Load() {
		return ErrClosed
	}
	_, err := c.conn.WriteToUDP(payload, dst)
	return err
}

func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Client) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	return c.conn.Close()
}
