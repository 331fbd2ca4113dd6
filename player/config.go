package player

import (
	"fmt"
	"math"
	"net"
)

const (
	DefaultHost  = "127.0.0.1"
	DefaultPort  = 8000
	DefaultSpeed = 1.0
)

// Config is read once when a cycle starts; changing it mid-cycle is rejected.
type Config struct {
	Host  string
	Port  int
	Speed float64
	Loop  bool

	// InterruptibleStop lets Stop wake an in-flight wait instead of letting it
	// run out. The interrupted message is not sent.
	InterruptibleStop bool
}

func DefaultConfig() Config {
	return Config{
		Host:  DefaultHost,
		Port:  DefaultPort,
		Speed: DefaultSpeed,
	}
}

func (c Config) Validate() error {
	if math.IsNaN(c.Speed) || math.IsInf(c.Speed, 0) || c.Speed <= 0 {
		return fmt.Errorf("%w: speed must be a positive number, got %v", ErrInvalidConfiguration, c.Speed)
	}
	return nil
}

// Destination resolves Host and Port. Host must be a literal IP address.
func (c Config) Destination() (*net.UDPAddr, error) {
	ip := net.ParseIP(c.Host)
	if ip == nil {
		return nil, fmt.Errorf("%w: %q is not an IP address", ErrInvalidAddress, c.Host)
	}
	if c.Port < 1 || c.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidAddress, c.Port)
	}
	return &net.UDPAddr{IP: ip, Port: c.Port}, nil
}
