package binlog

import (
	"encoding/binary"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

const (
	PcapMagic = 0xA1B2C3D4

	pcapGlobalLen = 24
	pcapRecordLen = 16
	phdr2Len      = 8

	snapLen = 65535
)

// Record flags carried in the PHDR2 block.
const (
	FlagRx  = 0x0001
	FlagUDP = 0x0100

	// FlagPacket marks a received UDP datagram, the only record kind that
	// becomes a buffer message.
	FlagPacket = FlagRx | FlagUDP

	// FlagMeta marks annotation records written by capture tools.
	FlagMeta = 0x0010
)

type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	pw, err := NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return pw, nil
}

// NewWriter writes the global header to w immediately.
func NewWriter(w io.Writer) (*Writer, error) {
	pw := &Writer{
		w:   w,
		buf: make([]byte, pcapRecordLen), // reused for record headers
	}
	if err := pw.writeGlobalHeader(); err != nil {
		return nil, err
	}
	return pw, nil
}

func (pw *Writer) writeGlobalHeader() error {
	// Magic(4), Major(2), Minor(2), Zone(4), Sig(4), Snap(4), Link(4)
	b := make([]byte, pcapGlobalLen)
	binary.LittleEndian.PutUint32(b[0:], PcapMagic)
	binary.LittleEndian.PutUint16(b[4:], 2)
	binary.LittleEndian.PutUint16(b[6:], 4)
	binary.LittleEndian.PutUint32(b[16:], snapLen)
	binary.LittleEndian.PutUint32(b[20:], 1)

	_, err := pw.w.Write(b)
	return err
}

func (pw *Writer) WritePacket(flag uint16, addr *net.UDPAddr, data []byte) error {
	return pw.WritePacketAt(time.Now(), flag, addr, data)
}

func (pw *Writer) WritePacketAt(at time.Time, flag uint16, addr *net.UDPAddr, data []byte) error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	totalLen := uint32(len(data) + phdr2Len)

	// ts_sec(4), ts_usec(4), incl_len(4), orig_len(4)
	binary.LittleEndian.PutUint32(pw.buf[0:], uint32(at.Unix()))
	binary.LittleEndian.PutUint32(pw.buf[4:], uint32(at.Nanosecond()/1000))
	binary.LittleEndian.PutUint32(pw.buf[8:], totalLen)
	binary.LittleEndian.PutUint32(pw.buf[12:], totalLen)
	if _, err := pw.w.Write(pw.buf[:pcapRecordLen]); err != nil {
		return err
	}

	// flag(2), port(2), ip(4)
	binary.LittleEndian.PutUint16(pw.buf[0:], flag)
	port := uint16(0)
	var ip4 net.IP
	if addr != nil {
		port = uint16(addr.Port)
		ip4 = addr.IP.To4()
	}
	binary.LittleEndian.PutUint16(pw.buf[2:], port)
	if ip4 != nil {
		// network byte order, as the capture tools expect
		copy(pw.buf[4:8], ip4)
	} else {
		binary.LittleEndian.PutUint32(pw.buf[4:], 0)
	}
	if _, err := pw.w.Write(pw.buf[:phdr2Len]); err != nil {
		return err
	}

	_, err := pw.w.Write(data)
	return err
}

func (pw *Writer) Close() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if c, ok := pw.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
