package binlog

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"oscreplay/buffer"
)

var ErrBadMagic = errors.New("not a pcap file")

func ReadBuffer(path string) (*buffer.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// Decode reads FlagPacket records into a Buffer with millisecond timestamps.
// Other record kinds are skipped and a truncated trailing record ends the read.
func Decode(r io.Reader) (*buffer.Buffer, error) {
	hdr := make([]byte, pcapGlobalLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("pcap header: %w", err)
	}
	if magic := binary.LittleEndian.Uint32(hdr[0:4]); magic != PcapMagic {
		return nil, fmt.Errorf("%w: magic 0x%08x", ErrBadMagic, magic)
	}

	buf := &buffer.Buffer{}
	rec := make([]byte, pcapRecordLen)
	phdr := make([]byte, phdr2Len)
	for {
		if _, err := io.ReadFull(r, rec); err != nil {
			if isEOF(err) {
				break
			}
			return nil, fmt.Errorf("pcap record: %w", err)
		}
		tsSec := binary.LittleEndian.Uint32(rec[0:4])
		tsUsec := binary.LittleEndian.Uint32(rec[4:8])
		inclLen := binary.LittleEndian.Uint32(rec[8:12])

		if inclLen < phdr2Len {
			// malformed record, skip the stated length
			if _, err := io.CopyN(io.Discard, r, int64(inclLen)); err != nil {
				if isEOF(err) {
					break
				}
				return nil, fmt.Errorf("skip malformed record: %w", err)
			}
			continue
		}

		if _, err := io.ReadFull(r, phdr); err != nil {
			if isEOF(err) {
				break
			}
			return nil, fmt.Errorf("pcap phdr2: %w", err)
		}
		flag := binary.LittleEndian.Uint16(phdr[0:2])

		payload := make([]byte, int(inclLen)-phdr2Len)
		if _, err := io.ReadFull(r, payload); err != nil {
			if isEOF(err) {
				break
			}
			return nil, fmt.Errorf("pcap payload: %w", err)
		}

		if flag != FlagPacket {
			continue
		}

		ts := int64(tsSec)*1000 + int64(tsUsec)/1000
		if err := buf.Append(ts, payload); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
