// Package wire frames cache values written to untrusted storage (the file
// backend). A fixed magic, version byte and length prefix let the reader
// detect foreign or truncated files and self-heal by deleting them instead
// of surfacing garbage.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("stratacache: corrupt entry")
	magic4     = [...]byte{'S', 'T', 'R', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | vlen(u32 be) | payload(vlen)
func EncodeEntry(payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeEntry validates the frame and returns the payload. Trailing bytes
// after the declared length are treated as corruption.
func DecodeEntry(b []byte) ([]byte, error) {
	const hdr = 4 + 1 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return nil, ErrCorrupt
	}

	vlen := int(binary.BigEndian.Uint32(b[5:9]))
	if vlen != len(b)-hdr {
		return nil, ErrCorrupt
	}
	return b[hdr : hdr+vlen], nil
}
