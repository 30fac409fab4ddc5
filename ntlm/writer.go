package ntlm

import (
	"encoding/binary"
	"math"
)

var signature = []byte("NTLMSSP\x00")

// writer builds an outgoing message. The fixed region of base bytes is
// written in place; security buffer payloads are appended at a cursor that
// only moves forward, so payloads appear in write order.
type writer struct {
	buf []byte
	cur int
}

func newWriter(msgType byte, base int) *writer {
	if base < len(signature)+4 || base >= 256 {
		panic("ntlm: fixed region must hold the header and be shorter than 256 bytes")
	}
	w := &writer{
		buf: make([]byte, 256),
		cur: base,
	}
	copy(w.buf, signature)
	w.buf[8] = msgType
	return w
}

func (w *writer) writeShort(offset int, v uint16) {
	binary.LittleEndian.PutUint16(w.buf[offset:], v)
}

func (w *writer) writeInt(offset int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[offset:], v)
}

func (w *writer) writeBytes(offset int, data []byte) {
	copy(w.buf[offset:], data)
}

// writeSecurityBuffer appends data and points the triple at offset to it.
// A nil data only records the cursor as the payload offset. Payloads that
// do not fit the 16 bit length field are rejected.
func (w *writer) writeSecurityBuffer(offset int, data []byte) error {
	if data == nil {
		w.writeInt(offset+4, uint32(w.cur))
		return nil
	}
	n := len(data)
	if n > math.MaxUint16 {
		return newError(Protocol, "security buffer at %d is %d bytes, limit is %d", offset, n, math.MaxUint16)
	}
	if w.cur+n > len(w.buf) {
		grown := make([]byte, w.cur+n+256)
		copy(grown, w.buf[:w.cur])
		w.buf = grown
	}
	w.writeShort(offset, uint16(n))
	w.writeShort(offset+2, uint16(n))
	w.writeInt(offset+4, uint32(w.cur))
	copy(w.buf[w.cur:], data)
	w.cur += n
	return nil
}

func (w *writer) writeSecurityString(offset int, s string, isUnicode bool) error {
	return w.writeSecurityBuffer(offset, encodeString(s, isUnicode))
}

// bytes returns the message up to the cursor.
func (w *writer) bytes() []byte {
	out := make([]byte, w.cur)
	copy(out, w.buf)
	return out
}
