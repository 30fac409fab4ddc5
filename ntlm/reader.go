package ntlm

import "encoding/binary"

// reader reads fields out of a received message. All reads are bounds
// checked against the message, an out of range read is a PacketReadError.
type reader struct {
	buf []byte
}

func newReader(msg []byte) *reader {
	return &reader{buf: msg}
}

func (r *reader) readBytes(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset > len(r.buf) || length > len(r.buf)-offset {
		return nil, newError(PacketReadError, "input message incorrect size")
	}
	b := make([]byte, length)
	copy(b, r.buf[offset:offset+length])
	return b, nil
}

func (r *reader) readShort(offset int) (uint16, error) {
	b, err := r.readBytes(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) readInt(offset int) (uint32, error) {
	b, err := r.readBytes(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// readSecurityBuffer returns the payload of the security buffer whose
// length/offset triple starts at offset. A zero payload offset means the
// field is absent and yields an empty slice.
func (r *reader) readSecurityBuffer(offset int) ([]byte, error) {
	pos, err := r.readInt(offset + 4)
	if err != nil {
		return nil, err
	}
	if pos == 0 {
		return []byte{}, nil
	}
	length, err := r.readShort(offset)
	if err != nil {
		return nil, err
	}
	if uint64(pos) > uint64(len(r.buf)) {
		return nil, newError(PacketReadError, "security buffer at %d points outside the message", offset)
	}
	return r.readBytes(int(pos), int(length))
}

func (r *reader) readSecurityString(offset int, isUnicode bool) (string, error) {
	b, err := r.readSecurityBuffer(offset)
	if err != nil {
		return "", err
	}
	return decodeString(b, isUnicode)
}
