package ntlm

import (
	"bytes"
	"encoding/binary"
)

// AV pair ids of a target information block.
const (
	AvEOL             uint16 = 0x0000
	AvNbComputerName  uint16 = 0x0001
	AvNbDomainName    uint16 = 0x0002
	AvDNSComputerName uint16 = 0x0003
	AvDNSDomainName   uint16 = 0x0004
	AvDNSTreeName     uint16 = 0x0005
	AvFlags           uint16 = 0x0006
	AvTimestamp       uint16 = 0x0007
	AvSingleHost      uint16 = 0x0008
	AvTargetName      uint16 = 0x0009
	AvChannelBindings uint16 = 0x000a
)

// AVPair is one entry of a target information block.
type AVPair struct {
	ID    uint16
	Value []byte
}

// String decodes the value as UTF-16LE, which is what the name pairs hold.
func (p AVPair) String() string {
	s, err := decodeString(p.Value, true)
	if err != nil {
		return ""
	}
	return s
}

// ParseAVPairs decodes a target information block up to its AvEOL entry.
func ParseAVPairs(b []byte) ([]AVPair, error) {
	var pairs []AVPair
	r := newReader(b)
	for off := 0; off < len(b); {
		id, err := r.readShort(off)
		if err != nil {
			return nil, err
		}
		n, err := r.readShort(off + 2)
		if err != nil {
			return nil, err
		}
		if id == AvEOL {
			return pairs, nil
		}
		v, err := r.readBytes(off+4, int(n))
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, AVPair{ID: id, Value: v})
		off += 4 + int(n)
	}
	return pairs, nil
}

// EncodeAVPairs lays out pairs as a target information block terminated by
// AvEOL.
func EncodeAVPairs(pairs []AVPair) []byte {
	var b []byte
	for _, p := range pairs {
		b = binary.LittleEndian.AppendUint16(b, p.ID)
		b = binary.LittleEndian.AppendUint16(b, uint16(len(p.Value)))
		b = append(b, p.Value...)
	}
	return append(b, 0, 0, 0, 0)
}

// Message is the decoded form of a Type 1, 2 or 3 message. Fields that do
// not occur in the message type are left empty.
type Message struct {
	Type  int
	Flags Flags

	// Type 1 and Type 3
	Domain   string
	Hostname string

	// Type 2
	TargetName string
	Challenge  []byte
	TargetInfo []AVPair

	// Type 3
	UserName     string
	LMResponse   []byte
	NTLMResponse []byte
}

// MessageType returns the type of an NTLMSSP message.
func MessageType(msg []byte) (int, error) {
	if len(msg) < len(signature)+4 || !bytes.Equal(msg[:len(signature)], signature) {
		return 0, newError(PacketReadError, "not an NTLMSSP message")
	}
	t := int(binary.LittleEndian.Uint32(msg[8:]))
	if t < 1 || t > 3 {
		return 0, newError(PacketReadError, "unknown message type %d", t)
	}
	return t, nil
}

// Inspect decodes any of the three handshake messages.
func Inspect(msg []byte) (*Message, error) {
	t, err := MessageType(msg)
	if err != nil {
		return nil, err
	}
	m := &Message{Type: t}
	r := newReader(msg)

	switch t {
	case 1:
		err = m.readType1(r)
	case 2:
		err = m.readType2(r)
	case 3:
		err = m.readType3(r)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Message) readType1(r *reader) error {
	f, err := r.readInt(12)
	if err != nil {
		return err
	}
	m.Flags = Flags(f)
	// the supplied domain and workstation are optional and always OEM
	if len(r.buf) < 32 {
		return nil
	}
	if m.Domain, err = r.readSecurityString(16, false); err != nil {
		return err
	}
	m.Hostname, err = r.readSecurityString(24, false)
	return err
}

func (m *Message) readType2(r *reader) error {
	f, err := r.readInt(20)
	if err != nil {
		return err
	}
	m.Flags = Flags(f)
	isUnicode := m.Flags.Has(FlagUnicode)

	if m.TargetName, err = r.readSecurityString(12, isUnicode); err != nil {
		return err
	}
	if m.Challenge, err = r.readBytes(24, 8); err != nil {
		return err
	}
	if !m.Flags.Has(FlagTargetInfo) {
		return nil
	}
	ti, err := r.readSecurityBuffer(40)
	if err != nil {
		return err
	}
	m.TargetInfo, err = ParseAVPairs(ti)
	return err
}

func (m *Message) readType3(r *reader) error {
	f, err := r.readInt(60)
	if err != nil {
		return err
	}
	m.Flags = Flags(f)
	isUnicode := m.Flags.Has(FlagUnicode) || !m.Flags.Has(FlagOEM)

	if m.LMResponse, err = r.readSecurityBuffer(12); err != nil {
		return err
	}
	if m.NTLMResponse, err = r.readSecurityBuffer(20); err != nil {
		return err
	}
	if m.Domain, err = r.readSecurityString(28, isUnicode); err != nil {
		return err
	}
	if m.UserName, err = r.readSecurityString(36, isUnicode); err != nil {
		return err
	}
	m.Hostname, err = r.readSecurityString(44, isUnicode)
	return err
}

// LMHash returns the 16 byte LM hash of password.
func LMHash(password []byte) []byte {
	p1 := passwordP1(password)
	defer clear(p1)
	return calcLMHash(p1)[:16]
}

// NTHash returns the 16 byte NT hash (MD4 of the UTF-16LE password).
func NTHash(password []byte) []byte {
	p2 := passwordP2(password)
	defer clear(p2)
	return calcNTHash(p2)[:16]
}
