package ntlm

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterHeader(t *testing.T) {
	w := newWriter(3, 64)
	msg := w.bytes()

	require.Len(t, msg, 64)
	assert.Equal(t, signature, msg[:8])
	assert.Equal(t, byte(3), msg[8])
}

func TestWriterBadBase(t *testing.T) {
	assert.Panics(t, func() { newWriter(1, 8) })
	assert.Panics(t, func() { newWriter(1, 256) })
}

func TestWriterSecurityBuffers(t *testing.T) {
	w := newWriter(2, 40)
	require.NoError(t, w.writeSecurityBuffer(12, []byte("abc")))
	require.NoError(t, w.writeSecurityBuffer(20, nil))
	require.NoError(t, w.writeSecurityString(28, "de", true))

	r := newReader(w.bytes())
	b, err := r.readSecurityBuffer(12)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)

	l, err := r.readShort(20)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), l)
	off, err := r.readInt(24)
	require.NoError(t, err)
	assert.Equal(t, uint32(43), off)

	s, err := r.readSecurityString(20, true)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	s, err = r.readSecurityString(28, true)
	require.NoError(t, err)
	assert.Equal(t, "de", s)
	assert.Len(t, w.bytes(), 47)
}

func TestWriterGrows(t *testing.T) {
	w := newWriter(3, 64)
	big := make([]byte, 1000)
	for i := range big {
		big[i] = byte(i)
	}
	require.NoError(t, w.writeSecurityBuffer(12, big))
	require.NoError(t, w.writeSecurityBuffer(20, []byte{1, 2}))

	msg := w.bytes()
	require.Len(t, msg, 64+1000+2)

	r := newReader(msg)
	b, err := r.readSecurityBuffer(12)
	require.NoError(t, err)
	assert.Equal(t, big, b)
	b, err = r.readSecurityBuffer(20)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)
}

func TestWriterRejectsOversizedBuffer(t *testing.T) {
	w := newWriter(3, 64)
	require.NoError(t, w.writeSecurityBuffer(12, make([]byte, math.MaxUint16)))

	err := w.writeSecurityBuffer(20, make([]byte, math.MaxUint16+1))
	assert.Equal(t, Protocol, KindOf(err))
	assert.Len(t, w.bytes(), 64+math.MaxUint16)

	err = w.writeSecurityString(28, strings.Repeat("x", 40000), true)
	assert.Equal(t, Protocol, KindOf(err))
}

func TestReaderOutOfRange(t *testing.T) {
	r := newReader(make([]byte, 10))

	cases := []struct {
		name string
		read func() error
	}{
		{"int", func() error { _, err := r.readInt(8); return err }},
		{"short", func() error { _, err := r.readShort(9); return err }},
		{"bytes", func() error { _, err := r.readBytes(4, 7); return err }},
		{"negative", func() error { _, err := r.readBytes(-1, 2); return err }},
		{"security buffer", func() error { _, err := r.readSecurityBuffer(12); return err }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.read()
			assert.True(t, errors.Is(err, ErrPacketRead), "got %v", err)
		})
	}
}

func TestReaderSecurityBufferOutsideMessage(t *testing.T) {
	msg := make([]byte, 16)
	// length 4 at offset 14: crosses the end
	msg[0], msg[2], msg[4] = 4, 4, 14
	_, err := newReader(msg).readSecurityBuffer(0)
	assert.Equal(t, PacketReadError, KindOf(err))

	msg[4] = 200
	_, err = newReader(msg).readSecurityBuffer(0)
	assert.Equal(t, PacketReadError, KindOf(err))
}

func TestReaderAbsentField(t *testing.T) {
	msg := make([]byte, 16)
	msg[0] = 4
	b, err := newReader(msg).readSecurityBuffer(0)
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestReaderCopies(t *testing.T) {
	msg := []byte{1, 2, 3, 4}
	b, err := newReader(msg).readBytes(0, 4)
	require.NoError(t, err)
	b[0] = 9
	assert.Equal(t, byte(1), msg[0])
}

func TestStrings(t *testing.T) {
	assert.Equal(t, []byte{'R', 0, 'E', 0}, encodeString("RE", true))
	assert.Equal(t, []byte("RE"), encodeString("RE", false))
	assert.Equal(t, []byte{'?', 0xe9}, encodeLatin1([]byte("€é")))

	s, err := decodeString([]byte{0xe9}, false)
	require.NoError(t, err)
	assert.Equal(t, "é", s)

	_, err = decodeString([]byte{'a', 0, 'b'}, true)
	assert.Equal(t, PacketReadError, KindOf(err))

	assert.Equal(t, "STRASSE", toUpper("straße"))
	assert.Equal(t, []byte("PASSWORD"), passwordP1([]byte("password")))
}

func TestVersionStrings(t *testing.T) {
	cases := []struct {
		name      string
		version   Version
		writeLM   bool
		writeNTLM bool
	}{
		{"LM", NTLM, true, false},
		{"NTLM", NTLM, false, true},
		{"LM/NTLM", NTLM, true, true},
		{"NTLM2", NTLM2, true, true},
		{"LMv2", NTLMv2, true, false},
		{"NTLMv2", NTLMv2, false, true},
		{"LMv2/NTLMv2", NTLMv2, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := lookupProfile(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.version, p.version)
			assert.Equal(t, tc.writeLM, p.writeLM)
			assert.Equal(t, tc.writeNTLM, p.writeNTLM)

			v, err := ParseVersion(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.version, v)
		})
	}

	_, err := ParseVersion("NTLMv3")
	assert.True(t, errors.Is(err, ErrBadVersion))
	_, err = ParseVersion("ntlm")
	assert.True(t, errors.Is(err, ErrBadVersion))
}

func TestSecretDispose(t *testing.T) {
	b := []byte{1, 2, 3}
	s := NewSecret(b)
	assert.False(t, s.Disposed())
	assert.Equal(t, []byte{1, 2, 3}, s.Bytes())

	s.Dispose()
	assert.True(t, s.Disposed())
	assert.Nil(t, s.Bytes())
	assert.Equal(t, []byte{0, 0, 0}, b)

	s.Dispose()
}

func TestErrors(t *testing.T) {
	err := newError(AuthFailed, "REALM\\dummy")
	assert.EqualError(t, err, "ntlm: authentication failed: REALM\\dummy")
	assert.True(t, errors.Is(err, ErrAuthFailed))
	assert.False(t, errors.Is(err, ErrUserUnknown))
	assert.Equal(t, AuthFailed, KindOf(fmtWrap(err)))
	assert.Equal(t, Kind(0), KindOf(errors.New("other")))
	assert.Equal(t, "ntlm: bad version", ErrBadVersion.Error())
}

func fmtWrap(err error) error {
	return &wrapped{err}
}

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }
