// Package ntlm implements the NTLM challenge/response handshake: the
// negotiate (Type 1), challenge (Type 2) and authenticate (Type 3) messages,
// and the LM, NTLM, NTLM2 session and NTLMv2 responses carried in them.
//
// The legacy algorithms are reproduced bit for bit, weaknesses included,
// so that existing peers interoperate. A Client or Server is meant to be
// used by one goroutine at a time.
package ntlm

import (
	"encoding/hex"
)

// Logger receives debug traces of the handshake, including hex dumps of
// every message. A logrus.FieldLogger satisfies it.
type Logger interface {
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}

// engine carries what Client and Server share: the negotiated version and
// the debug sink.
type engine struct {
	version   Version
	writeLM   bool
	writeNTLM bool
	log       Logger
}

func newEngine(p profile) engine {
	return engine{
		version:   p.version,
		writeLM:   p.writeLM,
		writeNTLM: p.writeNTLM,
		log:       nopLogger{},
	}
}

// Version returns the version selected at construction.
func (e *engine) Version() Version {
	return e.version
}

// SetLogger installs a debug sink. A nil logger disables debug output.
func (e *engine) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	e.log = l
}

func (e *engine) debugf(format string, args ...interface{}) {
	e.log.Debugf(format, args...)
}

func (e *engine) debugMessage(what string, msg []byte) {
	e.log.Debugf("%s (%d bytes)\n%s", what, len(msg), hex.Dump(msg))
}

func checkNonce(nonce []byte, what string) error {
	if len(nonce) != 8 {
		return newError(Protocol, "%s must be 8 bytes, got %d", what, len(nonce))
	}
	return nil
}
