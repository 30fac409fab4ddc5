package ntlm

import (
	"time"
)

// Client produces the Type 1 and Type 3 messages for one set of
// credentials.
type Client struct {
	engine

	hostname string
	username string
	domain   string

	// pw1 feeds the LM hash, pw2 the NT hash.
	pw1 *Secret
	pw2 *Secret

	now func() time.Time
}

// NewClient creates a client for the given version string (see
// ParseVersion; empty selects DefaultVersion). The password is read, not
// retained: the caller keeps ownership and may wipe it right after.
func NewClient(version, hostname, username, domain string, password []byte) (*Client, error) {
	if version == "" {
		version = DefaultVersion
	}
	p, err := lookupProfile(version)
	if err != nil {
		return nil, err
	}
	if username == "" || password == nil {
		return nil, newError(Protocol, "username and password cannot be empty")
	}

	c := &Client{
		engine:   newEngine(p),
		hostname: hostname,
		username: username,
		domain:   domain,
		pw1:      NewSecret(passwordP1(password)),
		pw2:      NewSecret(passwordP2(password)),
		now:      time.Now,
	}
	return c, nil
}

// Domain returns the domain sent in the Type 3 message.
func (c *Client) Domain() string {
	return c.domain
}

// Dispose wipes the password derived secrets. The client cannot build a
// Type 3 message afterwards.
func (c *Client) Dispose() {
	c.pw1.Dispose()
	c.pw2.Dispose()
}

// Type1 returns the negotiate message.
func (c *Client) Type1() []byte {
	msg := negotiateMessage(c.version)
	c.debugMessage("client: type 1 created", msg)
	return msg
}

// NegotiateMessage returns the Type 1 message a client of the given
// version sends. It carries no credentials. An empty version selects
// DefaultVersion.
func NegotiateMessage(version string) ([]byte, error) {
	if version == "" {
		version = DefaultVersion
	}
	p, err := lookupProfile(version)
	if err != nil {
		return nil, err
	}
	return negotiateMessage(p.version), nil
}

func negotiateMessage(v Version) []byte {
	w := newWriter(1, 32)
	flags := negotiateFlags
	if v != NTLM {
		flags |= FlagExtendedSessionSecurity
	}
	w.writeInt(12, uint32(flags))
	return w.bytes()
}

// Type3 answers the server's Type 2 message. nonce is the 8 byte client
// nonce; it may be nil for the NTLM version, which does not use it.
func (c *Client) Type3(type2, nonce []byte) ([]byte, error) {
	if type2 == nil || (c.version != NTLM && nonce == nil) {
		return nil, newError(Protocol, "type 2 message and nonce cannot be empty")
	}
	if nonce != nil {
		if err := checkNonce(nonce, "client nonce"); err != nil {
			return nil, err
		}
	}
	if c.pw1.Disposed() || c.pw2.Disposed() {
		return nil, newError(Protocol, "client has been disposed")
	}
	c.debugMessage("client: type 2 received", type2)

	r := newReader(type2)
	challenge, err := r.readBytes(24, 8)
	if err != nil {
		return nil, err
	}
	in, err := r.readInt(20)
	if err != nil {
		return nil, err
	}
	inFlags := Flags(in)
	isUnicode := inFlags.Has(FlagUnicode)

	w := newWriter(3, 64)
	if err := w.writeSecurityString(28, c.domain, isUnicode); err != nil {
		return nil, err
	}
	if err := w.writeSecurityString(36, c.username, isUnicode); err != nil {
		return nil, err
	}
	if err := w.writeSecurityString(44, c.hostname, isUnicode); err != nil {
		return nil, err
	}

	var lm, nt []byte
	switch c.version {
	case NTLM:
		if c.writeLM {
			lmHash := calcLMHash(c.pw1.Bytes())
			lm = calcResponse(lmHash, challenge)
			clear(lmHash)
		}
		if c.writeNTLM {
			ntHash := calcNTHash(c.pw2.Bytes())
			nt = calcResponse(ntHash, challenge)
			clear(ntHash)
		}
	case NTLM2:
		ntHash := calcNTHash(c.pw2.Bytes())
		lm = ntlm2LM(nonce)
		nt = ntlm2NTLM(ntHash, nonce, challenge)
		clear(ntHash)
	case NTLMv2:
		ntHash := calcNTHash(c.pw2.Bytes())
		target := toUpper(c.username) + c.domain
		if c.writeLM {
			lm = calcV2(ntHash, target, nonce, challenge)
		}
		if c.writeNTLM {
			var targetInfo []byte
			if inFlags.Has(FlagTargetInfo) {
				targetInfo, err = r.readSecurityBuffer(40)
				if err != nil {
					clear(ntHash)
					return nil, err
				}
			}
			blob := ntlmv2Blob(fileTime(c.now()), nonce, targetInfo)
			nt = calcV2(ntHash, target, blob, challenge)
		}
		clear(ntHash)
	}

	if err := w.writeSecurityBuffer(12, lm); err != nil {
		return nil, err
	}
	if err := w.writeSecurityBuffer(20, nt); err != nil {
		return nil, err
	}
	if err := w.writeSecurityBuffer(52, []byte{}); err != nil {
		return nil, err
	}
	w.writeInt(60, uint32(authenticateFlags|inFlags&(FlagUnicode|FlagOEM)))

	msg := w.bytes()
	c.debugMessage("client: type 3 created", msg)
	return msg, nil
}
