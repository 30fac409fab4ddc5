package ntlm

import (
	"crypto/subtle"
)

// PasswordLookup resolves the password of a user. The returned slice must
// be owned by the caller of Password: the server zeroes it once the
// responses have been computed.
type PasswordLookup interface {
	Password(domain, username string) ([]byte, bool)
}

// PasswordLookupFunc adapts a plain function to PasswordLookup.
type PasswordLookupFunc func(domain, username string) ([]byte, bool)

func (f PasswordLookupFunc) Password(domain, username string) ([]byte, bool) {
	return f(domain, username)
}

// Principal is the identity proven by a verified Type 3 message.
type Principal struct {
	UserName string
	Hostname string
	Domain   string
}

// Server issues Type 2 challenges and verifies the Type 3 answers.
type Server struct {
	engine

	// acceptAll runs every verification branch in turn.
	acceptAll bool
	domain    string
	lookup    PasswordLookup
}

// NewServer creates a server for the given version string. An empty
// version accepts any of NTLM, NTLM2 and NTLMv2 responses. domain is sent
// as the target name of the challenge and must not be empty.
func NewServer(version, domain string, lookup PasswordLookup) (*Server, error) {
	s := &Server{
		domain: domain,
		lookup: lookup,
	}
	if version == "" {
		s.engine = newEngine(profile{version: NTLM, writeLM: true, writeNTLM: true})
		s.acceptAll = true
	} else {
		p, err := lookupProfile(version)
		if err != nil {
			return nil, err
		}
		s.engine = newEngine(p)
	}
	if domain == "" {
		return nil, newError(NoDomainInfo, "server domain cannot be empty")
	}
	if lookup == nil {
		return nil, newError(Protocol, "password lookup cannot be nil")
	}
	return s, nil
}

// Domain returns the domain announced in challenges.
func (s *Server) Domain() string {
	return s.domain
}

// Version returns the version the server verifies. A server created
// without a version reports NTLM here although it accepts every version;
// use AcceptsAll to tell the two apart.
func (s *Server) Version() Version {
	return s.engine.Version()
}

// AcceptsAll reports whether the server was created without a version.
func (s *Server) AcceptsAll() bool {
	return s.acceptAll
}

// Type2 builds the challenge for nonce. The Type 1 message is only logged;
// it does not need to be well formed and may be nil.
func (s *Server) Type2(type1, nonce []byte) ([]byte, error) {
	if nonce == nil {
		return nil, newError(Protocol, "nonce cannot be empty")
	}
	if err := checkNonce(nonce, "server nonce"); err != nil {
		return nil, err
	}
	if type1 != nil {
		s.debugMessage("server: type 1 received", type1)
	}

	w := newWriter(2, 32)
	if err := w.writeSecurityString(12, s.domain, true); err != nil {
		return nil, err
	}
	w.writeInt(20, uint32(challengeFlags))
	w.writeBytes(24, nonce)

	msg := w.bytes()
	s.debugMessage("server: type 2 created", msg)
	return msg, nil
}

// Verify checks the responses in type3 against the challenge nonce and
// returns who authenticated.
func (s *Server) Verify(type3, nonce []byte) (*Principal, error) {
	if type3 == nil || nonce == nil {
		return nil, newError(Protocol, "type 3 message and nonce cannot be empty")
	}
	if err := checkNonce(nonce, "server nonce"); err != nil {
		return nil, err
	}
	s.debugMessage("server: type 3 received", type3)

	r := newReader(type3)
	flags, err := r.readInt(60)
	if err != nil {
		return nil, err
	}
	// peers that only set the OEM bit get their strings read as Latin-1
	isUnicode := Flags(flags).Has(FlagUnicode) || !Flags(flags).Has(FlagOEM)

	username, err := r.readSecurityString(36, isUnicode)
	if err != nil {
		return nil, err
	}
	hostname, err := r.readSecurityString(44, isUnicode)
	if err != nil {
		return nil, err
	}
	incomingDomain, err := r.readSecurityString(28, isUnicode)
	if err != nil {
		return nil, err
	}
	incomingLM, err := r.readSecurityBuffer(12)
	if err != nil {
		return nil, err
	}
	incomingNTLM, err := r.readSecurityBuffer(20)
	if err != nil {
		return nil, err
	}

	domain := incomingDomain
	if domain == "" {
		domain = s.domain
	}

	password, ok := s.lookup.Password(domain, username)
	if !ok || password == nil {
		return nil, newError(UserUnknown, "%s\\%s", domain, username)
	}
	pw := NewSecret(password)
	defer pw.Dispose()

	versions := []Version{s.version}
	if s.acceptAll {
		versions = []Version{NTLM, NTLM2, NTLMv2}
	}
	for _, v := range versions {
		if s.check(v, pw.Bytes(), username, incomingDomain, incomingLM, incomingNTLM, nonce) {
			s.debugf("server: %s\\%s verified with %s", domain, username, v)
			return &Principal{
				UserName: username,
				Hostname: hostname,
				Domain:   domain,
			}, nil
		}
	}
	return nil, newError(AuthFailed, "%s\\%s", domain, username)
}

// check recomputes the responses of version v and compares them in
// constant time. In the NTLM branch either response is enough.
func (s *Server) check(v Version, password []byte, username, domain string, lm, nt, nonce []byte) bool {
	p2 := passwordP2(password)
	ntHash := calcNTHash(p2)
	clear(p2)
	defer clear(ntHash)

	switch v {
	case NTLM:
		if len(lm) > 0 {
			p1 := passwordP1(password)
			lmHash := calcLMHash(p1)
			clear(p1)
			expected := calcResponse(lmHash, nonce)
			clear(lmHash)
			if equal(expected, lm) {
				return true
			}
		}
		if len(nt) > 0 && equal(calcResponse(ntHash, nonce), nt) {
			return true
		}
	case NTLM2:
		if len(nt) == 0 {
			return false
		}
		clientNonce := make([]byte, 8)
		copy(clientNonce, lm)
		return equal(ntlm2NTLM(ntHash, clientNonce, nonce), nt)
	case NTLMv2:
		target := toUpper(username) + domain
		if len(lm) > 16 && equal(calcV2(ntHash, target, lm[16:], nonce), lm) {
			return true
		}
		if len(nt) > 16 && equal(calcV2(ntHash, target, nt[16:], nonce), nt) {
			return true
		}
	}
	return false
}

func equal(expected, actual []byte) bool {
	return subtle.ConstantTimeCompare(expected, actual) == 1
}
