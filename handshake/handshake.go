package handshake

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bolkedebruin/gontlm/ntlm"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout  = time.Minute
	cleanupInterval = time.Minute * 5
)

var (
	ErrEmptySession = errors.New("invalid (empty) session specified")
	ErrEmptyMessage = errors.New("empty NTLM message specified")
	ErrNoChallenge  = errors.New("NTLM authenticate requires an active session: first send a negotiate message")
)

// Request carries one base64 encoded NTLM message of a client session.
type Request struct {
	Session string
	Message string
}

// Response holds either the base64 encoded challenge to send back or the
// outcome of an authenticate message.
type Response struct {
	Message       string
	Authenticated bool
	Username      string
	Domain        string
	Workstation   string
}

// Authenticator runs the server side of NTLM handshakes for many sessions.
// A session is whatever the transport uses to tie the negotiate and
// authenticate messages of one client together.
type Authenticator struct {
	contextCache *cache.Cache

	version  string
	domain   string
	database ntlm.PasswordLookup

	// Rand supplies the server nonces.
	Rand io.Reader
	// Debug passes the hex dumps of the engine to Log.
	Debug bool
	Log   logrus.FieldLogger
}

// NewAuthenticator fails when a server cannot be created for version and
// domain. Challenges that are not answered within timeout are forgotten.
func NewAuthenticator(version, domain string, database ntlm.PasswordLookup, timeout time.Duration) (*Authenticator, error) {
	if _, err := ntlm.NewServer(version, domain, database); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Authenticator{
		contextCache: cache.New(timeout, cleanupInterval),
		version:      version,
		domain:       domain,
		database:     database,
		Rand:         rand.Reader,
		Log:          logrus.StandardLogger(),
	}, nil
}

func (h *Authenticator) Authenticate(message *Request) (*Response, error) {
	r := &Response{}

	if message.Session == "" {
		return r, ErrEmptySession
	}
	if message.Message == "" {
		return r, ErrEmptyMessage
	}

	msg, err := base64.StdEncoding.DecodeString(message.Message)
	if err != nil {
		return r, fmt.Errorf("failed to decode NTLM message: %w", err)
	}
	msgType, err := ntlm.MessageType(msg)
	if err != nil {
		return r, fmt.Errorf("failed to parse NTLM message: %w", err)
	}

	switch msgType {
	case 1:
		err = h.negotiate(message.Session, msg, r)
	case 3:
		err = h.authenticate(message.Session, msg, r)
	default:
		err = fmt.Errorf("unexpected NTLM message type %d from client", msgType)
	}
	pendingHandshakes.Set(float64(h.contextCache.ItemCount()))
	return r, err
}

type ntlmContext struct {
	mu     sync.Mutex
	server *ntlm.Server
	nonce  []byte
}

func (h *Authenticator) newContext(session string) (*ntlmContext, error) {
	server, err := ntlm.NewServer(h.version, h.domain, h.database)
	if err != nil {
		return nil, err
	}
	if h.Debug {
		server.SetLogger(h.Log.WithField("session", session))
	}
	return &ntlmContext{server: server}, nil
}

func (h *Authenticator) getContext(session string) *ntlmContext {
	if c_, found := h.contextCache.Get(session); found {
		if c, ok := c_.(*ntlmContext); ok {
			return c
		}
	}
	return nil
}

func (h *Authenticator) removeContext(session string) {
	h.contextCache.Delete(session)
}

// negotiate starts over: a Type 1 always replaces a pending challenge. The
// context is only published once its nonce is set, so a concurrent Type 3
// either sees the complete challenge or none at all.
func (h *Authenticator) negotiate(session string, type1 []byte, r *Response) error {
	c, err := h.newContext(session)
	if err != nil {
		h.removeContext(session)
		return err
	}

	nonce := make([]byte, 8)
	if _, err := io.ReadFull(h.Rand, nonce); err != nil {
		h.removeContext(session)
		return fmt.Errorf("failed to generate NTLM nonce: %w", err)
	}

	type2, err := c.server.Type2(type1, nonce)
	if err != nil {
		h.removeContext(session)
		return fmt.Errorf("failed to generate NTLM challenge message: %w", err)
	}
	c.nonce = nonce
	h.contextCache.Set(session, c, cache.DefaultExpiration)
	challengesIssued.Inc()

	r.Message = base64.StdEncoding.EncodeToString(type2)
	return nil
}

// authenticate verifies a Type 3 against the pending challenge. Wrong
// credentials are not an error: the response just stays unauthenticated.
func (h *Authenticator) authenticate(session string, type3 []byte, r *Response) error {
	c := h.getContext(session)
	if c == nil {
		return ErrNoChallenge
	}
	h.removeContext(session)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nonce == nil {
		return ErrNoChallenge
	}
	nonce := c.nonce
	c.nonce = nil

	p, err := c.server.Verify(type3, nonce)
	switch ntlm.KindOf(err) {
	case 0:
	case ntlm.UserUnknown:
		h.Log.WithField("session", session).Infof("NTLM: unknown username specified: %s", err)
		handshakeResults.WithLabelValues(resultUnknownUser).Inc()
		return nil
	case ntlm.AuthFailed:
		h.Log.WithField("session", session).Infof("NTLM: %s", err)
		handshakeResults.WithLabelValues(resultFailed).Inc()
		return nil
	default:
		handshakeResults.WithLabelValues(resultError).Inc()
		return fmt.Errorf("failed to process NTLM authenticate message: %w", err)
	}

	handshakeResults.WithLabelValues(resultSuccess).Inc()
	r.Authenticated = true
	r.Username = p.UserName
	r.Domain = p.Domain
	r.Workstation = p.Hostname
	return nil
}
