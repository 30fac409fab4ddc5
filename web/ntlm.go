package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bolkedebruin/gontlm/handshake"
	"github.com/bolkedebruin/gontlm/identity"
	"github.com/sirupsen/logrus"
)

type ntlmAuthMode uint32

const (
	authNone ntlmAuthMode = iota
	authNTLM
	authNegotiate
)

const (
	prefixNTLM      = "NTLM "
	prefixNegotiate = "Negotiate "
)

var errNoAuthHeader = errors.New("invalid NTLM Authorization header")

// NTLMAuthHandler protects handlers with NTLM over HTTP. The handshake of a
// client is tied to its connection through the remote address.
type NTLMAuthHandler struct {
	Authenticator *handshake.Authenticator
	Log           logrus.FieldLogger
}

func (h *NTLMAuthHandler) NTLMAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authPayload, authMode, err := h.getAuthPayload(r)
		if err != nil {
			h.logger().Debugf("Failed parsing auth header: %s", err)
			h.requestAuthenticate(w)
			return
		}

		res, ok := h.authenticate(w, r, authPayload, authMode)
		if !ok {
			return
		}

		h.logger().WithField("remote", r.RemoteAddr).Infof("NTLM: User %s\\%s authenticated", res.Domain, res.Username)
		id := identity.NewUser()
		id.SetUserName(res.Username)
		id.SetDomain(res.Domain)
		id.SetWorkstation(res.Workstation)
		id.SetAuthenticated(true)
		id.SetAuthTime(time.Now())
		id.SetAttribute(identity.AttrRemoteAddr, r.RemoteAddr)
		next.ServeHTTP(w, identity.AddToRequestCtx(id, r))
	}
}

func (h *NTLMAuthHandler) logger() logrus.FieldLogger {
	if h.Log == nil {
		return logrus.StandardLogger()
	}
	return h.Log
}

func (h *NTLMAuthHandler) getAuthPayload(r *http.Request) (payload string, authMode ntlmAuthMode, err error) {
	authorisationEncoded := r.Header.Get("Authorization")
	if strings.HasPrefix(authorisationEncoded, prefixNTLM) {
		return authorisationEncoded[len(prefixNTLM):], authNTLM, nil
	}
	if strings.HasPrefix(authorisationEncoded, prefixNegotiate) {
		return authorisationEncoded[len(prefixNegotiate):], authNegotiate, nil
	}
	return "", authNone, errNoAuthHeader
}

func (h *NTLMAuthHandler) requestAuthenticate(w http.ResponseWriter) {
	w.Header().Add("WWW-Authenticate", `NTLM`)
	w.Header().Add("WWW-Authenticate", `Negotiate`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

func (h *NTLMAuthHandler) getAuthPrefix(authMode ntlmAuthMode) (prefix string) {
	if authMode == authNTLM {
		return prefixNTLM
	}
	if authMode == authNegotiate {
		return prefixNegotiate
	}
	return ""
}

// authenticate answers the request itself unless the client is
// authenticated.
func (h *NTLMAuthHandler) authenticate(w http.ResponseWriter, r *http.Request, authorisationEncoded string, authMode ntlmAuthMode) (*handshake.Response, bool) {
	if h.Authenticator == nil {
		h.logger().Error("No NTLM authenticator configured")
		http.Error(w, "Server error", http.StatusInternalServerError)
		return nil, false
	}

	req := &handshake.Request{Session: r.RemoteAddr, Message: authorisationEncoded}
	res, err := h.Authenticator.Authenticate(req)
	if err != nil {
		h.logger().WithField("remote", r.RemoteAddr).Warnf("NTLM handshake failed: %s", err)
		h.requestAuthenticate(w)
		return nil, false
	}

	if res.Message != "" {
		h.logger().Debugf("Sending NTLM challenge to %s", r.RemoteAddr)
		w.Header().Add("WWW-Authenticate", h.getAuthPrefix(authMode)+res.Message)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	if !res.Authenticated {
		h.requestAuthenticate(w)
		return nil, false
	}

	return res, true
}
