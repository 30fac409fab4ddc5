package identity

import (
	"context"
	"net/http"
	"time"
)

type ctxKey struct{}

// CTXKey is the request context key the identity is stored under.
var CTXKey = ctxKey{}

const AttrRemoteAddr = "remoteAddr"

type Identity interface {
	UserName() string
	SetUserName(string)
	Domain() string
	SetDomain(string)
	Workstation() string
	SetWorkstation(string)
	Authenticated() bool
	SetAuthenticated(bool)
	AuthTime() time.Time
	SetAuthTime(time2 time.Time)
	SessionId() string
	SetAttribute(string, interface{})
	GetAttribute(string) interface{}
	Attributes() map[string]interface{}
	DelAttribute(string)
}

func AddToRequestCtx(id Identity, r *http.Request) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, CTXKey, id)
	return r.WithContext(ctx)
}

func FromRequestCtx(r *http.Request) Identity {
	return FromCtx(r.Context())
}

func FromCtx(ctx context.Context) Identity {
	if id, ok := ctx.Value(CTXKey).(Identity); ok {
		return id
	}
	return nil
}
