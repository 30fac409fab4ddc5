package ntlm

import (
	"errors"
	"fmt"
)

// Kind classifies an NTLM failure. The taxonomy is flat: every failure has
// exactly one kind and all of them end the current call.
type Kind int

const (
	// PacketReadError means the input message is truncated or malformed.
	PacketReadError Kind = iota + 1
	// NoDomainInfo means no domain was available where one is required.
	NoDomainInfo
	// UserUnknown means the password lookup has no entry for the user.
	UserUnknown
	// AuthFailed means none of the applicable responses verified.
	AuthFailed
	// BadVersion means the version string is not recognised.
	BadVersion
	// Protocol means an argument or call order contract was violated.
	Protocol
)

func (k Kind) String() string {
	switch k {
	case PacketReadError:
		return "packet read error"
	case NoDomainInfo:
		return "no domain info"
	case UserUnknown:
		return "user unknown"
	case AuthFailed:
		return "authentication failed"
	case BadVersion:
		return "bad version"
	case Protocol:
		return "protocol error"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error type returned by everything in this package.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return "ntlm: " + e.Kind.String()
	}
	return "ntlm: " + e.Kind.String() + ": " + e.Msg
}

// Is reports whether target is an *Error of the same kind, so that the
// sentinels below can be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrPacketRead   = &Error{Kind: PacketReadError}
	ErrNoDomainInfo = &Error{Kind: NoDomainInfo}
	ErrUserUnknown  = &Error{Kind: UserUnknown}
	ErrAuthFailed   = &Error{Kind: AuthFailed}
	ErrBadVersion   = &Error{Kind: BadVersion}
	ErrProtocol     = &Error{Kind: Protocol}
)

func newError(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or 0 if err does not come from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
