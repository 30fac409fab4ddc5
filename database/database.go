package database

import (
	"strings"

	"github.com/bolkedebruin/gontlm/ntlm"
)

// Database resolves the password of an NTLM user.
type Database interface {
	ntlm.PasswordLookup
}

func key(domain, username string) string {
	return strings.ToLower(domain) + "\\" + strings.ToLower(username)
}
