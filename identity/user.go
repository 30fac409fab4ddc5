package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is the Identity of an NTLM authenticated caller.
type User struct {
	authenticated bool
	domain        string
	userName      string
	workstation   string
	authTime      time.Time
	sessionId     string
	attributes    map[string]interface{}
}

func NewUser() *User {
	return &User{
		attributes: make(map[string]interface{}),
		sessionId:  uuid.New().String(),
	}
}

func (u *User) UserName() string {
	return u.userName
}

func (u *User) SetUserName(s string) {
	u.userName = s
}

// String renders DOMAIN\user, or the bare user name without a domain.
func (u *User) String() string {
	if u.domain == "" {
		return u.userName
	}
	return u.domain + "\\" + u.userName
}

func (u *User) Domain() string {
	return u.domain
}

func (u *User) SetDomain(s string) {
	u.domain = s
}

func (u *User) Workstation() string {
	return u.workstation
}

func (u *User) SetWorkstation(s string) {
	u.workstation = s
}

func (u *User) Authenticated() bool {
	return u.authenticated
}

func (u *User) SetAuthenticated(b bool) {
	u.authenticated = b
}

func (u *User) AuthTime() time.Time {
	return u.authTime
}

func (u *User) SetAuthTime(t time.Time) {
	u.authTime = t
}

func (u *User) SessionId() string {
	return u.sessionId
}

func (u *User) SetAttribute(s string, i interface{}) {
	u.attributes[s] = i
}

func (u *User) GetAttribute(s string) interface{} {
	if found, ok := u.attributes[s]; ok {
		return found
	}
	return nil
}

func (u *User) Attributes() map[string]interface{} {
	return u.attributes
}

func (u *User) DelAttribute(s string) {
	delete(u.attributes, s)
}
