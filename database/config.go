package database

import (
	"fmt"

	"github.com/bolkedebruin/gontlm/config"
	"github.com/spf13/afero"
)

// Config is a Database over the users of the configuration file. Names are
// matched case insensitively; a user configured without a domain matches
// every domain.
type Config struct {
	users map[string]string
}

// NewConfig resolves every user password up front, reading encrypted
// password files through fs.
func NewConfig(fs afero.Fs, users []config.UserConfig) (*Config, error) {
	usersMap := map[string]string{}

	for _, user := range users {
		password := user.Password
		if user.PasswordFile != "" {
			p, err := DecryptFile(fs, user.PasswordFile, []byte(user.PasswordKey))
			if err != nil {
				return nil, fmt.Errorf("password of %s: %w", user.Username, err)
			}
			password = string(p)
		}
		usersMap[key(user.Domain, user.Username)] = password
	}

	return &Config{
		users: usersMap,
	}, nil
}

// Password returns a fresh copy of the password, the caller may wipe it.
func (c *Config) Password(domain, username string) ([]byte, bool) {
	p, ok := c.users[key(domain, username)]
	if !ok {
		p, ok = c.users[key("", username)]
	}
	if !ok {
		return nil, false
	}
	return []byte(p), true
}
