package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bolkedebruin/gontlm/ntlm"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const (
	EnvPrefix = "NTLM_"

	DefaultDomain         = "WORKGROUP"
	DefaultSessionTimeout = 60
)

type Configuration struct {
	Server ServerConfig `koanf:"server"`
	Client ClientConfig `koanf:"client"`
	Users  []UserConfig `koanf:"users"`
}

type ServerConfig struct {
	// Domain is announced in challenges and used for users that send none
	Domain string `koanf:"domain"`
	// Version restricts the accepted responses, empty accepts all
	Version  string `koanf:"version"`
	Hostname string `koanf:"hostname"`
	// SessionTimeout in seconds for a handshake between Type 2 and Type 3
	SessionTimeout int `koanf:"sessiontimeout"`
}

type ClientConfig struct {
	Version  string `koanf:"version"`
	Hostname string `koanf:"hostname"`
	Domain   string `koanf:"domain"`
	Username string `koanf:"username"`
}

type UserConfig struct {
	Username string `koanf:"username"`
	// Domain limits the entry to one domain, empty matches any
	Domain       string `koanf:"domain"`
	Password     string `koanf:"password"`
	PasswordFile string `koanf:"passwordfile"`
	PasswordKey  string `koanf:"passwordkey"`
}

func (s *ServerConfig) Timeout() time.Duration {
	return time.Duration(s.SessionTimeout) * time.Second
}

// Load reads configFile if it exists and overlays the NTLM_ environment.
// NTLM_SERVER__DOMAIN sets server.domain.
func Load(configFile string) (Configuration, error) {
	var conf Configuration
	var k = koanf.New(".")

	hostname, _ := os.Hostname()
	k.Load(confmap.Provider(map[string]interface{}{
		"server.domain":         DefaultDomain,
		"server.hostname":       hostname,
		"server.sessiontimeout": DefaultSessionTimeout,
		"client.version":        ntlm.DefaultVersion,
		"client.hostname":       hostname,
	}, "."), nil)

	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			log.Debugf("Config file %s not found, using defaults and environment", configFile)
		} else if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return conf, fmt.Errorf("loading config from file: %w", err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(s string, v string) (string, interface{}) {
		key := strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
		return key, strings.TrimSpace(v)
	}), nil); err != nil {
		return conf, fmt.Errorf("loading config from environment: %w", err)
	}

	koanfTag := koanf.UnmarshalConf{Tag: "koanf"}
	if err := k.UnmarshalWithConf("server", &conf.Server, koanfTag); err != nil {
		return conf, err
	}
	if err := k.UnmarshalWithConf("client", &conf.Client, koanfTag); err != nil {
		return conf, err
	}
	if err := k.UnmarshalWithConf("users", &conf.Users, koanfTag); err != nil {
		return conf, err
	}

	if err := conf.Validate(); err != nil {
		return conf, err
	}
	return conf, nil
}

func (c *Configuration) Validate() error {
	if c.Server.Domain == "" {
		return errors.New("server.domain cannot be empty")
	}
	if c.Server.Version != "" {
		if _, err := ntlm.ParseVersion(c.Server.Version); err != nil {
			return fmt.Errorf("server.version: %w", err)
		}
	}
	if c.Client.Version != "" {
		if _, err := ntlm.ParseVersion(c.Client.Version); err != nil {
			return fmt.Errorf("client.version: %w", err)
		}
	}
	if c.Server.SessionTimeout <= 0 {
		return fmt.Errorf("server.sessiontimeout must be positive, got %d", c.Server.SessionTimeout)
	}

	for i, u := range c.Users {
		if u.Username == "" {
			return fmt.Errorf("users[%d]: username cannot be empty", i)
		}
		if u.PasswordFile != "" && len(u.PasswordKey) != 32 {
			return fmt.Errorf("users[%d]: passwordkey must be 32 bytes long for AES-256, got %d", i, len(u.PasswordKey))
		}
		if u.PasswordFile == "" && u.Password == "" {
			log.Warnf("user %s has an empty password", u.Username)
		}
	}
	return nil
}
