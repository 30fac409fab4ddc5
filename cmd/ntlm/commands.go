package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/bolkedebruin/gontlm/database"
	"github.com/bolkedebruin/gontlm/handshake"
	"github.com/bolkedebruin/gontlm/identity"
	"github.com/bolkedebruin/gontlm/ntlm"
	"github.com/bolkedebruin/gontlm/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
)

var fs = afero.NewOsFs()

type passwordOption struct {
	Password string `long:"password" env:"NTLM_PASSWORD" description:"the password, read from NTLM_PASSWORD when not given"`
}

func newClient(password string) (*ntlm.Client, error) {
	c, err := ntlm.NewClient(conf.Client.Version, conf.Client.Hostname, conf.Client.Username, conf.Client.Domain, []byte(password))
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		c.SetLogger(log)
	}
	return c, nil
}

func newDatabase() (database.Database, error) {
	return database.NewConfig(fs, conf.Users)
}

func newServer() (*ntlm.Server, error) {
	db, err := newDatabase()
	if err != nil {
		return nil, err
	}
	s, err := ntlm.NewServer(conf.Server.Version, conf.Server.Domain, db)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		s.SetLogger(log)
	}
	return s, nil
}

type type1Command struct{}

func (c *type1Command) Execute(args []string) error {
	if err := setup(); err != nil {
		return err
	}
	msg, err := ntlm.NegotiateMessage(conf.Client.Version)
	if err != nil {
		return err
	}
	if opts.Debug {
		log.Debugf("client: type 1 created\n%s", hex.Dump(msg))
	}
	fmt.Fprintln(out, encodeMessage(msg))
	return nil
}

type type2Command struct {
	Nonce string `long:"nonce" description:"server nonce (hex), random when not given"`
}

func (c *type2Command) Execute(args []string) error {
	if err := setup(); err != nil {
		return err
	}
	nonce, err := parseNonce(c.Nonce)
	if err != nil {
		return err
	}
	s, err := newServer()
	if err != nil {
		return err
	}

	msg, err := s.Type2(nil, nonce)
	if err != nil {
		return err
	}
	log.Infof("Challenge nonce %x", nonce)
	fmt.Fprintln(out, encodeMessage(msg))
	return nil
}

type type3Command struct {
	passwordOption
	Type2 string `long:"type2" required:"yes" description:"the challenge message (base64 or hex)"`
	Nonce string `long:"nonce" description:"client nonce (hex), random when not given"`
}

func (c *type3Command) Execute(args []string) error {
	if err := setup(); err != nil {
		return err
	}
	type2, err := decodeMessage(c.Type2)
	if err != nil {
		return err
	}
	nonce, err := parseNonce(c.Nonce)
	if err != nil {
		return err
	}
	client, err := newClient(c.Password)
	if err != nil {
		return err
	}
	defer client.Dispose()

	msg, err := client.Type3(type2, nonce)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, encodeMessage(msg))
	return nil
}

type verifyCommand struct {
	Type3 string `long:"type3" required:"yes" description:"the authenticate message (base64 or hex)"`
	Nonce string `long:"nonce" required:"yes" description:"the server nonce of the challenge (hex)"`
}

func (c *verifyCommand) Execute(args []string) error {
	if err := setup(); err != nil {
		return err
	}
	type3, err := decodeMessage(c.Type3)
	if err != nil {
		return err
	}
	nonce, err := parseNonce(c.Nonce)
	if err != nil {
		return err
	}
	s, err := newServer()
	if err != nil {
		return err
	}

	p, err := s.Verify(type3, nonce)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "authenticated %s\\%s from %q\n", p.Domain, p.UserName, p.Hostname)
	return nil
}

type inspectCommand struct {
	Args struct {
		Message string `positional-arg-name:"MSG" description:"base64 or hex encoded message"`
	} `positional-args:"yes" required:"yes"`
}

func (c *inspectCommand) Execute(args []string) error {
	msg, err := decodeMessage(c.Args.Message)
	if err != nil {
		return err
	}
	m, err := ntlm.Inspect(msg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "type:        %d\n", m.Type)
	fmt.Fprintf(out, "flags:       0x%08x %s\n", uint32(m.Flags), m.Flags)
	switch m.Type {
	case 1:
		fmt.Fprintf(out, "domain:      %s\n", m.Domain)
		fmt.Fprintf(out, "workstation: %s\n", m.Hostname)
	case 2:
		fmt.Fprintf(out, "target:      %s\n", m.TargetName)
		fmt.Fprintf(out, "challenge:   %x\n", m.Challenge)
		for _, p := range m.TargetInfo {
			fmt.Fprintf(out, "av pair %d:   %s\n", p.ID, p)
		}
	case 3:
		fmt.Fprintf(out, "domain:      %s\n", m.Domain)
		fmt.Fprintf(out, "user:        %s\n", m.UserName)
		fmt.Fprintf(out, "workstation: %s\n", m.Hostname)
		fmt.Fprintf(out, "lm:          %x\n", m.LMResponse)
		fmt.Fprintf(out, "ntlm:        %x\n", m.NTLMResponse)
	}
	return nil
}

type hashCommand struct {
	passwordOption
}

func (c *hashCommand) Execute(args []string) error {
	if c.Password == "" {
		return errors.New("no password given")
	}
	fmt.Fprintf(out, "LM: %s\n", hex.EncodeToString(ntlm.LMHash([]byte(c.Password))))
	fmt.Fprintf(out, "NT: %s\n", hex.EncodeToString(ntlm.NTHash([]byte(c.Password))))
	return nil
}

type encryptCommand struct {
	passwordOption
	Key    string `long:"key" env:"NTLM_PASSWORD_KEY" description:"the 32 byte encryption key"`
	Output string `short:"o" long:"out" default:"secret.enc" description:"the file to write"`
}

func (c *encryptCommand) Execute(args []string) error {
	if c.Password == "" {
		return errors.New("no password given")
	}
	if err := database.EncryptFile(fs, c.Output, []byte(c.Password), []byte(c.Key)); err != nil {
		return err
	}
	fmt.Fprintf(out, "Encrypted password written to %s\n", c.Output)
	return nil
}

type serveCommand struct {
	Listen string `short:"l" long:"listen" default:":8080" description:"the address to listen on"`
}

func (c *serveCommand) Execute(args []string) error {
	if err := setup(); err != nil {
		return err
	}
	mux, err := newServeMux()
	if err != nil {
		return err
	}
	log.Infof("Listening on %s for domain %s", c.Listen, conf.Server.Domain)
	return http.ListenAndServe(c.Listen, mux)
}

func newServeMux() (*http.ServeMux, error) {
	db, err := newDatabase()
	if err != nil {
		return nil, err
	}
	a, err := handshake.NewAuthenticator(conf.Server.Version, conf.Server.Domain, db, conf.Server.Timeout())
	if err != nil {
		return nil, err
	}
	a.Log = log
	a.Debug = opts.Debug

	h := &web.NTLMAuthHandler{Authenticator: a, Log: log}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", h.NTLMAuth(whoami))
	return mux, nil
}

func whoami(w http.ResponseWriter, r *http.Request) {
	id := identity.FromRequestCtx(r)
	fmt.Fprintf(w, "%s\\%s %s\n", id.Domain(), id.UserName(), id.SessionId())
}
