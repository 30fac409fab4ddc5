package main

import (
	"errors"
	"io"
	"os"

	"github.com/bolkedebruin/gontlm/config"
	"github.com/sirupsen/logrus"
	"github.com/thought-machine/go-flags"
)

var opts struct {
	ConfigFile string `short:"c" long:"conf" default:"ntlm.yaml" description:"config file (yaml)"`
	Debug      bool   `long:"debug" description:"log the handshake messages"`
	Hex        bool   `long:"hex" description:"print messages hex encoded instead of base64"`
}

var (
	conf config.Configuration
	out  io.Writer = os.Stdout
	log            = logrus.StandardLogger()
)

func newParser() *flags.Parser {
	parser := flags.NewParser(&opts, flags.Default)
	parser.AddCommand("type1", "Create a negotiate message",
		"Prints the Type 1 message of the configured client version.", &type1Command{})
	parser.AddCommand("type2", "Create a challenge message",
		"Prints the Type 2 message of the configured server domain.", &type2Command{})
	parser.AddCommand("type3", "Answer a challenge message",
		"Prints the Type 3 message answering a Type 2 with the configured client credentials.", &type3Command{})
	parser.AddCommand("verify", "Verify an authenticate message",
		"Checks a Type 3 message against the configured users.", &verifyCommand{})
	parser.AddCommand("inspect", "Decode a message",
		"Decodes a base64 or hex encoded Type 1, 2 or 3 message.", &inspectCommand{})
	parser.AddCommand("hash", "Print password hashes",
		"Prints the LM and NT hashes of a password.", &hashCommand{})
	parser.AddCommand("encrypt", "Encrypt a password file",
		"Writes an AES-256-GCM encrypted password file for the users passwordfile setting.", &encryptCommand{})
	parser.AddCommand("serve", "Serve NTLM protected HTTP",
		"Runs an HTTP server that authenticates clients with NTLM and exposes metrics.", &serveCommand{})

	return parser
}

// setup runs before every command: flags are parsed by then.
func setup() error {
	if opts.Debug {
		log.SetLevel(logrus.DebugLevel)
	}
	var err error
	conf, err = config.Load(opts.ConfigFile)
	return err
}

func main() {
	// flags.Default prints the error, including those of commands
	_, err := newParser().Parse()
	if err != nil {
		var fErr *flags.Error
		if errors.As(err, &fErr) && fErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}
