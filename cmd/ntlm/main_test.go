package main

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bolkedebruin/gontlm/ntlm"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
server:
  domain: REALM
client:
  hostname: WORKSTATION
  domain: REALM
  username: dummy
users:
  - username: dummy
    password: t0pSeCr3t
`

func setupTest(t *testing.T) *bytes.Buffer {
	t.Helper()
	return setupTestConfig(t, testConfig)
}

func setupTestConfig(t *testing.T, config string) *bytes.Buffer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ntlm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0600))

	opts.ConfigFile = path
	opts.Hex = false
	opts.Debug = false
	fs = afero.NewMemMapFs()

	buf := &bytes.Buffer{}
	out = buf
	t.Cleanup(func() { out = os.Stdout })
	return buf
}

func lastLine(buf *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	return lines[len(lines)-1]
}

func TestHandshakeCommands(t *testing.T) {
	buf := setupTest(t)

	require.NoError(t, (&type1Command{}).Execute(nil))
	type1, err := decodeMessage(lastLine(buf))
	require.NoError(t, err)
	typ, err := ntlm.MessageType(type1)
	require.NoError(t, err)
	assert.Equal(t, 1, typ)

	require.NoError(t, (&type2Command{Nonce: "0011223344556677"}).Execute(nil))
	type2 := lastLine(buf)

	t3 := &type3Command{Type2: type2, Nonce: "aaaaaaaaaaaaaaaa"}
	t3.Password = "t0pSeCr3t"
	require.NoError(t, t3.Execute(nil))
	type3 := lastLine(buf)

	require.NoError(t, (&verifyCommand{Type3: type3, Nonce: "0011223344556677"}).Execute(nil))
	assert.Equal(t, `authenticated REALM\dummy from "WORKSTATION"`, lastLine(buf))

	err = (&verifyCommand{Type3: type3, Nonce: "7766554433221100"}).Execute(nil)
	assert.ErrorIs(t, err, ntlm.ErrAuthFailed)
}

func TestType1WithoutCredentials(t *testing.T) {
	buf := setupTestConfig(t, "server:\n  domain: REALM\nclient:\n  version: NTLM\n")

	require.NoError(t, (&type1Command{}).Execute(nil))
	type1, err := decodeMessage(lastLine(buf))
	require.NoError(t, err)
	m, err := ntlm.Inspect(type1)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Type)
	assert.False(t, m.Flags.Has(ntlm.FlagExtendedSessionSecurity))
}

func TestHexOutput(t *testing.T) {
	buf := setupTest(t)
	opts.Hex = true

	require.NoError(t, (&type2Command{Nonce: "0x0011223344556677"}).Execute(nil))
	assert.True(t, strings.HasPrefix(lastLine(buf), "4e544c4d53535000"))

	i := &inspectCommand{}
	i.Args.Message = lastLine(buf)
	require.NoError(t, i.Execute(nil))
	assert.Contains(t, buf.String(), "challenge:   0011223344556677")
	assert.Contains(t, buf.String(), "target:      REALM")
}

func TestHashCommand(t *testing.T) {
	buf := setupTest(t)

	h := &hashCommand{}
	assert.Error(t, h.Execute(nil))

	h.Password = "Password"
	require.NoError(t, h.Execute(nil))
	assert.Equal(t, "LM: e52cac67419a9a224a3b108f3fa6cb6d\nNT: a4f49c406510bdcab6824ee7c30fd852\n", buf.String())
}

func TestEncryptCommand(t *testing.T) {
	setupTest(t)

	e := &encryptCommand{Key: "0123456789abcdef0123456789abcdef", Output: "/secret.enc"}
	e.Password = "t0pSeCr3t"
	require.NoError(t, e.Execute(nil))

	ok, err := afero.Exists(fs, "/secret.enc")
	require.NoError(t, err)
	assert.True(t, ok)

	e.Key = "short"
	assert.Error(t, e.Execute(nil))
}

func TestDecodeMessage(t *testing.T) {
	msg := []byte("NTLMSSP\x00\x01\x00\x00\x00")
	b64 := base64.StdEncoding.EncodeToString(msg)

	for _, s := range []string{b64, "NTLM " + b64, "Negotiate " + b64, "4E544C4D5353500001000000"} {
		b, err := decodeMessage(s)
		require.NoError(t, err, s)
		assert.Equal(t, msg, b)
	}
	_, err := decodeMessage("%%%")
	assert.Error(t, err)
}

func TestParseNonce(t *testing.T) {
	n, err := parseNonce("")
	require.NoError(t, err)
	assert.Len(t, n, 8)

	_, err = parseNonce("0011")
	assert.Error(t, err)
	_, err = parseNonce("zz")
	assert.Error(t, err)
}

func TestServeMux(t *testing.T) {
	setupTest(t)
	require.NoError(t, setup())
	mux, err := newServeMux()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ntlm_handshake_challenges_total")
}

func TestParser(t *testing.T) {
	p := newParser()
	assert.NotNil(t, p.Find("verify"))
	assert.NotNil(t, p.Find("serve"))
}
