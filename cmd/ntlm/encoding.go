package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

func encodeMessage(msg []byte) string {
	if opts.Hex {
		return hex.EncodeToString(msg)
	}
	return base64.StdEncoding.EncodeToString(msg)
}

// decodeMessage accepts base64 or hex, optionally with the scheme of an
// HTTP Authorization header in front.
func decodeMessage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"NTLM ", "Negotiate "} {
		s = strings.TrimPrefix(s, prefix)
	}
	// hex of a message starts with the hex of "NTLMSSP"
	if strings.HasPrefix(strings.ToLower(s), "4e544c4d535350") {
		return hex.DecodeString(s)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("message is neither base64 nor hex: %w", err)
	}
	return b, nil
}

// parseNonce decodes an 8 byte hex nonce; an empty string yields a random
// one.
func parseNonce(s string) ([]byte, error) {
	if s == "" {
		nonce := make([]byte, 8)
		if _, err := rand.Read(nonce); err != nil {
			return nil, err
		}
		return nonce, nil
	}
	nonce, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	if len(nonce) != 8 {
		return nil, fmt.Errorf("nonce must be 8 bytes, got %d", len(nonce))
	}
	return nonce, nil
}
