package database

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// KeySize is the length of the AES-256 key protecting password files.
const KeySize = 32

var ErrKeySize = errors.New("key must be 32 bytes long for AES-256")

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating AES block cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Encrypt seals data with AES-256-GCM and returns the hex encoded
// nonce || ciphertext, the format DecryptFile reads.
func Encrypt(data, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	return hex.EncodeToString(gcm.Seal(nonce, nonce, data, nil)), nil
}

// EncryptFile writes the encrypted data to path with mode 0600.
func EncryptFile(fs afero.Fs, path string, data, key []byte) error {
	enc, err := Encrypt(data, key)
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, []byte(enc), 0600)
}

// DecryptFile reads a file written by EncryptFile.
func DecryptFile(fs afero.Fs, path string, key []byte) ([]byte, error) {
	encryptedData, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	decoded, err := hex.DecodeString(strings.TrimSpace(string(encryptedData)))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if len(decoded) < gcm.NonceSize() {
		return nil, fmt.Errorf("decoding %s: too short", path)
	}

	data, err := gcm.Open(nil, decoded[:gcm.NonceSize()], decoded[gcm.NonceSize():], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypting %s: %w", path, err)
	}
	return data, nil
}
