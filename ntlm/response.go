package ntlm

import (
	"encoding/binary"
	"time"
)

var lmMagic = []byte("KGS!@#$%")

// calcLMHash returns the 21 byte LM hash of the uppercased ISO-8859-1
// password. Passwords are cut at 14 bytes; peers do the same.
func calcLMHash(p1 []byte) []byte {
	pw := make([]byte, 14)
	copy(pw, p1)
	defer clear(pw)

	out := make([]byte, 21)
	copy(out[0:8], desEncrypt(pw, 0, lmMagic))
	copy(out[8:16], desEncrypt(pw, 7, lmMagic))
	return out
}

// calcNTHash returns MD4 of the UTF-16LE password padded to 21 bytes.
func calcNTHash(p2 []byte) []byte {
	out := make([]byte, 21)
	sum := md4Sum(p2)
	copy(out, sum)
	clear(sum)
	return out
}

// calcResponse DES encrypts the 8 byte challenge with each 7 byte third of
// the 21 byte hash.
func calcResponse(hash, challenge []byte) []byte {
	out := make([]byte, 24)
	for i := 0; i < 3; i++ {
		copy(out[i*8:], desEncrypt(hash, i*7, challenge))
	}
	return out
}

// ntlm2LM is the LM field of an NTLM2 session response: the client nonce
// padded with zeros.
func ntlm2LM(clientNonce []byte) []byte {
	out := make([]byte, 24)
	copy(out, clientNonce)
	return out
}

func ntlm2NTLM(ntHash, clientNonce, challenge []byte) []byte {
	b := make([]byte, 16)
	copy(b, challenge[:8])
	copy(b[8:], clientNonce[:8])
	sessionHash := md5Sum(b)[:8]
	return calcResponse(ntHash, sessionHash)
}

// calcV2 returns HMAC-MD5(v2key, challenge || blob) || blob where v2key is
// HMAC-MD5 of the NT hash over the UTF-16LE target (uppercased user name
// followed by the domain).
func calcV2(ntHash []byte, target string, blob, challenge []byte) []byte {
	key := hmacMD5(ntHash[:16], encodeUTF16(target))
	defer clear(key)

	cn := make([]byte, 0, 8+len(blob))
	cn = append(cn, challenge[:8]...)
	cn = append(cn, blob...)

	out := make([]byte, 0, 16+len(blob))
	out = append(out, hmacMD5(key, cn)...)
	return append(out, blob...)
}

// ntlmv2Blob lays out the client blob covered by the NTLMv2 response.
func ntlmv2Blob(timestamp uint64, clientNonce, targetInfo []byte) []byte {
	blob := make([]byte, 32+len(targetInfo))
	blob[0] = 0x01
	blob[1] = 0x01
	binary.LittleEndian.PutUint64(blob[8:], timestamp)
	copy(blob[16:24], clientNonce)
	copy(blob[28:], targetInfo)
	return blob
}

// windowsEpochOffset is the number of 100ns ticks between 1601-01-01 and
// 1970-01-01.
const windowsEpochOffset = 116444736000000000

func fileTime(t time.Time) uint64 {
	return uint64(t.UnixNano()/100) + windowsEpochOffset
}
