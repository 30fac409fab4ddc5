package ntlm

import (
	"crypto/des"
	"crypto/hmac"
	"crypto/md5"

	"golang.org/x/crypto/md4"
)

// expandDESKey spreads the 7 bytes at in[off:] over an 8 byte DES key,
// 7 key bits per output byte. The low bit of each byte is left as whatever
// got shifted in; DES ignores it and no parity is computed.
func expandDESKey(in []byte, off int) []byte {
	k := in[off : off+7]
	out := make([]byte, 8)
	out[0] = k[0]
	out[1] = k[0]<<7 | k[1]>>1
	out[2] = k[1]<<6 | k[2]>>2
	out[3] = k[2]<<5 | k[3]>>3
	out[4] = k[3]<<4 | k[4]>>4
	out[5] = k[4]<<3 | k[5]>>5
	out[6] = k[5]<<2 | k[6]>>6
	out[7] = k[6] << 1
	return out
}

// desEncrypt encrypts one 8 byte block with the key expanded from
// key[off:off+7].
func desEncrypt(key []byte, off int, block []byte) []byte {
	k := expandDESKey(key, off)
	defer clear(k)
	c, err := des.NewCipher(k)
	if err != nil {
		// only returned for keys that are not 8 bytes long
		panic(err)
	}
	out := make([]byte, des.BlockSize)
	c.Encrypt(out, block)
	return out
}

func md4Sum(data []byte) []byte {
	h := md4.New()
	h.Write(data)
	return h.Sum(nil)
}

func md5Sum(data []byte) []byte {
	s := md5.Sum(data)
	return s[:]
}

// hmacMD5 keys the MAC with exactly 16 bytes of key, zero padded.
func hmacMD5(key, data []byte) []byte {
	k := make([]byte, 16)
	copy(k, key)
	defer clear(k)
	h := hmac.New(md5.New, k)
	h.Write(data)
	return h.Sum(nil)
}
