package ntlm

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func encodeUTF16(s string) []byte {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		// the UTF-16 encoder substitutes invalid input, it does not fail
		return nil
	}
	return b
}

// encodeLatin1 maps runes outside ISO-8859-1 to '?'.
func encodeLatin1(s []byte) []byte {
	b := make([]byte, 0, len(s))
	for len(s) > 0 {
		r, n := utf8.DecodeRune(s)
		s = s[n:]
		c, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			c = '?'
		}
		b = append(b, c)
	}
	return b
}

func decodeLatin1(b []byte) string {
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = charmap.ISO8859_1.DecodeByte(c)
	}
	return string(r)
}

func encodeString(s string, isUnicode bool) []byte {
	if isUnicode {
		return encodeUTF16(s)
	}
	return encodeLatin1([]byte(s))
}

func decodeString(b []byte, isUnicode bool) (string, error) {
	if !isUnicode {
		return decodeLatin1(b), nil
	}
	if len(b)%2 != 0 {
		return "", newError(PacketReadError, "odd length UTF-16 string")
	}
	s, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", newError(PacketReadError, "bad UTF-16 string: %s", err)
	}
	return string(s), nil
}

// toUpper uses full case mapping, so "ß" becomes "SS" as peers expect.
func toUpper(s string) string {
	return cases.Upper(language.English).String(s)
}

// passwordP1 is the uppercased ISO-8859-1 password used for the LM hash.
// It works on byte slices so no unwipeable string copy of the password is
// made.
func passwordP1(password []byte) []byte {
	upper := cases.Upper(language.English).Bytes(password)
	defer clear(upper)
	return encodeLatin1(upper)
}

// passwordP2 is the UTF-16LE password used for the NT hash.
func passwordP2(password []byte) []byte {
	b, err := utf16le.NewEncoder().Bytes(password)
	if err != nil {
		return nil
	}
	return b
}
