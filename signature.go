package xmlinput

import (
	"bytes"
	"fmt"

	"github.com/lestrrat-go/xmlinput/encoding"
)

const (
	anyByte = -1 // matches every byte
	nonZero = -2 // matches every byte except 0x00
)

// signature describes what the first four bytes of a document say
// about its encoding. Entries with a non-empty family are encodings
// that can be recognized but not decoded.
type signature struct {
	pattern    [4]int
	codec      *encoding.Codec
	definitive bool
	bom        int
	family     string
}

func (s signature) matches(quad [4]byte) bool {
	for i, p := range s.pattern {
		switch p {
		case anyByte:
		case nonZero:
			if quad[i] == 0x00 {
				return false
			}
		default:
			if int(quad[i]) != p {
				return false
			}
		}
	}
	return true
}

// signatures is evaluated in order; the first match wins.
var signatures = []signature{
	// byte order marks
	{pattern: [4]int{0xEF, 0xBB, 0xBF, anyByte}, codec: encoding.UTF8, definitive: true, bom: 3},
	{pattern: [4]int{0xFF, 0xFE, nonZero, 0x00}, codec: encoding.UTF16LE, definitive: true, bom: 2},
	{pattern: [4]int{0xFE, 0xFF, 0x00, nonZero}, codec: encoding.UTF16BE, definitive: true, bom: 2},

	// "<?xm" in an ASCII superset; only a declaration can say which one
	{pattern: [4]int{0x3C, 0x3F, 0x78, 0x6D}, codec: encoding.UTF8},
	// "<?" in UTF-16
	{pattern: [4]int{0x3C, 0x00, 0x3F, 0x00}, codec: encoding.UTF16LE, definitive: true},
	{pattern: [4]int{0x00, 0x3C, 0x00, 0x3F}, codec: encoding.UTF16BE, definitive: true},

	{pattern: [4]int{0x00, 0x00, 0xFE, 0xFF}, family: "UCS-4BE"},
	{pattern: [4]int{0xFF, 0xFE, 0x00, 0x00}, family: "UCS-4LE"},
	{pattern: [4]int{0x00, 0x00, 0xFF, 0xFE}, family: "UCS-4 (2143 order)"},
	{pattern: [4]int{0xFE, 0xFF, 0x00, 0x00}, family: "UCS-4 (3412 order)"},
	{pattern: [4]int{0x00, 0x00, 0x00, 0x3C}, family: "UCS-4BE"},
	{pattern: [4]int{0x3C, 0x00, 0x00, 0x00}, family: "UCS-4LE"},
	{pattern: [4]int{0x00, 0x00, 0x3C, 0x00}, family: "UCS-4 (2143 order)"},
	{pattern: [4]int{0x00, 0x3C, 0x00, 0x00}, family: "UCS-4 (3412 order)"},
	{pattern: [4]int{0xDD, 0x73, 0x66, 0x73}, family: "UTF-EBCDIC"},
	{pattern: [4]int{0x4C, 0x6F, 0xA7, 0x94}, family: "EBCDIC"},
}

// fallbackSignature applies when nothing matched and no byte is zero:
// some single byte encoding, read as UTF-8 until told otherwise.
var fallbackSignature = signature{
	pattern: [4]int{anyByte, anyByte, anyByte, anyByte},
	codec:   encoding.UTF8,
}

func matchSignature(quad [4]byte) (signature, error) {
	for _, sig := range signatures {
		if !sig.matches(quad) {
			continue
		}
		if sig.family != "" {
			return sig, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, sig.family)
		}
		return sig, nil
	}

	if bytes.IndexByte(quad[:], 0x00) >= 0 {
		return signature{}, fmt.Errorf("%w: unrecognized multi-byte encoding [% x]", ErrUnsupportedEncoding, quad)
	}
	return fallbackSignature, nil
}
