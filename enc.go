package xmlinput

import (
	"fmt"

	"github.com/lestrrat-go/xmlinput/encoding"
	"golang.org/x/text/transform"
)

// Encoding is the result of encoding detection.
//
// A definitive encoding was established by a byte order mark or by the
// byte pattern of a UTF-16 XML declaration, and is not overridden by
// the name in the declaration. Otherwise the encoding is an assumption
// that a declaration or a caller supplied hint may refine.
type Encoding struct {
	codec      *encoding.Codec
	definitive bool
}

// Name returns the canonical lower case name of the encoding, or an
// empty string for the zero value.
func (e Encoding) Name() string {
	if e.codec == nil {
		return ""
	}
	return e.codec.Name()
}

func (e Encoding) Definitive() bool {
	return e.definitive
}

// CharWidth returns the number of bytes used by one character of the
// XML declaration in this encoding.
func (e Encoding) CharWidth() int {
	if e.codec == nil {
		return 1
	}
	return e.codec.Width()
}

func (e Encoding) String() string {
	if e.definitive {
		return e.Name() + " (definitive)"
	}
	return e.Name()
}

func (e Encoding) newDecoder() transform.Transformer {
	return e.codec.NewDecoder()
}

// asciiCompatible lists the encodings that a document whose XML
// declaration reads as ASCII may declare. ASCII is a subset of each.
var asciiCompatible = map[string]struct{}{
	"ascii":        {},
	"utf-8":        {},
	"ibm866":       {},
	"iso-8859-1":   {},
	"iso-8859-2":   {},
	"iso-8859-3":   {},
	"iso-8859-4":   {},
	"iso-8859-5":   {},
	"iso-8859-6":   {},
	"iso-8859-7":   {},
	"iso-8859-8":   {},
	"iso-8859-10":  {},
	"iso-8859-13":  {},
	"iso-8859-14":  {},
	"iso-8859-15":  {},
	"iso-8859-16":  {},
	"koi8-r":       {},
	"koi8-u":       {},
	"mac-roman":    {},
	"mac-cyrillic": {},
	"windows-874":  {},
	"windows-1250": {},
	"windows-1251": {},
	"windows-1252": {},
	"windows-1253": {},
	"windows-1254": {},
	"windows-1255": {},
	"windows-1256": {},
	"windows-1257": {},
	"windows-1258": {},
}

// IsCompatible reports whether a document detected as e may carry an
// XML declaration naming the encoding declared.
//
// Identical encodings are compatible. A definitive encoding is
// compatible with nothing else, except that the byte order agnostic
// "utf-16" label fits either UTF-16 byte order. A non-definitive UTF-8
// or ASCII guess is compatible with the ASCII supersets listed above.
// Any other pairing returns ErrIncompatibilityUnknown.
func (e Encoding) IsCompatible(declared string) (bool, error) {
	other := encoding.Load(declared)
	if other == nil {
		return false, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, declared)
	}

	self := e.Name()
	if self == other.Name() {
		return true, nil
	}

	if e.definitive {
		if other == encoding.UTF16 && (e.codec == encoding.UTF16LE || e.codec == encoding.UTF16BE) {
			return true, nil
		}
		return false, nil
	}

	if e.codec == encoding.UTF8 || e.codec == encoding.ASCII {
		_, ok := asciiCompatible[other.Name()]
		return ok, nil
	}
	return false, fmt.Errorf("%w: detected %s, declared %s", ErrIncompatibilityUnknown, self, other.Name())
}
