package xmlinput

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lestrrat-go/xmlinput/internal/pool"
	"golang.org/x/text/transform"
)

const (
	declPrefix = "<?xml "
	declEnd    = "?>"

	// maxDeclChars caps the declaration scan. There is no declaration
	// grammar behind the scan, so a document that opens with "<?xml "
	// and never closes it must not be read to the end.
	maxDeclChars = 256
)

func isBlankCh(c rune) bool {
	return c == 0x20 || (0x9 <= c && c <= 0xa) || c == 0xd
}

// declScanner accumulates the decoded text of an XML declaration as its
// raw bytes arrive. Characters split across pushes are reassembled.
type declScanner struct {
	enc     Encoding
	dec     transform.Transformer
	pending []byte // raw bytes of an incomplete character
	text    []byte // decoded UTF-8
	offset  int64  // raw bytes decoded so far
}

func newDeclScanner(enc Encoding) *declScanner {
	return &declScanner{
		enc: enc,
		dec: enc.newDecoder(),
	}
}

func (s *declScanner) push(b []byte) error {
	s.pending = append(s.pending, b...)

	buf := pool.ByteSlice().Get()
	defer pool.ByteSlice().Put(buf)
	buf = buf[:cap(buf)]

	for {
		nDst, nSrc, err := s.dec.Transform(buf, s.pending, false)
		s.text = append(s.text, buf[:nDst]...)
		s.pending = s.pending[nSrc:]
		s.offset += int64(nSrc)

		switch {
		case err == nil, errors.Is(err, transform.ErrShortSrc):
			return nil
		case errors.Is(err, transform.ErrShortDst):
			continue
		default:
			return &DecodeError{
				Encoding: s.enc.Name(),
				Offset:   s.offset,
				Bytes:    bytes.Clone(s.pending[:min(len(s.pending), utf8.UTFMax)]),
				Err:      err,
			}
		}
	}
}

// len returns the number of characters decoded so far.
func (s *declScanner) len() int {
	return utf8.RuneCount(s.text)
}

// isDecl reports whether the text starts with "<?xml" followed by
// whitespace.
func (s *declScanner) isDecl() bool {
	prefix := declPrefix[:len(declPrefix)-1]
	if !bytes.HasPrefix(s.text, []byte(prefix)) {
		return false
	}
	r, _ := utf8.DecodeRune(s.text[len(prefix):])
	return isBlankCh(r)
}

func (s *declScanner) closed() bool {
	return bytes.HasSuffix(s.text, []byte(declEnd))
}

func (s *declScanner) String() string {
	return string(s.text)
}

// declaredEncoding extracts the value of the encoding pseudo-attribute.
// The declaration is split on whitespace and then on '=', which is
// enough to find the name without parsing the declaration grammar.
func declaredEncoding(decl string) (string, bool, error) {
	var tokens []string
	for _, field := range strings.FieldsFunc(decl, isBlankCh) {
		for _, tok := range strings.Split(field, "=") {
			if tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}

	for i, tok := range tokens {
		if tok != "encoding" {
			continue
		}
		if i+1 >= len(tokens) {
			return "", true, fmt.Errorf("%w: encoding has no value", ErrMalformedDeclaration)
		}
		name, err := quotedValue(tokens[i+1])
		return name, true, err
	}
	return "", false, nil
}

func quotedValue(tok string) (string, error) {
	quote := tok[0]
	if quote != '"' && quote != '\'' {
		return "", fmt.Errorf("%w: unquoted encoding value %s", ErrMalformedDeclaration, tok)
	}
	end := strings.IndexByte(tok[1:], quote)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated encoding value %s", ErrMalformedDeclaration, tok)
	}
	return tok[1 : 1+end], nil
}
