package encoding

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrInvalidSequence is returned by strict decoders when the input
// contains bytes that do not form a character in the source encoding.
var ErrInvalidSequence = errors.New("invalid byte sequence")

// emit appends the UTF-8 form of r to dst at nDst, reporting
// transform.ErrShortDst when it does not fit.
func emit(dst []byte, nDst int, r rune) (int, error) {
	if nDst+utf8.RuneLen(r) > len(dst) {
		return nDst, transform.ErrShortDst
	}
	return nDst + utf8.EncodeRune(dst[nDst:], r), nil
}

type asciiDecoder struct {
	transform.NopResetter
}

func (asciiDecoder) Transform(dst, src []byte, _ bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c >= utf8.RuneSelf {
			return nDst, nSrc, ErrInvalidSequence
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = c
		nDst++
		nSrc++
	}
	return nDst, nSrc, nil
}

// utf8Decoder validates UTF-8 and copies it through. An incomplete
// sequence at the end of src is held back unless atEOF is set.
type utf8Decoder struct {
	transform.NopResetter
}

func (utf8Decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if c := src[nSrc]; c < utf8.RuneSelf {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}

		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 1 {
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}
			return nDst, nSrc, ErrInvalidSequence
		}
		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], src[nSrc:nSrc+size])
		nSrc += size
	}
	return nDst, nSrc, nil
}

// utf16Decoder decodes UTF-16 code units of a fixed byte order. Unpaired
// surrogates are errors.
type utf16Decoder struct {
	transform.NopResetter
	bigEndian bool
}

func (d utf16Decoder) unit(b []byte) rune {
	if d.bigEndian {
		return rune(b[0])<<8 | rune(b[1])
	}
	return rune(b[1])<<8 | rune(b[0])
}

func (d utf16Decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		rest := src[nSrc:]
		if len(rest) < 2 {
			if atEOF {
				return nDst, nSrc, ErrInvalidSequence
			}
			return nDst, nSrc, transform.ErrShortSrc
		}

		r := d.unit(rest)
		size := 2
		if utf16.IsSurrogate(r) {
			if r >= 0xDC00 {
				return nDst, nSrc, ErrInvalidSequence
			}
			if len(rest) < 4 {
				if atEOF {
					return nDst, nSrc, ErrInvalidSequence
				}
				return nDst, nSrc, transform.ErrShortSrc
			}
			r = utf16.DecodeRune(r, d.unit(rest[2:]))
			if r == utf8.RuneError {
				return nDst, nSrc, ErrInvalidSequence
			}
			size = 4
		}

		if nDst, err = emit(dst, nDst, r); err != nil {
			return nDst, nSrc, err
		}
		nSrc += size
	}
	return nDst, nSrc, nil
}

// charmapDecoder decodes through a single byte table. Bytes the table
// leaves undefined decode to U+FFFD in x/text; here they are errors.
type charmapDecoder struct {
	transform.NopResetter
	charmap *charmap.Charmap
}

func (d charmapDecoder) Transform(dst, src []byte, _ bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r := d.charmap.DecodeByte(src[nSrc])
		if r == utf8.RuneError {
			return nDst, nSrc, ErrInvalidSequence
		}
		if nDst, err = emit(dst, nDst, r); err != nil {
			return nDst, nSrc, err
		}
		nSrc++
	}
	return nDst, nSrc, nil
}
