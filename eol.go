package xmlinput

import "unicode/utf8"

const (
	runeNEL = '\u0085'
	runeLS  = '\u2028'
)

// eolState normalizes line endings as described in section 2.11 of
// XML 1.1, which is a superset of the XML 1.0 rules: CR LF, CR NEL,
// CR, NEL and LS each become a single LF.
//
// pendingCR survives between calls, so a CR LF pair split across two
// chunks still collapses into one LF.
type eolState struct {
	pendingCR bool
}

// normalize appends the normalized form of src, which must hold
// complete UTF-8 sequences, to dst.
func (s *eolState) normalize(dst, src []byte) []byte {
	for len(src) > 0 {
		c := src[0]
		if c < utf8.RuneSelf {
			switch c {
			case '\r':
				dst = append(dst, '\n')
				s.pendingCR = true
			case '\n':
				if !s.pendingCR {
					dst = append(dst, '\n')
				}
				s.pendingCR = false
			default:
				dst = append(dst, c)
				s.pendingCR = false
			}
			src = src[1:]
			continue
		}

		r, size := utf8.DecodeRune(src)
		switch r {
		case runeNEL:
			if !s.pendingCR {
				dst = append(dst, '\n')
			}
		case runeLS:
			dst = append(dst, '\n')
		default:
			dst = append(dst, src[:size]...)
		}
		s.pendingCR = false
		src = src[size:]
	}
	return dst
}
