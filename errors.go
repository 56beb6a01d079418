package xmlinput

import (
	"errors"
	"fmt"
)

var (
	ErrAmbiguousEncoding      = errors.New("unable to detect input encoding: no byte order mark, no XML declaration and no suggested encoding")
	ErrDecode                 = errors.New("input decoding error")
	ErrEncodingMismatch       = errors.New("detected encoding is incompatible with declared encoding")
	ErrIncompatibilityUnknown = errors.New("unable to determine compatibility of encodings")
	ErrMalformedDeclaration   = errors.New("malformed XML declaration")
	ErrSourceTruncated        = errors.New("input ended before its encoding could be determined")
	ErrUnsupportedEncoding    = errors.New("unsupported encoding")
)

// MismatchError is returned when the encoding named in the XML
// declaration cannot describe the bytes that were read.
type MismatchError struct {
	Detected string
	Declared string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("detected input encoding %s is incompatible with declared encoding %s", e.Detected, e.Declared)
}

func (e *MismatchError) Unwrap() error {
	return ErrEncodingMismatch
}

// DecodeError reports a byte sequence that is not valid in the input
// encoding. Offset counts raw bytes from the start of the document,
// after any byte order mark. Bytes holds up to four bytes starting at
// the offending position.
type DecodeError struct {
	Encoding string
	Offset   int64
	Bytes    []byte
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s: %s at offset %d [% x]", ErrDecode, e.Encoding, e.Err, e.Offset, e.Bytes)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}
