// Package xmlinput turns the raw bytes of an XML document into the UTF-8
// text an XML parser expects.
//
// The input encoding is detected from the bytes themselves, following
// appendix F of the XML 1.0 recommendation: a byte order mark decides
// it outright; otherwise the byte pattern of the XML declaration tells
// how to read the declaration far enough to find its encoding name. A
// document with neither needs a hint from the caller.
//
// Decoding is strict. Malformed input is an error, never replaced. Line
// endings are normalized to LF following section 2.11 of XML 1.1, which
// also satisfies XML 1.0.
package xmlinput

import (
	"io"
	"log/slog"
)

const Version = "v0.1.0"

// New creates a Reader with the default buffer size, reading documents
// that carry neither a byte order mark nor an XML declaration as UTF-8.
func New(src io.Reader) (*Reader, error) {
	return NewWithCapacityAndHint(DefaultBufferSize, "utf-8", src)
}

// NewWithCapacity creates a Reader whose raw input buffer holds at
// least capacity bytes. The encoding is detected with no hint, so a
// document with neither a byte order mark nor an XML declaration is
// rejected with ErrAmbiguousEncoding.
func NewWithCapacity(capacity int, src io.Reader) (*Reader, error) {
	return NewWithCapacityAndHint(capacity, "", src)
}

// NewWithCapacityAndHint creates a Reader whose raw input buffer holds
// at least capacity bytes, assuming the encoding named by hint when the
// document has neither a byte order mark nor an XML declaration.
func NewWithCapacityAndHint(capacity int, hint string, src io.Reader) (*Reader, error) {
	return NewReader(src, WithCapacity(capacity), WithEncodingHint(hint))
}

// NewReader detects the encoding of the document read from src and
// returns a Reader positioned at its first character. Without
// WithEncodingHint no encoding is assumed.
func NewReader(src io.Reader, options ...Option) (*Reader, error) {
	capacity := DefaultBufferSize
	var hint string
	logger := nullLogger
	for _, option := range options {
		switch option.Ident() {
		case identCapacity{}:
			capacity = option.Value().(int)
		case identEncodingHint{}:
			hint = option.Value().(string)
		case identLogger{}:
			logger = loggerOrNull(option.Value().(*slog.Logger))
		}
	}

	enc, prebuf, err := detect(hint, src, logger)
	if err != nil {
		return nil, err
	}
	return newReader(src, enc, prebuf, capacity), nil
}
