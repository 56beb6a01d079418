package xmlinput

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/lestrrat-go/xmlinput/internal/debug"
	"golang.org/x/text/transform"
)

const (
	DefaultBufferSize = 4096

	// the raw buffer must hold one complete character of any encoding
	minBufferSize = utf8.UTFMax

	maxConsecutiveEmptyReads = 100
)

// Reader presents an XML document in any supported encoding as UTF-8
// with normalized line endings.
//
// Reader is not safe for concurrent use. It does not close the
// underlying source.
type Reader struct {
	src     io.Reader
	enc     Encoding
	dec     transform.Transformer
	in      []byte // raw bytes not yet decoded
	scratch []byte
	out     []byte // decoded, normalized text
	pos     int    // read cursor into out
	eol     eolState
	offset  int64 // raw bytes decoded so far
	primed  bool  // in holds the detection prebuffer
	eof     bool
	err     error
}

func newReader(src io.Reader, enc Encoding, prebuf []byte, capacity int) *Reader {
	capacity = max(capacity, len(prebuf), minBufferSize)
	in := make([]byte, 0, capacity)
	in = append(in, prebuf...)

	return &Reader{
		src:     src,
		enc:     enc,
		dec:     enc.newDecoder(),
		in:      in,
		scratch: make([]byte, 3*capacity),
		primed:  true,
	}
}

// Encoding returns the encoding the document is decoded from.
func (r *Reader) Encoding() Encoding {
	return r.enc
}

// Fill returns the decoded text that is available without consuming
// it, reading and decoding more input if none is. It returns io.EOF
// once the document is exhausted. After any other error the Reader is
// unusable and keeps returning that error; text decoded before a
// malformed sequence, or read together with a source error, is
// returned first.
func (r *Reader) Fill() ([]byte, error) {
	for r.pos >= len(r.out) {
		if r.err != nil {
			return nil, r.err
		}
		if r.eof && len(r.in) == 0 {
			return nil, io.EOF
		}
		if err := r.fill(); err != nil {
			r.err = err
			return nil, err
		}
	}
	return r.out[r.pos:], nil
}

// Consume marks n bytes of the text returned by Fill as read. n is
// clamped to what is available.
func (r *Reader) Consume(n int) {
	if n <= 0 {
		return
	}
	r.pos += min(n, len(r.out)-r.pos)
}

func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := r.Fill()
	if err != nil {
		return 0, err
	}
	n := copy(p, b)
	r.Consume(n)
	return n, nil
}

func (r *Reader) ReadByte() (byte, error) {
	b, err := r.Fill()
	if err != nil {
		return 0, err
	}
	r.Consume(1)
	return b[0], nil
}

// WriteTo writes the rest of the decoded document to w.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for {
		b, err := r.Fill()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return written, nil
			}
			return written, err
		}
		n, err := w.Write(b)
		written += int64(n)
		r.Consume(n)
		if err != nil {
			return written, err
		}
	}
}

func (r *Reader) fill() error {
	if r.primed {
		r.primed = false
	} else if !r.eof {
		if err := r.readSource(); err != nil {
			return err
		}
	}
	return r.decode()
}

// readSource appends to the raw buffer whatever the source returns in
// one read. The buffer only holds an incomplete character at this
// point, so there is always room. A source error that comes with data
// is held back until that data has been decoded and delivered.
func (r *Reader) readSource() error {
	for range maxConsecutiveEmptyReads {
		n, err := r.src.Read(r.in[len(r.in):cap(r.in)])
		r.in = r.in[:len(r.in)+n]
		if err != nil {
			if err == io.EOF {
				r.eof = true
				return nil
			}
			if n > 0 {
				r.err = err
				return nil
			}
			return err
		}
		if n > 0 {
			return nil
		}
	}
	return io.ErrNoProgress
}

// decode converts the raw buffer into normalized text, replacing the
// output buffer. An incomplete character at the end of the raw buffer
// stays there for the next fill, unless the source is exhausted.
func (r *Reader) decode() error {
	r.out = r.out[:0]
	r.pos = 0

	src := r.in
	for {
		nDst, nSrc, err := r.dec.Transform(r.scratch, src, r.eof)
		r.out = r.eol.normalize(r.out, r.scratch[:nDst])
		src = src[nSrc:]
		r.offset += int64(nSrc)

		if err == nil {
			break
		}
		if errors.Is(err, transform.ErrShortDst) {
			continue
		}
		if errors.Is(err, transform.ErrShortSrc) && !r.eof {
			break
		}
		derr := &DecodeError{
			Encoding: r.enc.Name(),
			Offset:   r.offset,
			Bytes:    bytes.Clone(src[:min(len(src), utf8.UTFMax)]),
			Err:      err,
		}
		if debug.Enabled {
			debug.Dump(derr)
		}
		// text decoded ahead of the bad sequence is still delivered
		if len(r.out) > 0 {
			r.err = derr
			return nil
		}
		return derr
	}

	r.in = r.in[:copy(r.in, src)]
	return nil
}
