package xmlinput

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/lestrrat-go/xmlinput/encoding"
	"github.com/lestrrat-go/xmlinput/internal/debug"
)

// Detect determines the encoding of the XML document read from src,
// following the autodetection heuristic of the XML 1.0 recommendation
// (appendix F). hint names the encoding to assume when the document has
// neither a byte order mark nor an XML declaration; pass an empty
// string for no hint.
//
// Detect returns the bytes it consumed from src, minus any byte order
// mark. They must be decoded before anything else read from src.
func Detect(hint string, src io.Reader) (Encoding, []byte, error) {
	return detect(hint, src, nullLogger)
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrSourceTruncated, err)
	}
	return err
}

func detect(hint string, src io.Reader, logger *slog.Logger) (enc Encoding, prebuf []byte, err error) {
	var sig signature
	defer func() {
		if err != nil {
			logger.Debug("encoding detection failed", slog.Any("error", err))
			return
		}
		logger.Debug("detected input encoding",
			slog.String("encoding", enc.Name()),
			slog.Bool("definitive", enc.Definitive()),
			slog.Int("bom", sig.bom),
			slog.Int("prebuffer", len(prebuf)),
		)
	}()

	var quad [4]byte
	if _, err := io.ReadFull(src, quad[:]); err != nil {
		return Encoding{}, nil, truncated(err)
	}

	sig, err = matchSignature(quad)
	if err != nil {
		return Encoding{}, nil, err
	}
	if debug.Enabled {
		debug.Printf("signature [% x] -> %s definitive=%t bom=%d", quad, sig.codec.Name(), sig.definitive, sig.bom)
	}

	guess := Encoding{codec: sig.codec, definitive: sig.definitive}
	prebuf = make([]byte, 0, 64)
	prebuf = append(prebuf, quad[sig.bom:]...)

	scan := newDeclScanner(guess)
	hasDecl := false

	// "<?xml" plus one whitespace character, in the guessed width
	eof := false
	if need := len(declPrefix)*guess.CharWidth() - len(prebuf); need > 0 {
		chunk := make([]byte, need)
		n, err := io.ReadFull(src, chunk)
		prebuf = append(prebuf, chunk[:n]...)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			eof = true
		default:
			return Encoding{}, nil, err
		}
	}
	if !eof {
		// bytes that do not decode cannot spell a declaration
		if err := scan.push(prebuf); err == nil {
			hasDecl = scan.isDecl()
		}
	}

	if !hasDecl {
		switch {
		case guess.definitive:
			return guess, prebuf, nil
		case hint != "":
			c := encoding.Load(hint)
			if c == nil {
				return Encoding{}, nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, hint)
			}
			return Encoding{codec: c, definitive: true}, prebuf, nil
		default:
			return Encoding{}, nil, ErrAmbiguousEncoding
		}
	}

	one := make([]byte, guess.CharWidth())
	for !scan.closed() {
		if _, err := io.ReadFull(src, one); err != nil {
			return Encoding{}, nil, truncated(err)
		}
		prebuf = append(prebuf, one...)
		if err := scan.push(one); err != nil {
			return Encoding{}, nil, err
		}
		if scan.len() > maxDeclChars {
			return Encoding{}, nil, fmt.Errorf("%w: no closing %q within %d characters", ErrMalformedDeclaration, declEnd, maxDeclChars)
		}
	}
	if debug.Enabled {
		debug.Printf("declaration %q", scan.String())
	}

	name, found, err := declaredEncoding(scan.String())
	if err != nil {
		return Encoding{}, nil, err
	}
	if !found {
		return guess, prebuf, nil
	}

	ok, err := guess.IsCompatible(name)
	if err != nil {
		return Encoding{}, nil, err
	}
	if !ok {
		return Encoding{}, nil, &MismatchError{Detected: guess.Name(), Declared: name}
	}

	// a byte order mark decides the decoder even when the declaration
	// uses a different, compatible name
	if guess.definitive {
		return guess, prebuf, nil
	}
	return Encoding{codec: encoding.Load(name)}, prebuf, nil
}
