package xmlinput

import (
	"log/slog"

	"github.com/lestrrat-go/option"
)

type Option = option.Interface

type identCapacity struct{}
type identEncodingHint struct{}
type identLogger struct{}

// WithCapacity sets the size of the raw input buffer. The buffer is
// never smaller than the bytes consumed while detecting the encoding.
func WithCapacity(v int) Option {
	return option.New(identCapacity{}, v)
}

// WithEncodingHint names the encoding to assume when the document has
// neither a byte order mark nor an XML declaration.
func WithEncodingHint(v string) Option {
	return option.New(identEncodingHint{}, v)
}

// WithLogger specifies the logger that receives detection traces at
// debug level
func WithLogger(v *slog.Logger) Option {
	return option.New(identLogger{}, v)
}
