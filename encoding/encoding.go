// Package encoding wraps around the various encoding stuff in
// golang.org/x/text/encoding. Part of the reason this exists is that
// the package names such as "unicode" clash with the stdlib, and
// it's rather easier if we just hide it from xmlinput.
//
// Every Codec in the registry decodes strictly: a byte sequence that
// does not map to a character is an error, never U+FFFD.
package encoding

import (
	"sort"
	"strings"

	"golang.org/x/net/html/charset"
	enc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Family groups codecs by how they map bytes to characters.
type Family int

const (
	// Unicode codecs are the UTF transformation formats.
	Unicode Family = iota
	// SingleByte codecs map every byte to exactly one character.
	SingleByte
)

func (f Family) String() string {
	switch f {
	case Unicode:
		return "unicode"
	case SingleByte:
		return "single-byte"
	default:
		return "unknown"
	}
}

// Codec describes one supported encoding.
type Codec struct {
	name    string
	width   int
	family  Family
	enc     enc.Encoding
	decoder func() transform.Transformer
}

// Name returns the canonical, lower case name of the codec.
func (c *Codec) Name() string {
	return c.name
}

// Width returns the number of bytes used by one ASCII character.
func (c *Codec) Width() int {
	return c.width
}

func (c *Codec) Family() Family {
	return c.family
}

// Encoding returns the golang.org/x/text encoding backing this codec.
// ASCII has no x/text counterpart and returns nil.
func (c *Codec) Encoding() enc.Encoding {
	return c.enc
}

// NewDecoder returns a fresh strict decoder producing UTF-8. Malformed
// input makes Transform return ErrInvalidSequence.
func (c *Codec) NewDecoder() transform.Transformer {
	return c.decoder()
}

func (c *Codec) String() string {
	return c.name
}

var (
	ASCII = &Codec{
		name:    "ascii",
		width:   1,
		family:  SingleByte,
		decoder: func() transform.Transformer { return asciiDecoder{} },
	}
	UTF8 = &Codec{
		name:    "utf-8",
		width:   1,
		family:  Unicode,
		enc:     unicode.UTF8,
		decoder: func() transform.Transformer { return utf8Decoder{} },
	}
	// UTF16 is the byte order agnostic label. Without a byte order mark
	// to say otherwise it is read big endian.
	UTF16 = &Codec{
		name:    "utf-16",
		width:   2,
		family:  Unicode,
		enc:     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
		decoder: func() transform.Transformer { return utf16Decoder{bigEndian: true} },
	}
	UTF16LE = &Codec{
		name:    "utf-16le",
		width:   2,
		family:  Unicode,
		enc:     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
		decoder: func() transform.Transformer { return utf16Decoder{} },
	}
	UTF16BE = &Codec{
		name:    "utf-16be",
		width:   2,
		family:  Unicode,
		enc:     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
		decoder: func() transform.Transformer { return utf16Decoder{bigEndian: true} },
	}
)

func singleByte(name string, cm *charmap.Charmap) *Codec {
	return &Codec{
		name:    name,
		width:   1,
		family:  SingleByte,
		enc:     cm,
		decoder: func() transform.Transformer { return charmapDecoder{charmap: cm} },
	}
}

var (
	codecs = map[string]*Codec{}
	// byEncoding maps x/text encodings back to codecs, so that labels
	// resolved through ianaindex or charset land on the same table
	byEncoding = map[enc.Encoding]*Codec{}
)

func register(list ...*Codec) {
	for _, c := range list {
		codecs[c.name] = c
		if c.enc != nil {
			if _, ok := byEncoding[c.enc]; !ok {
				byEncoding[c.enc] = c
			}
		}
	}
}

func init() {
	register(ASCII, UTF8, UTF16, UTF16LE, UTF16BE)
	register(
		singleByte("ibm866", charmap.CodePage866),
		singleByte("iso-8859-1", charmap.ISO8859_1),
		singleByte("iso-8859-2", charmap.ISO8859_2),
		singleByte("iso-8859-3", charmap.ISO8859_3),
		singleByte("iso-8859-4", charmap.ISO8859_4),
		singleByte("iso-8859-5", charmap.ISO8859_5),
		singleByte("iso-8859-6", charmap.ISO8859_6),
		singleByte("iso-8859-7", charmap.ISO8859_7),
		singleByte("iso-8859-8", charmap.ISO8859_8),
		singleByte("iso-8859-10", charmap.ISO8859_10),
		singleByte("iso-8859-13", charmap.ISO8859_13),
		singleByte("iso-8859-14", charmap.ISO8859_14),
		singleByte("iso-8859-15", charmap.ISO8859_15),
		singleByte("iso-8859-16", charmap.ISO8859_16),
		singleByte("koi8-r", charmap.KOI8R),
		singleByte("koi8-u", charmap.KOI8U),
		singleByte("mac-roman", charmap.Macintosh),
		singleByte("mac-cyrillic", charmap.MacintoshCyrillic),
		singleByte("windows-874", charmap.Windows874),
		singleByte("windows-1250", charmap.Windows1250),
		singleByte("windows-1251", charmap.Windows1251),
		singleByte("windows-1252", charmap.Windows1252),
		singleByte("windows-1253", charmap.Windows1253),
		singleByte("windows-1254", charmap.Windows1254),
		singleByte("windows-1255", charmap.Windows1255),
		singleByte("windows-1256", charmap.Windows1256),
		singleByte("windows-1257", charmap.Windows1257),
		singleByte("windows-1258", charmap.Windows1258),
	)
}

// aliases maps spellings seen in the wild to registry names. IANA and
// WHATWG canonical names are listed so that lookups through those
// indexes land in the registry.
var aliases = map[string]string{
	"us-ascii":          "ascii",
	"utf8":              "utf-8",
	"unicode-1-1-utf-8": "utf-8",
	"ucs-2":             "utf-16",
	"utf16":             "utf-16",
	"utf16le":           "utf-16le",
	"utf16be":           "utf-16be",
	"cp866":             "ibm866",
	"latin1":            "iso-8859-1",
	"l1":                "iso-8859-1",
	"iso8859-1":         "iso-8859-1",
	"iso_8859-1":        "iso-8859-1",
	"iso8859-15":        "iso-8859-15",
	"latin9":            "iso-8859-15",
	"koi8r":             "koi8-r",
	"koi8u":             "koi8-u",
	"koir8u":            "koi8-u",
	"macintosh":         "mac-roman",
	"x-mac-roman":       "mac-roman",
	"macintoshcyrillic": "mac-cyrillic",
	"x-mac-cyrillic":    "mac-cyrillic",
	"cp874":             "windows-874",
	"windows874":        "windows-874",
	"cp1250":            "windows-1250",
	"windows1250":       "windows-1250",
	"cp1251":            "windows-1251",
	"windows1251":       "windows-1251",
	"cp1252":            "windows-1252",
	"windows1252":       "windows-1252",
	"cp1253":            "windows-1253",
	"windows1253":       "windows-1253",
	"cp1254":            "windows-1254",
	"windows1254":       "windows-1254",
	"cp1255":            "windows-1255",
	"windows1255":       "windows-1255",
	"cp1256":            "windows-1256",
	"windows1256":       "windows-1256",
	"cp1257":            "windows-1257",
	"windows1257":       "windows-1257",
	"cp1258":            "windows-1258",
	"windows1258":       "windows-1258",
}

func lookup(name string) *Codec {
	name = strings.ToLower(name)
	if c, ok := codecs[name]; ok {
		return c
	}
	if canonical, ok := aliases[name]; ok {
		return codecs[canonical]
	}
	return nil
}

// Load returns the codec registered for the given label, or nil if the
// label does not name a supported encoding. Labels are matched case
// insensitively against the registry first, then against the IANA
// character set registry and finally against the WHATWG label table.
func Load(label string) *Codec {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}

	if c := lookup(label); c != nil {
		return c
	}

	if e, err := ianaindex.IANA.Encoding(label); err == nil && e != nil {
		if c, ok := byEncoding[e]; ok {
			return c
		}
		// IANA names such as ISO_8859-1:1987 are not registry names,
		// the MIME preferred name usually is
		for _, index := range []*ianaindex.Index{ianaindex.MIME, ianaindex.IANA} {
			if name, err := index.Name(e); err == nil {
				if c := lookup(name); c != nil {
					return c
				}
			}
		}
	}

	if e, name := charset.Lookup(label); e != nil {
		if c, ok := byEncoding[e]; ok {
			return c
		}
		return lookup(name)
	}
	return nil
}

// Names lists the canonical names of every registered codec.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
