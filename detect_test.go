package xmlinput

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestDetectBOM(t *testing.T) {
	data := map[string]struct {
		input      []byte
		prebuf     []byte
		definitive bool
	}{
		"utf-8": {
			input:      append([]byte{0xEF, 0xBB, 0xBF}, "<root/>"...),
			prebuf:     []byte("<root/"),
			definitive: true,
		},
		"utf-16le": {
			input:      append([]byte{0xFF, 0xFE}, utf16le("<root/>")...),
			prebuf:     utf16le("<root/"),
			definitive: true,
		},
		"utf-16be": {
			input:      append([]byte{0xFE, 0xFF}, utf16be("<root/>")...),
			prebuf:     utf16be("<root/"),
			definitive: true,
		},
	}

	for name, d := range data {
		t.Logf("checking %s", name)
		enc, prebuf, err := Detect("", bytes.NewReader(d.input))
		require.NoError(t, err, "Detect should succeed for %s", name)
		require.Equal(t, name, enc.Name())
		require.Equal(t, d.definitive, enc.Definitive())
		require.Equal(t, d.prebuf, prebuf, "prebuffer excludes the BOM")
	}
}

func TestDetectDeclaration(t *testing.T) {
	data := []struct {
		input      []byte
		name       string
		definitive bool
	}{
		{[]byte(`<?xml version="1.0"?><a/>`), "utf-8", false},
		{[]byte(`<?xml version="1.0" encoding="UTF-8"?><a/>`), "utf-8", false},
		{[]byte(`<?xml version='1.0' encoding='us-ascii'?><a/>`), "ascii", false},
		{[]byte("<?xml\tversion=\"1.0\"\nencoding = \"KOI8-R\" ?><a/>"), "koi8-r", false},
		{[]byte(`<?xml version="1.0" encoding="latin1"?><a/>`), "iso-8859-1", false},
		{utf16le(`<?xml version="1.0"?><a/>`), "utf-16le", true},
		{utf16le(`<?xml version="1.0" encoding="UTF-16"?><a/>`), "utf-16le", true},
		{utf16be(`<?xml version="1.0" encoding="utf-16be"?><a/>`), "utf-16be", true},
		{append([]byte{0xFF, 0xFE}, utf16le(`<?xml version="1.0" encoding="UTF-16"?><a/>`)...), "utf-16le", true},
		{append([]byte{0xFE, 0xFF}, utf16be(`<?xml version="1.0" encoding="UTF-16"?><a/>`)...), "utf-16be", true},
		{append([]byte{0xEF, 0xBB, 0xBF}, `<?xml version="1.0" encoding="utf-8"?><a/>`...), "utf-8", true},
	}

	for _, d := range data {
		t.Logf("checking % x", d.input)
		enc, prebuf, err := Detect("", bytes.NewReader(d.input))
		require.NoError(t, err, "Detect should succeed")
		require.Equal(t, d.name, enc.Name())
		require.Equal(t, d.definitive, enc.Definitive())
		require.True(t, bytes.HasSuffix(prebuf, []byte{'>'}) || bytes.HasSuffix(prebuf, []byte{0x00, '>'}) || bytes.HasSuffix(prebuf, []byte{'>', 0x00}), "prebuffer ends with the declaration")
	}
}

func TestDetectDeclaredEncodingWins(t *testing.T) {
	input := []byte{
		0x3C, 0x3F, 0x78, 0x6D, 0x6C, 0x20, 0x76, 0x65, 0x72, 0x73, 0x69, 0x6F, 0x6E, 0x3D, 0x22, 0x31,
		0x2E, 0x30, 0x22, 0x20, 0x65, 0x6E, 0x63, 0x6F, 0x64, 0x69, 0x6E, 0x67, 0x3D, 0x22, 0x69, 0x73,
		0x6F, 0x2D, 0x38, 0x38, 0x35, 0x39, 0x2D, 0x31, 0x22, 0x3F, 0x3E,
	}
	enc, prebuf, err := Detect("", bytes.NewReader(append(input, "<a>caf\xe9</a>"...)))
	require.NoError(t, err)
	require.Equal(t, "iso-8859-1", enc.Name())
	require.False(t, enc.Definitive())
	require.Equal(t, input, prebuf, "detection stops right after the declaration")
}

func TestDetectHint(t *testing.T) {
	const doc = "<root>\xe9</root>"

	enc, prebuf, err := Detect("windows-1251", strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "windows-1251", enc.Name())
	require.True(t, enc.Definitive(), "a hint is definitive")
	require.Equal(t, []byte(doc[:6]), prebuf)

	// the byte order mark beats the hint
	enc, _, err = Detect("iso-8859-1", bytes.NewReader(append([]byte{0xFF, 0xFE}, utf16le("<a/>")...)))
	require.NoError(t, err)
	require.Equal(t, "utf-16le", enc.Name())

	// so does the declaration
	enc, _, err = Detect("iso-8859-1", strings.NewReader(`<?xml version="1.0" encoding="koi8-u"?><a/>`))
	require.NoError(t, err)
	require.Equal(t, "koi8-u", enc.Name())

	_, _, err = Detect("bogus", strings.NewReader(doc))
	require.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestDetectAmbiguous(t *testing.T) {
	inputs := []string{
		"<root/>",
		"<root>text</root>",
		"<?xml-stylesheet href='a.xsl'?><root/>",
		"<?xmlversion='1.0'?><root/>",
		"\xff\xff\xff\xff\xff\xff\xff",
	}
	for _, input := range inputs {
		t.Logf("checking %q", input)
		_, _, err := Detect("", strings.NewReader(input))
		require.ErrorIs(t, err, ErrAmbiguousEncoding, "Detect should fail for %q", input)
	}
}

func TestDetectTruncated(t *testing.T) {
	inputs := [][]byte{
		{},
		[]byte("<?x"),
		[]byte(`<?xml version="1.0"`),
		utf16le(`<?xml version="1.0"`),
	}
	for _, input := range inputs {
		t.Logf("checking % x", input)
		_, _, err := Detect("utf-8", bytes.NewReader(input))
		require.ErrorIs(t, err, ErrSourceTruncated, "Detect should fail for % x", input)
	}
}

func TestDetectShortDocument(t *testing.T) {
	// too short to hold a declaration, but a BOM or a hint is enough
	enc, prebuf, err := Detect("", bytes.NewReader([]byte{0xEF, 0xBB, 0xBF, '<', 'a', '/', '>'}))
	require.NoError(t, err)
	require.Equal(t, "utf-8", enc.Name())
	require.Equal(t, []byte("<a/>"), prebuf)

	enc, prebuf, err = Detect("utf-8", strings.NewReader("<a/>"))
	require.NoError(t, err)
	require.Equal(t, "utf-8", enc.Name())
	require.Equal(t, []byte("<a/>"), prebuf)

	_, _, err = Detect("", strings.NewReader("<a/>"))
	require.ErrorIs(t, err, ErrAmbiguousEncoding)
}

func TestDetectDeclarationCap(t *testing.T) {
	_, _, err := Detect("", strings.NewReader("<?xml "+strings.Repeat("a", 300)+"?><a/>"))
	require.ErrorIs(t, err, ErrMalformedDeclaration)

	// a long declaration that closes in time is fine
	decl := `<?xml version="1.0"` + strings.Repeat(" ", 200) + `encoding="utf-8"?>`
	enc, prebuf, err := Detect("", strings.NewReader(decl+"<a/>"))
	require.NoError(t, err)
	require.Equal(t, "utf-8", enc.Name())
	require.Equal(t, []byte(decl), prebuf)

	// exactly 256 characters, closing included, is the longest accepted
	decl = `<?xml version="1.0"` + strings.Repeat(" ", 256-len(`<?xml version="1.0"?>`)) + `?>`
	require.Len(t, decl, 256)
	_, prebuf, err = Detect("", strings.NewReader(decl+"<a/>"))
	require.NoError(t, err)
	require.Equal(t, []byte(decl), prebuf)

	_, _, err = Detect("", strings.NewReader(`<?xml version="1.0" `+decl[len(`<?xml version="1.0"`):]+"<a/>"))
	require.ErrorIs(t, err, ErrMalformedDeclaration, "257 characters is one too many")

	// the cap counts characters, not bytes
	decl = `<?xml version="1.0" c="` + strings.Repeat("\u00e9", 256-len(`<?xml version="1.0" c=""?>`)) + `"?>`
	_, prebuf, err = Detect("", strings.NewReader(decl+"<a/>"))
	require.NoError(t, err)
	require.Equal(t, []byte(decl), prebuf)
}

func TestDetectMalformedDeclaration(t *testing.T) {
	inputs := []string{
		`<?xml version="1.0" encoding=utf-8?><a/>`,
		`<?xml version="1.0" encoding="utf-8?><a/>`,
		`<?xml version="1.0" encoding= ?><a/>`,
		`<?xml version="1.0" encoding ?>`,
	}
	for _, input := range inputs {
		t.Logf("checking %q", input)
		_, _, err := Detect("", strings.NewReader(input))
		require.ErrorIs(t, err, ErrMalformedDeclaration, "Detect should fail for %q", input)
	}
}

func TestDetectMismatch(t *testing.T) {
	data := []struct {
		input    []byte
		detected string
		declared string
	}{
		{append([]byte{0xFF, 0xFE}, utf16le(`<?xml version="1.0" encoding="utf-8"?>`)...), "utf-16le", "utf-8"},
		{append([]byte{0xFE, 0xFF}, utf16be(`<?xml version="1.0" encoding="UTF-16LE"?>`)...), "utf-16be", "UTF-16LE"},
		{append([]byte{0xEF, 0xBB, 0xBF}, `<?xml version="1.0" encoding="iso-8859-1"?>`...), "utf-8", "iso-8859-1"},
		{utf16le(`<?xml version="1.0" encoding="utf-8"?>`), "utf-16le", "utf-8"},
		{[]byte(`<?xml version="1.0" encoding="utf-16"?>`), "utf-8", "utf-16"},
	}

	for _, d := range data {
		t.Logf("checking %s vs %s", d.detected, d.declared)
		_, _, err := Detect("", bytes.NewReader(d.input))
		require.ErrorIs(t, err, ErrEncodingMismatch)

		var merr *MismatchError
		require.True(t, errors.As(err, &merr), "error is a *MismatchError")
		require.Equal(t, d.detected, merr.Detected)
		require.Equal(t, d.declared, merr.Declared)
	}
}

func TestDetectUnsupported(t *testing.T) {
	inputs := [][]byte{
		[]byte(`<?xml version="1.0" encoding="bogus"?><a/>`),
		[]byte(`<?xml version="1.0" encoding="Shift_JIS"?><a/>`),
		{0x00, 0x00, 0x00, 0x3C, 0x00, 0x00, 0x00, 0x3F},
		{0x4C, 0x6F, 0xA7, 0x94, 0x93, 0x40},
	}
	for _, input := range inputs {
		t.Logf("checking % x", input)
		_, _, err := Detect("", bytes.NewReader(input))
		require.ErrorIs(t, err, ErrUnsupportedEncoding)
	}
}

func TestDetectOneByteAtATime(t *testing.T) {
	input := append([]byte{0xFE, 0xFF}, utf16be(`<?xml version="1.0" encoding="UTF-16"?><a/>`)...)
	enc, prebuf, err := Detect("", iotest.OneByteReader(bytes.NewReader(input)))
	require.NoError(t, err)
	require.Equal(t, "utf-16be", enc.Name())
	require.Equal(t, utf16be(`<?xml version="1.0" encoding="UTF-16"?>`), prebuf)

	// multi-byte characters inside the declaration arrive one byte at a time
	decl := "<?xml version=\"1.0\" encoding=\"utf-8\" note=\"d\xc3\xa9j\xc3\xa0\"?>"
	enc, prebuf, err = Detect("", iotest.OneByteReader(strings.NewReader(decl+"<a/>")))
	require.NoError(t, err)
	require.Equal(t, "utf-8", enc.Name())
	require.Equal(t, []byte(decl), prebuf)
}

func TestDetectSourceError(t *testing.T) {
	_, _, err := Detect("", iotest.ErrReader(iotest.ErrTimeout))
	require.ErrorIs(t, err, iotest.ErrTimeout)
	require.NotErrorIs(t, err, ErrSourceTruncated)
}

func TestDeclaredEncoding(t *testing.T) {
	data := []struct {
		decl  string
		name  string
		found bool
	}{
		{`<?xml version="1.0"?>`, "", false},
		{`<?xml version="1.0" encoding="EUC-JP"?>`, "EUC-JP", true},
		{`<?xml version='1.0' encoding='utf-8'?>`, "utf-8", true},
		{`<?xml version="1.0" encoding = "x" ?>`, "x", true},
		{`<?xml version="1.0" standalone="yes"?>`, "", false},
		{`<?xml encoding="a" standalone="no"?>`, "a", true},
		{"<?xml\r\n\tversion=\"1.0\"\r\n\tencoding='b'?>", "b", true},
	}

	for _, d := range data {
		t.Logf("checking %q", d.decl)
		name, found, err := declaredEncoding(d.decl)
		require.NoError(t, err)
		require.Equal(t, d.found, found)
		require.Equal(t, d.name, name)
	}
}
