package xmlinput_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lestrrat-go/xmlinput"
	"github.com/stretchr/testify/require"
)

// TestDecodeGolden decodes every .xml file in the test/ directory and
// compares the result with the .golden file next to it. A golden file
// holds the UTF-8 text of the document with its line endings normalized.
//
// Environment variable XMLINPUT_TEST_FILES can be set to test only
// specific files:
//
//	XMLINPUT_TEST_FILES=latin1.xml,eol.xml go test -run TestDecodeGolden
func TestDecodeGolden(t *testing.T) {
	only := map[string]struct{}{}
	if v := os.Getenv("XMLINPUT_TEST_FILES"); v != "" {
		for _, f := range strings.Split(v, ",") {
			n := strings.TrimSpace(f)
			only[n] = struct{}{}
		}
	}

	dir := "test"
	files, err := os.ReadDir(dir)
	require.NoError(t, err, "os.ReadDir should succeed")

	for _, fi := range files {
		if fi.IsDir() {
			continue
		}
		if len(only) > 0 {
			if _, ok := only[fi.Name()]; !ok {
				continue
			}
		}

		fn := filepath.Join(dir, fi.Name())
		if !strings.HasSuffix(fn, ".xml") {
			continue
		}

		goldenfn := strings.TrimSuffix(fn, ".xml") + ".golden"
		if _, err := os.Stat(goldenfn); err != nil {
			t.Logf("%s does not exist, skipping golden test...", goldenfn)
			continue
		}

		golden, err := os.ReadFile(goldenfn)
		require.NoError(t, err, "os.ReadFile should succeed for golden file")

		for _, capacity := range []int{xmlinput.DefaultBufferSize, 5} {
			fh, err := os.Open(fn)
			require.NoError(t, err, "os.Open should succeed for input file")

			r, err := xmlinput.NewWithCapacity(capacity, fh)
			require.NoError(t, err, "xmlinput.NewWithCapacity should succeed for %s", fn)
			t.Logf("decoding %s as %s (capacity %d)", fn, r.Encoding(), capacity)

			var output bytes.Buffer
			_, err = r.WriteTo(&output)
			_ = fh.Close()
			require.NoError(t, err, "WriteTo should succeed for %s", fn)

			actual := output.String()
			expected := string(golden)
			if expected != actual {
				errfn := fn + ".golden.err"
				if err := os.WriteFile(errfn, output.Bytes(), 0600); err != nil {
					t.Logf("Failed to create file to save output: %s", err)
				} else {
					t.Logf("Actual output saved to %s", errfn)
				}
			}
			require.Equal(t, expected, actual, "decoded output should match golden file for %s", fn)
		}
	}
}
