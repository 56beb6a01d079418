//go:build debug

// Package debug prints byte level traces of encoding detection. The
// functions compile to nothing unless built with `-tags debug`, so
// callers guard expensive arguments with `if debug.Enabled`.
package debug

import (
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
)

const Enabled = true

var logger = log.New(os.Stderr, "|xmlinput| ", log.Lmicroseconds)

func Printf(f string, args ...any) {
	logger.Printf(f, args...)
}

// Dump writes v to stderr using go-spew, which shows byte slices as
// hex dumps.
func Dump(v ...any) {
	spew.Fdump(os.Stderr, v...)
}
