package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/lestrrat-go/xmlinput"
	"github.com/lestrrat-go/xmlinput/encoding"
	"github.com/lestrrat-go/xmlinput/internal/cliutil"
	"golang.org/x/sync/errgroup"
)

type cmdopts struct {
	Encoding   string `long:"encoding" description:"encoding to assume when a document has no byte order mark and no XML declaration"`
	BufferSize int    `long:"buffer-size" default:"4096" description:"size of the raw input buffer"`
	Detect     bool   `long:"detect" description:"print the detected encoding instead of the decoded document"`
	Jobs       int    `long:"jobs" default:"4" description:"number of files examined at once with --detect"`
	List       bool   `long:"list" description:"list the supported encodings"`
	Verbose    bool   `long:"verbose" description:"log encoding detection to stderr"`
	Version    bool   `long:"version"`
}

func main() {
	os.Exit(_main())
}

func showVersion() {
	fmt.Printf("xmlinput: using xmlinput version %s\n", xmlinput.Version)
}

func showUsage() {
	fmt.Printf(`Usage : xmlinput [options] XMLfiles ...
	Decode the XML files to UTF-8 with normalized line endings
	--encoding NAME : encoding of documents that do not declare one
	--buffer-size N : size of the raw input buffer
	--detect : only print the detected encoding of each file
	--jobs N : number of files examined at once with --detect
	--list : list the supported encodings
	--verbose : log encoding detection to stderr
	--version : display the version of the library used
`)
}

func (opts cmdopts) readerOptions() []xmlinput.Option {
	options := []xmlinput.Option{
		xmlinput.WithCapacity(opts.BufferSize),
		xmlinput.WithEncodingHint(opts.Encoding),
	}
	if opts.Verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		options = append(options, xmlinput.WithLogger(logger))
	}
	return options
}

func _main() int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		showUsage()
		return 1
	}

	switch {
	case opts.Version:
		showVersion()
		return 0
	case opts.List:
		for _, name := range encoding.Names() {
			fmt.Printf("%s\t%s\n", name, encoding.Load(name).Family())
		}
		return 0
	}

	if len(args) == 0 {
		if cliutil.IsTty(os.Stdin.Fd()) {
			showUsage()
			return 1
		}
		args = []string{"-"}
	}

	if opts.Detect {
		return detect(opts, args)
	}
	return transcode(opts, args)
}

func open(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

// detect examines the files concurrently, then reports them in the
// order they were given.
func detect(opts cmdopts, args []string) int {
	type result struct {
		enc xmlinput.Encoding
		err error
	}
	results := make([]result, len(args))

	var g errgroup.Group
	g.SetLimit(max(opts.Jobs, 1))
	for i, name := range args {
		g.Go(func() error {
			fh, err := open(name)
			if err != nil {
				results[i].err = err
				return nil
			}
			defer fh.Close()

			r, err := xmlinput.NewReader(fh, opts.readerOptions()...)
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].enc = r.Encoding()
			return nil
		})
	}
	_ = g.Wait()

	status := 0
	for i, name := range args {
		res := results[i]
		if res.err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", name, res.err)
			status = 1
			continue
		}
		kind := "declared"
		if res.enc.Definitive() {
			kind = "definitive"
		}
		fmt.Printf("%s: %s (%s)\n", name, res.enc.Name(), kind)
	}
	return status
}

func transcode(opts cmdopts, args []string) int {
	inputCh := make(chan io.ReadCloser)
	errCh := make(chan error, 1)
	go func() {
		defer close(inputCh)
		for _, f := range args {
			fh, err := open(f)
			if err != nil {
				errCh <- err
				return
			}
			inputCh <- fh
		}
	}()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for in := range inputCh {
		r, err := xmlinput.NewReader(in, opts.readerOptions()...)
		if err == nil {
			_, err = r.WriteTo(out)
		}
		in.Close()
		if err != nil {
			out.Flush()
			fmt.Fprintf(os.Stderr, "%s\n", err)
			for in := range inputCh {
				in.Close()
			}
			return 1
		}
	}

	select {
	case err := <-errCh:
		out.Flush()
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	default:
	}

	return 0
}
