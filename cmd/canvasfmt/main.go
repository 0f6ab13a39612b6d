// Command canvasfmt parses markup files and prints them in canonical form.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dpotapov/go-canvas/catalog"
	"github.com/dpotapov/go-canvas/markup"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type options struct {
	indent  string
	xml     bool
	symbols bool
	write   bool
	strict  bool
	catalog string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fset := flag.NewFlagSet("canvasfmt", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.Usage = func() {
		_, _ = fmt.Fprintln(stderr, "Usage: canvasfmt [flags] [files...]")
		_, _ = fmt.Fprintln(stderr, "")
		_, _ = fmt.Fprintln(stderr, "Formats markup read from the files, or from stdin if none are given.")
		fset.PrintDefaults()
	}

	var opts options
	fset.StringVar(&opts.indent, "indent", "  ", "indentation per nesting level, empty for a single line")
	fset.BoolVar(&opts.xml, "xml", false, "print the element tree as XML instead of markup")
	fset.BoolVar(&opts.symbols, "symbols", false, "print the free identifiers used by expressions")
	fset.BoolVar(&opts.write, "w", false, "write the result back to the source file")
	fset.BoolVar(&opts.strict, "strict", false, "fail on parse warnings")
	fset.StringVar(&opts.catalog, "catalog", "", "YAML element catalog")
	if err := fset.Parse(args); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	f := &formatter{opts: opts, logger: logger}
	if opts.catalog != "" {
		cat, err := catalog.LoadFile(opts.catalog)
		if err != nil {
			return err
		}
		f.resolver, f.inverse = cat, cat
	}

	if fset.NArg() == 0 {
		if opts.write {
			return errors.New("canvasfmt: cannot use -w with stdin")
		}
		src, err := io.ReadAll(stdin)
		if err != nil {
			return err
		}
		return f.format(stdout, "<stdin>", string(src))
	}

	var allErr error
	for _, name := range fset.Args() {
		if err := f.formatFile(stdout, name); err != nil {
			allErr = errors.Join(allErr, err)
		}
	}
	return allErr
}

type formatter struct {
	opts     options
	logger   *slog.Logger
	resolver markup.Resolver
	inverse  markup.InverseResolver
}

func (f *formatter) formatFile(stdout io.Writer, name string) error {
	src, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	if !f.opts.write {
		return f.format(stdout, name, string(src))
	}

	var b strings.Builder
	if err := f.format(&b, name, string(src)); err != nil {
		return err
	}
	return os.WriteFile(name, []byte(b.String()), 0o644)
}

func (f *formatter) format(w io.Writer, name, src string) error {
	res := markup.Parse(src, f.resolver, nil)
	for _, warn := range res.Warnings {
		f.logger.Warn(warn, "file", name)
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if f.opts.strict && len(res.Warnings) > 0 {
		return fmt.Errorf("%s: %d warnings", name, len(res.Warnings))
	}

	var out string
	switch {
	case f.opts.symbols:
		out = strings.Join(markup.Symbols(res.Roots), "\n")
	case f.opts.xml:
		out = strings.TrimSuffix(markup.DumpXML(res.Roots), "\n")
	case f.opts.indent != "":
		out = markup.SerializeIndent(res.Roots, f.inverse, f.opts.indent)
	default:
		out = markup.Serialize(res.Roots, f.inverse)
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
