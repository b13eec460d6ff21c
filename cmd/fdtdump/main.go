package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"

	"github.com/CreditWorthy/fdtforge"
	"github.com/CreditWorthy/fdtforge/internal/dumptree"
)

var exitFunc = os.Exit
var stderr io.Writer = os.Stderr
var stdout io.Writer = os.Stdout

func main() {
	input := flag.String("input", "", "device tree blob (.dtb) file to dump")
	debug := flag.Bool("debug", false, "dump the decoded header to stderr before the tree")
	lenient := flag.Bool("lenient", false, "skip unrecognized struct tags instead of failing")
	noColor := flag.Bool("no-color", false, "disable colored output")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(stderr, "fdtdump: -input flag is required")
		exitFunc(1)
		return
	}

	if *noColor {
		color.NoColor = true
	}

	if err := run(*input, *debug, *lenient); err != nil {
		fmt.Fprintf(stderr, "fdtdump: %v\n", err)
		exitFunc(1)
		return
	}
}

func run(path string, debug, lenient bool) error {
	blob, err := fdtforge.MapFile(path)
	if err != nil {
		return err
	}
	defer blob.Close()

	var opts []fdtforge.Option
	if lenient {
		opts = append(opts, fdtforge.WithLenientTags())
	}

	f, err := blob.Parse(opts...)
	if err != nil {
		return err
	}

	if debug {
		spew.Fdump(stderr, f.Header())
	}

	p := dumptree.New(stdout)
	if err := p.Reservations(f); err != nil {
		return err
	}
	return p.Tree(f)
}
