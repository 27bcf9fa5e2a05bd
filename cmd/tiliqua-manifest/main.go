// Command tiliqua-manifest inspects bitstream manifests outside the
// bootloader: single manifest windows, whole flash dumps, or the difference
// between two manifests.
//
// Usage:
//
//	tiliqua-manifest decode [-format text|json|yaml] <file>
//	tiliqua-manifest scan [-layout layout.pkl] [-format ...] <flash.bin|flash.hex>
//	tiliqua-manifest diff [-context n] <a> <b>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/q0jt/go-tiliqua/manifest"
	"github.com/q0jt/go-tiliqua/manifest/config"
)

var errUsage = errors.New("usage")

// errAbsent reports a window without a usable manifest.
var errAbsent = errors.New("no manifest present")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("tiliqua-manifest", flag.ContinueOnError)
	global.SetOutput(stderr)
	verbosity := global.Int("verbosity", 2, "log level: 0=crit 1=error 2=warn 3=info 4=debug 5=trace")
	global.Usage = func() { usage(stderr, global) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(stderr, log.FromLegacyLevel(*verbosity), false)))

	rest := global.Args()
	if len(rest) == 0 {
		usage(stderr, global)
		return 2
	}
	var err error
	switch rest[0] {
	case "decode":
		err = runDecode(rest[1:], stdout, stderr)
	case "scan":
		err = runScan(rest[1:], stdout, stderr)
	case "diff":
		err = runDiff(rest[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		usage(stderr, global)
		return 2
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
}

func usage(w io.Writer, fs *flag.FlagSet) {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s [-verbosity n] decode [-format text|json|yaml] <file>\n", name)
	fmt.Fprintf(w, "  %s [-verbosity n] scan [-layout layout.pkl] [-format text|json|yaml] <flash.bin|flash.hex>\n", name)
	fmt.Fprintf(w, "  %s [-verbosity n] diff [-context n] <a> <b>\n", name)
	fmt.Fprintln(w, "\nGlobal flags:")
	fs.PrintDefaults()
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func runDecode(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("decode", stderr)
	format := fs.String("format", "text", "output format: text, json or yaml")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "decode: expected exactly one <file>")
		return errUsage
	}
	r, err := newRenderer(*format)
	if err != nil {
		return err
	}
	m, err := readManifestFile(fs.Arg(0))
	if err != nil {
		return err
	}
	return r(stdout, m)
}

// readManifestFile decodes a manifest window saved to disk, such as a
// manifest.json from a bitstream archive or one page read back from flash.
func readManifestFile(name string) (*manifest.BitstreamManifest, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	trimmed, ok := manifest.TrimErased(b)
	if !ok {
		return nil, fmt.Errorf("%s: %w (all bytes erased)", name, errAbsent)
	}
	m, err := manifest.FromSlice(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

func runScan(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("scan", stderr)
	layoutPath := fs.String("layout", "", "pkl flash layout (default: built-in layout)")
	format := fs.String("format", "text", "output format: text, json or yaml")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "scan: expected exactly one flash image")
		return errUsage
	}
	r, err := newRenderer(*format)
	if err != nil {
		return err
	}
	flash, err := loadLayout(*layoutPath)
	if err != nil {
		return err
	}
	img, err := manifest.OpenFlashImage(fs.Arg(0))
	if err != nil {
		return err
	}
	for _, sm := range img.ScanSlots(flash) {
		if err := renderSlot(stdout, r, sm); err != nil {
			return err
		}
	}
	return nil
}

func loadLayout(path string) (*config.FlashLayout, error) {
	if path == "" {
		return manifest.DefaultFlashLayout(), nil
	}
	return manifest.LoadFlashLayout(context.Background(), path)
}

func runDiff(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("diff", stderr)
	ctxLines := fs.Int("context", 3, "context lines in unified hunks")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(stderr, "diff: expected <a> <b>")
		return errUsage
	}
	a, err := readManifestFile(fs.Arg(0))
	if err != nil {
		return err
	}
	b, err := readManifestFile(fs.Arg(1))
	if err != nil {
		return err
	}
	patch, err := unifiedDiff(fs.Arg(0), fs.Arg(1), a, b, *ctxLines)
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, patch)
	return err
}
