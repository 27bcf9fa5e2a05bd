package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	difflib "github.com/pmezard/go-difflib/difflib"
	"github.com/q0jt/go-tiliqua/manifest"
	"gopkg.in/yaml.v3"
)

type renderer func(w io.Writer, m *manifest.BitstreamManifest) error

func newRenderer(format string) (renderer, error) {
	switch format {
	case "text":
		return renderText, nil
	case "json":
		return renderJSON, nil
	case "yaml":
		return renderYAML, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// renderText writes the same dump the bootloader logs.
func renderText(w io.Writer, m *manifest.BitstreamManifest) error {
	m.Log(log.NewLogger(log.NewTerminalHandler(w, false)))
	if !m.HasValidMagic() {
		_, err := fmt.Fprintf(w, "warning: magic %#x, expected %#x\n", m.Magic, uint32(manifest.Magic))
		return err
	}
	return nil
}

func renderJSON(w io.Writer, m *manifest.BitstreamManifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

func renderYAML(w io.Writer, m *manifest.BitstreamManifest) error {
	b, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func renderSlot(w io.Writer, r renderer, sm manifest.SlotManifest) error {
	name := fmt.Sprintf("slot %d", sm.Layout.Slot())
	if sm.Layout.IsBootloader() {
		name = "bootloader"
	}
	addr := sm.Layout.ManifestAddr()
	switch sm.State {
	case manifest.SlotValid:
		if _, err := fmt.Fprintf(w, "%s @ %#x: valid\n", name, addr); err != nil {
			return err
		}
		return r(w, sm.Manifest)
	case manifest.SlotCorrupt:
		_, err := fmt.Fprintf(w, "%s @ %#x: corrupt (%v), head %s\n", name, addr, sm.Err, hex.EncodeToString(sm.Head))
		return err
	default:
		_, err := fmt.Fprintf(w, "%s @ %#x: empty\n", name, addr)
		return err
	}
}

// unifiedDiff compares the YAML renderings of two manifests.
func unifiedDiff(aName, bName string, a, b *manifest.BitstreamManifest, context int) (string, error) {
	ya, err := yaml.Marshal(a)
	if err != nil {
		return "", err
	}
	yb, err := yaml.Marshal(b)
	if err != nil {
		return "", err
	}
	if context <= 0 {
		context = 3
	}
	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(string(ya)),
		B:        splitLinesKeepNL(string(yb)),
		FromFile: aName,
		ToFile:   bName,
		Context:  context,
	}
	return difflib.GetUnifiedDiffString(u)
}

func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}
