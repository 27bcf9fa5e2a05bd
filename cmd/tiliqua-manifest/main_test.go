package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/q0jt/go-tiliqua/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const polysyn = `{
  "hw_rev": 4,
  "name": "POLYSYN",
  "tag": "0.4.1",
  "regions": [
    {"filename": "top.bit", "size": 368640, "region_type": "Bitstream", "spiflash_src": 1048576},
    {"filename": "options", "size": 65536, "region_type": "OptionStorage", "spiflash_src": 1966080}
  ],
  "help": null,
  "external_pll_config": null,
  "magic": 4276993775
}`

func writeFile(t *testing.T, name string, b []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, b, 0o644))
	return p
}

func erasedPage(b []byte) []byte {
	out := bytes.Repeat([]byte{0xff}, manifest.ManifestSize)
	copy(out, b)
	return out
}

func runCmd(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestDecodeText(t *testing.T) {
	p := writeFile(t, "manifest.bin", erasedPage([]byte(polysyn)))
	code, out, _ := runCmd("decode", p)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "name=POLYSYN")
	assert.Contains(t, out, "type=OptionStorage")
	assert.NotContains(t, out, "warning")
}

func TestDecodeJSON(t *testing.T) {
	p := writeFile(t, "manifest.json", []byte(polysyn))
	code, out, _ := runCmd("decode", "-format", "json", p)
	require.Equal(t, 0, code)
	var m manifest.BitstreamManifest
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "POLYSYN", m.Name.String())
	assert.Equal(t, 2, m.Regions.Len())
	w, ok := m.OptionStorageWindow()
	require.True(t, ok)
	assert.Equal(t, manifest.Window{Start: 0x1e0000, End: 0x1f0000}, w)
}

func TestDecodeYAML(t *testing.T) {
	p := writeFile(t, "manifest.json", []byte(polysyn))
	code, out, _ := runCmd("decode", "-format", "yaml", p)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "name: POLYSYN")
	assert.Contains(t, out, "region_type: OptionStorage")
}

func TestDecodeBadMagicWarns(t *testing.T) {
	p := writeFile(t, "manifest.json", []byte(strings.Replace(polysyn, "4276993775", "1", 1)))
	code, out, _ := runCmd("decode", p)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "warning: magic 0x1")
}

func TestDecodeFailures(t *testing.T) {
	erased := writeFile(t, "erased.bin", erasedPage(nil))
	code, _, stderr := runCmd("decode", erased)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no manifest present")

	corrupt := writeFile(t, "corrupt.bin", erasedPage([]byte(`{"hw_rev": 4`)))
	code, _, stderr = runCmd("decode", corrupt)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "malformed")

	code, _, _ = runCmd("decode", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, 1, code)
}

func TestUsageErrors(t *testing.T) {
	p := writeFile(t, "manifest.json", []byte(polysyn))
	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "no command", args: nil, code: 2},
		{name: "unknown command", args: []string{"flash"}, code: 2},
		{name: "decode without file", args: []string{"decode"}, code: 2},
		{name: "diff with one file", args: []string{"diff", p}, code: 2},
		{name: "unknown flag", args: []string{"decode", "-bogus", p}, code: 2},
		{name: "unknown format", args: []string{"decode", "-format", "xml", p}, code: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCmd(tt.args...)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestScan(t *testing.T) {
	img := bytes.Repeat([]byte{0xff}, 0x300000)
	copy(img[0xf0000:], polysyn)
	copy(img[0x2f0000:], `{"hw_rev"`)
	p := writeFile(t, "flash.bin", img)

	code, out, _ := runCmd("scan", "-format", "yaml", p)
	require.Equal(t, 0, code)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "bootloader @ 0xf0000: valid", lines[0])
	assert.Contains(t, out, "slot 0 @ 0x1f0000: empty")
	assert.Contains(t, out, "slot 1 @ 0x2f0000: corrupt")
	assert.Contains(t, out, "head 7b2268775f72657622")
	assert.Contains(t, out, "slot 7 @ 0x8f0000: empty")
}

func TestScanLayoutMissing(t *testing.T) {
	p := writeFile(t, "flash.bin", erasedPage(nil))
	code, _, _ := runCmd("scan", "-layout", filepath.Join(t.TempDir(), "none.pkl"), p)
	assert.Equal(t, 1, code)
}

func TestDiff(t *testing.T) {
	a := writeFile(t, "a.json", []byte(polysyn))
	b := writeFile(t, "b.json", []byte(strings.Replace(polysyn, `"0.4.1"`, `"0.5.0"`, 1)))

	code, out, _ := runCmd("diff", a, b)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "--- "+a)
	assert.Contains(t, out, "+++ "+b)
	assert.Contains(t, out, "-tag: 0.4.1")
	assert.Contains(t, out, "+tag: 0.5.0")

	code, out, _ = runCmd("diff", a, a)
	require.Equal(t, 0, code)
	assert.Empty(t, out)
}
