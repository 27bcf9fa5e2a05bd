package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/q0jt/go-tiliqua/manifest/config"
)

var (
	errNoFlashSource = errors.New("region has no spiflash source")
	errPastImage     = errors.New("region extends past the flash image")
)

// FlashImage is a dump of SPI flash starting at address 0. Reads past the
// end of the dump return erased bytes.
type FlashImage struct {
	data []byte
}

func NewFlashImage(b []byte) *FlashImage {
	return &FlashImage{data: b}
}

// OpenFlashImage reads a raw flash dump, or an Intel HEX file if name ends in .hex.
func OpenFlashImage(name string) (*FlashImage, error) {
	if strings.EqualFold(filepath.Ext(name), ".hex") {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadHexImage(f)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return NewFlashImage(b), nil
}

func (f *FlashImage) Size() int {
	return len(f.data)
}

// Window copies size bytes starting at addr.
func (f *FlashImage) Window(addr, size uint32) []byte {
	out := bytes.Repeat([]byte{erased}, int(size))
	if uint64(addr) < uint64(len(f.data)) {
		copy(out, f.data[addr:])
	}
	return out
}

// RegionData returns the flash contents of a region with a flash source.
// The region must lie within the image.
func (f *FlashImage) RegionData(r MemoryRegion) ([]byte, error) {
	if r.SpiflashSrc == nil {
		return nil, fmt.Errorf("%s: %w", r.Filename, errNoFlashSource)
	}
	src := *r.SpiflashSrc
	if uint64(src)+uint64(r.Size) > uint64(len(f.data)) {
		return nil, fmt.Errorf("%s: %w (%#x+%#x, image %#x)", r.Filename, errPastImage, src, r.Size, len(f.data))
	}
	return f.Window(src, r.Size), nil
}

type SlotState int

const (
	SlotEmpty SlotState = iota
	SlotValid
	SlotCorrupt
)

func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotValid:
		return "valid"
	case SlotCorrupt:
		return "corrupt"
	}
	return fmt.Sprintf("SlotState(%d)", int(s))
}

// SlotManifest is the result of reading one slot's manifest window.
type SlotManifest struct {
	Layout   *SlotLayout
	State    SlotState
	Manifest *BitstreamManifest
	// Err and Head are set for corrupt slots. Head holds the first bytes of
	// the window for diagnostics.
	Err  error
	Head []byte
}

const headLen = 32

// ReadSlot decodes the manifest window of one slot. Unlike FromWindow it
// keeps apart erased and corrupt slots.
func (f *FlashImage) ReadSlot(s *SlotLayout) SlotManifest {
	w := s.ManifestWindow()
	window := f.Window(w.Start, w.Len())
	sm := SlotManifest{Layout: s}
	b, ok := TrimErased(window)
	if !ok {
		log.Debug("Slot manifest is erased", "slot", s.Slot(), "addr", hex(w.Start))
		return sm
	}
	m, err := decode(b)
	if err != nil {
		log.Warn("Slot manifest is corrupt", "slot", s.Slot(), "addr", hex(w.Start), "err", err)
		sm.State, sm.Err = SlotCorrupt, err
		sm.Head = append([]byte(nil), b[:min(len(b), headLen)]...)
		return sm
	}
	sm.State, sm.Manifest = SlotValid, m
	return sm
}

// ScanSlots reads the bootloader manifest and every user slot's manifest.
func (f *FlashImage) ScanSlots(flash *config.FlashLayout) []SlotManifest {
	var out []SlotManifest
	for _, s := range Slots(flash) {
		out = append(out, f.ReadSlot(s))
	}
	return out
}
