package manifest

import (
	"fmt"
	"math"
)

// Window is a half-open range [Start, End) of SPI flash offsets.
type Window struct {
	Start uint32
	End   uint32
}

func (w Window) Len() uint32 {
	return w.End - w.Start
}

func (w Window) Contains(addr uint32) bool {
	return addr >= w.Start && addr < w.End
}

func (w Window) String() string {
	return fmt.Sprintf("%#x..%#x", w.Start, w.End)
}

// OptionStorageWindow returns the flash window of the first OptionStorage
// region that has a flash source. Any later OptionStorage regions are ignored.
func (m *BitstreamManifest) OptionStorageWindow() (Window, bool) {
	var (
		w     Window
		found bool
	)
	m.Regions.Each(func(_ int, r MemoryRegion) bool {
		if r.RegionType != OptionStorage || r.SpiflashSrc == nil {
			return true
		}
		src := *r.SpiflashSrc
		if uint64(src)+uint64(r.Size) > math.MaxUint32 {
			return false
		}
		w, found = Window{Start: src, End: src + r.Size}, true
		return false
	})
	return w, found
}

// Region returns the first region of type t.
func (m *BitstreamManifest) Region(t RegionType) (MemoryRegion, bool) {
	var (
		out   MemoryRegion
		found bool
	)
	m.Regions.Each(func(_ int, r MemoryRegion) bool {
		if r.RegionType == t {
			out, found = r, true
			return false
		}
		return true
	})
	return out, found
}

// IsBootloader reports whether the manifest describes a bootloader image,
// the only kind that carries XiP firmware.
func (m *BitstreamManifest) IsBootloader() bool {
	_, ok := m.Region(XipFirmware)
	return ok
}
