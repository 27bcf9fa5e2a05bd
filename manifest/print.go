package manifest

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
)

const none = "none"

// Print dumps the manifest to the root logger.
func (m *BitstreamManifest) Print() {
	m.Log(log.Root())
}

// Log dumps the manifest to l at info level: the header, help text (without
// the I/O labels), clock settings, then every region in order.
func (m *BitstreamManifest) Log(l log.Logger) {
	l.Info("Bitstream manifest",
		"magic", hex(m.Magic),
		"hw_rev", m.HwRev,
		"name", m.Name.String(),
		"tag", m.Tag.String())
	if h := m.Help; h != nil {
		l.Info("Bitstream help",
			"brief", h.Brief.String(),
			"video", h.Video.String())
	}
	if c := m.ExternalPLLConfig; c != nil {
		l.Info("External PLL config",
			"clk0_hz", fmt.Sprint(c.Clk0Hz),
			"clk1_hz", optUint(c.Clk1Hz),
			"clk1_inherit", c.Clk1Inherit,
			"spread_spectrum", optFloat(c.SpreadSpectrum))
	}
	m.Regions.Each(func(i int, r MemoryRegion) bool {
		ctx := []interface{}{
			"index", i,
			"filename", r.Filename.String(),
			"type", r.RegionType.String(),
		}
		if r.SpiflashSrc != nil {
			ctx = append(ctx, "spiflash_src", hex(*r.SpiflashSrc))
		} else {
			ctx = append(ctx, "spiflash_src", none)
		}
		if r.PsramDst != nil {
			ctx = append(ctx, "psram_dst", hex(*r.PsramDst)+" (copyto)")
		}
		ctx = append(ctx, "size", hex(r.Size))
		if r.Crc != nil {
			ctx = append(ctx, "crc", hex(*r.Crc))
		}
		l.Info("Memory region", ctx...)
		return true
	})
}

func hex(v uint32) string {
	return fmt.Sprintf("%#x", v)
}

func optUint(v *uint32) string {
	if v == nil {
		return none
	}
	return fmt.Sprint(*v)
}

func optFloat(v *float32) string {
	if v == nil {
		return none
	}
	return fmt.Sprint(*v)
}
