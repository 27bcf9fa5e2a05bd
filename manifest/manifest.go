// Package manifest decodes the bitstream manifests flashed alongside each
// Tiliqua bitstream. A manifest describes the memory regions the bootloader
// must set up before starting the bitstream, plus optional help text and
// external PLL settings.
//
// The JSON layout must match the host-side schema used by the flashing tool.
package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/q0jt/go-tiliqua/manifest/bounded"
)

const (
	FlashPageSize     = 0x1000
	FlashSectorSize   = 0x10000
	Magic             = 0xFEEDBEEF
	NumManifests      = 8
	SlotBitstreamBase = 0x100000 // first user slot starts here
	SlotSize          = 0x100000 // spacing between user slots
	ManifestOffset    = 0xF0000
	ManifestSize      = 0x1000
	BitstreamNameLen  = 32
	BitstreamTagLen   = 8
	RegionMaxN        = 5
	RegionFileLen     = 16
	HelpBriefMaxSize  = 64
	HelpVideoMaxSize  = 64
	HelpIOMaxSize     = 20
	HelpIOLeftN       = 8
	HelpIORightN      = 6

	// Offsets of the firmware and option storage areas relative to a slot.
	FirmwareBaseOffset = 0x90000
	OptionsBaseOffset  = 0xE0000
)

type (
	NameCap     struct{}
	TagCap      struct{}
	FilenameCap struct{}
	RegionsCap  struct{}
	BriefCap    struct{}
	VideoCap    struct{}
	LabelCap    struct{}
)

func (NameCap) Cap() int     { return BitstreamNameLen }
func (TagCap) Cap() int      { return BitstreamTagLen }
func (FilenameCap) Cap() int { return RegionFileLen }
func (RegionsCap) Cap() int  { return RegionMaxN }
func (BriefCap) Cap() int    { return HelpBriefMaxSize }
func (VideoCap) Cap() int    { return HelpVideoMaxSize }
func (LabelCap) Cap() int    { return HelpIOMaxSize }

type (
	Name     = bounded.String[NameCap]
	Tag      = bounded.String[TagCap]
	Filename = bounded.String[FilenameCap]
	Brief    = bounded.String[BriefCap]
	Video    = bounded.String[VideoCap]
	Label    = bounded.String[LabelCap]
	Regions  = bounded.Vec[MemoryRegion, RegionsCap]
)

type RegionType int

const (
	// Bitstream is loaded directly by the bootloader.
	Bitstream RegionType = iota
	// XipFirmware executes in place from SPI flash.
	XipFirmware
	// RamLoad is copied from SPI flash to RAM before use.
	RamLoad
	// OptionStorage holds persistent application settings.
	OptionStorage
	// Manifest is the region holding this metadata.
	Manifest
)

var regionTypeNames = [...]string{
	Bitstream:     "Bitstream",
	XipFirmware:   "XipFirmware",
	RamLoad:       "RamLoad",
	OptionStorage: "OptionStorage",
	Manifest:      "Manifest",
}

// String returns the string representation of RegionType
func (t RegionType) String() string {
	if t < 0 || int(t) >= len(regionTypeNames) {
		return fmt.Sprintf("RegionType(%d)", int(t))
	}
	return regionTypeNames[t]
}

// ParseRegionType maps a schema name to its RegionType.
func ParseRegionType(s string) (RegionType, error) {
	switch s {
	case "Bitstream":
		return Bitstream, nil
	case "XipFirmware":
		return XipFirmware, nil
	case "RamLoad":
		return RamLoad, nil
	case "OptionStorage":
		return OptionStorage, nil
	case "Manifest":
		return Manifest, nil
	}
	return 0, &UnknownRegionTypeError{Name: s}
}

func (t RegionType) MarshalJSON() ([]byte, error) {
	if t < 0 || int(t) >= len(regionTypeNames) {
		return nil, fmt.Errorf("invalid region type %d", int(t))
	}
	return json.Marshal(regionTypeNames[t])
}

func (t *RegionType) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		return &MissingFieldError{Field: "region_type"}
	}
	v, err := ParseRegionType(*s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t RegionType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

type MemoryRegion struct {
	Filename   Filename   `json:"filename" yaml:"filename"`
	Size       uint32     `json:"size" yaml:"size"`
	RegionType RegionType `json:"region_type" yaml:"region_type"`
	// Absolute SPI flash offset.
	SpiflashSrc *uint32 `json:"spiflash_src,omitempty" yaml:"spiflash_src,omitempty"`
	// Absolute PSRAM destination, set when the region is copied before use.
	PsramDst *uint32 `json:"psram_dst,omitempty" yaml:"psram_dst,omitempty"`
	// Checksum of the region contents. Not verified here.
	Crc *uint32 `json:"crc,omitempty" yaml:"crc,omitempty"`
}

type ExternalPLLConfig struct {
	Clk0Hz uint32 `json:"clk0_hz" yaml:"clk0_hz"`
	// Clk1Inherit derives clk1 from another configured source instead of Clk1Hz.
	Clk1Inherit    bool     `json:"clk1_inherit" yaml:"clk1_inherit"`
	Clk1Hz         *uint32  `json:"clk1_hz,omitempty" yaml:"clk1_hz,omitempty"`
	SpreadSpectrum *float32 `json:"spread_spectrum,omitempty" yaml:"spread_spectrum,omitempty"`
}

// BitstreamHelp is shown by the bootloader before it switches to a bitstream.
type BitstreamHelp struct {
	Brief Brief `json:"brief" yaml:"brief"`
	// One label per jack: in0-in3, out0-out3.
	IOLeft [HelpIOLeftN]Label `json:"io_left" yaml:"io_left"`
	// One label per right-hand connector: encoder, usb2, gpdi, ex0, ex1, midi_trs.
	IORight [HelpIORightN]Label `json:"io_right" yaml:"io_right"`
	Video   Video               `json:"video" yaml:"video"`
}

type BitstreamManifest struct {
	HwRev             uint32             `json:"hw_rev" yaml:"hw_rev"`
	Name              Name               `json:"name" yaml:"name"`
	Tag               Tag                `json:"tag" yaml:"tag"`
	Regions           Regions            `json:"regions" yaml:"regions"`
	Help              *BitstreamHelp     `json:"help,omitempty" yaml:"help,omitempty"`
	ExternalPLLConfig *ExternalPLLConfig `json:"external_pll_config,omitempty" yaml:"external_pll_config,omitempty"`
	Magic             uint32             `json:"magic" yaml:"magic"`
}

// HasValidMagic reports whether the manifest carries the expected magic.
// Decoding never checks it.
func (m *BitstreamManifest) HasValidMagic() bool {
	return m.Magic == Magic
}
