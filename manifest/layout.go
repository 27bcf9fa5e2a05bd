package manifest

import (
	"context"
	"errors"
	"fmt"

	"github.com/q0jt/go-tiliqua/manifest/config"
)

// BootloaderSlot selects the bootloader image at the start of flash.
const BootloaderSlot = -1

var (
	ErrSlotOutOfRange     = errors.New("slot is out of range")
	ErrBootloaderFirmware = errors.New("bootloader has no firmware base (uses XiP)")
)

// DefaultFlashLayout returns the layout the bootloader is built with.
func DefaultFlashLayout() *config.FlashLayout {
	return &config.FlashLayout{
		PageSize:           FlashPageSize,
		SectorSize:         FlashSectorSize,
		Slots:              NumManifests,
		SlotBitstreamBase:  SlotBitstreamBase,
		SlotSize:           SlotSize,
		ManifestOffset:     ManifestOffset,
		ManifestSize:       ManifestSize,
		FirmwareBaseOffset: FirmwareBaseOffset,
		OptionsBaseOffset:  OptionsBaseOffset,
	}
}

// LoadFlashLayout evaluates a pkl module amending pkl/FlashLayout.pkl.
func LoadFlashLayout(ctx context.Context, path string) (*config.FlashLayout, error) {
	flash, err := config.LoadFromPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := checkFlashLayout(flash); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return flash, nil
}

func checkFlashLayout(flash *config.FlashLayout) error {
	if flash.PageSize == 0 || flash.SectorSize == 0 || flash.SlotSize == 0 {
		return errors.New("page, sector and slot sizes must be non-zero")
	}
	if flash.SectorSize%flash.PageSize != 0 {
		return errors.New("sector size is not a multiple of the page size")
	}
	if flash.SlotBitstreamBase%flash.SectorSize != 0 || flash.SlotSize%flash.SectorSize != 0 {
		return errors.New("slots are not sector aligned")
	}
	if flash.ManifestSize != flash.PageSize {
		return errors.New("manifest size must be one flash page")
	}
	if flash.ManifestOffset%flash.PageSize != 0 {
		return errors.New("manifest offset is not page aligned")
	}
	if uint64(flash.ManifestOffset)+uint64(flash.ManifestSize) > uint64(flash.SlotSize) {
		return errors.New("manifest does not fit in a slot")
	}
	end := uint64(flash.SlotBitstreamBase) + uint64(flash.Slots)*uint64(flash.SlotSize)
	if end > 1<<32 {
		return errors.New("slots extend past the 32-bit address space")
	}
	return nil
}

// SlotLayout gives the SPI flash addresses used by one slot.
type SlotLayout struct {
	flash *config.FlashLayout
	slot  int
}

// NewSlotLayout returns the layout of slot, or of the bootloader for BootloaderSlot.
func NewSlotLayout(flash *config.FlashLayout, slot int) (*SlotLayout, error) {
	if slot != BootloaderSlot && (slot < 0 || slot >= int(flash.Slots)) {
		return nil, fmt.Errorf("slot %d: %w", slot, ErrSlotOutOfRange)
	}
	return &SlotLayout{flash: flash, slot: slot}, nil
}

func (s *SlotLayout) Slot() int {
	return s.slot
}

func (s *SlotLayout) IsBootloader() bool {
	return s.slot == BootloaderSlot
}

func (s *SlotLayout) BitstreamAddr() uint32 {
	if s.IsBootloader() {
		return 0
	}
	return s.flash.SlotBitstreamBase + uint32(s.slot)*s.flash.SlotSize
}

func (s *SlotLayout) ManifestAddr() uint32 {
	return s.BitstreamAddr() + s.flash.ManifestOffset
}

func (s *SlotLayout) FirmwareBase() (uint32, error) {
	if s.IsBootloader() {
		return 0, ErrBootloaderFirmware
	}
	return s.BitstreamAddr() + s.flash.FirmwareBaseOffset, nil
}

func (s *SlotLayout) OptionsBase() uint32 {
	return s.BitstreamAddr() + s.flash.OptionsBaseOffset
}

func (s *SlotLayout) StartAddr() uint32 {
	return s.BitstreamAddr()
}

// EndAddr is exclusive.
func (s *SlotLayout) EndAddr() uint32 {
	return s.BitstreamAddr() + s.flash.SlotSize
}

// ManifestWindow is the flash window holding the slot's manifest.
func (s *SlotLayout) ManifestWindow() Window {
	addr := s.ManifestAddr()
	return Window{Start: addr, End: addr + s.flash.ManifestSize}
}

// Slots returns the bootloader layout followed by every user slot.
func Slots(flash *config.FlashLayout) []*SlotLayout {
	out := []*SlotLayout{{flash: flash, slot: BootloaderSlot}}
	for i := 0; i < int(flash.Slots); i++ {
		out = append(out, &SlotLayout{flash: flash, slot: i})
	}
	return out
}
