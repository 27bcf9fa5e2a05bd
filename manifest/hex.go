package manifest

import (
	"bytes"
	"io"

	"github.com/marcinbor85/gohex"
)

// ReadHexImage parses an Intel HEX flash dump. Addresses not covered by any
// record read as erased.
func ReadHexImage(r io.Reader) (*FlashImage, error) {
	b, err := intelHexToBinary(r)
	if err != nil {
		return nil, err
	}
	return NewFlashImage(b), nil
}

// HexFileToBinary converts Intel HEX to a flat image starting at address 0.
func HexFileToBinary(b []byte) ([]byte, error) {
	return intelHexToBinary(bytes.NewReader(b))
}

func intelHexToBinary(r io.Reader) ([]byte, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, err
	}
	var size uint32
	for _, segment := range mem.GetDataSegments() {
		if end := segment.Address + uint32(len(segment.Data)); end > size {
			size = end
		}
	}
	return mem.ToBinary(0, size, erased), nil
}
