package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/log"
)

// erased is the value every byte of a freshly erased flash page reads as.
const erased = 0xFF

var (
	errInvalidUTF8 = errors.New("invalid utf-8")
	errNotObject   = errors.New("expected object")
)

// FromSlice decodes a single JSON manifest. Trailing data other than
// whitespace is an error. The magic is not checked.
func FromSlice(b []byte) (*BitstreamManifest, error) {
	m, err := decode(b)
	if err != nil {
		log.Warn("Bitstream manifest parse error", "err", err)
		return nil, err
	}
	log.Info("Bitstream manifest parse OK")
	return m, nil
}

func decode(b []byte) (*BitstreamManifest, error) {
	if !utf8.Valid(b) {
		return nil, &DecodeError{Err: errInvalidUTF8}
	}
	var m BitstreamManifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &m, nil
}

// TrimErased drops the trailing erased bytes of a flash window. It returns
// false if the window holds nothing but erased bytes.
func TrimErased(window []byte) ([]byte, bool) {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] != erased {
			return window[:i+1], true
		}
	}
	return nil, false
}

// FromWindow decodes the manifest stored in a flash window that may be
// followed by erased bytes. An erased window and a corrupt one both report
// false, since the only recourse in either case is to skip the slot.
func FromWindow(window []byte) (*BitstreamManifest, bool) {
	b, ok := TrimErased(window)
	if !ok {
		log.Info("Manifest region is all ones, ignoring")
		return nil, false
	}
	log.Debug("Manifest region", "length", len(b))
	m, err := FromSlice(b)
	if err != nil {
		log.Warn("Manifest region is not a valid manifest, ignoring", "length", len(b))
		return nil, false
	}
	return m, true
}

// fields holds the raw members of one JSON object.
type fields map[string]json.RawMessage

func decodeFields(data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errNotObject
	}
	return f, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (f fields) required(name string, v any) error {
	raw, ok := f[name]
	if !ok || isNull(raw) {
		return &MissingFieldError{Field: name}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &FieldError{Field: name, Err: err}
	}
	return nil
}

// optional decodes name into v, which must be a pointer to a pointer.
// An absent or null member leaves v nil.
func (f fields) optional(name string, v any) error {
	raw, ok := f[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &FieldError{Field: name, Err: err}
	}
	return nil
}

func (r *MemoryRegion) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	var out MemoryRegion
	if err := f.required("filename", &out.Filename); err != nil {
		return err
	}
	if err := f.required("region_type", &out.RegionType); err != nil {
		return err
	}
	if err := f.optional("spiflash_src", &out.SpiflashSrc); err != nil {
		return err
	}
	if err := f.optional("psram_dst", &out.PsramDst); err != nil {
		return err
	}
	if err := f.required("size", &out.Size); err != nil {
		return err
	}
	if err := f.optional("crc", &out.Crc); err != nil {
		return err
	}
	*r = out
	return nil
}

func (c *ExternalPLLConfig) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	var out ExternalPLLConfig
	if err := f.required("clk0_hz", &out.Clk0Hz); err != nil {
		return err
	}
	if err := f.optional("clk1_hz", &out.Clk1Hz); err != nil {
		return err
	}
	if err := f.required("clk1_inherit", &out.Clk1Inherit); err != nil {
		return err
	}
	if err := f.optional("spread_spectrum", &out.SpreadSpectrum); err != nil {
		return err
	}
	*c = out
	return nil
}

func (h *BitstreamHelp) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	var out BitstreamHelp
	if err := f.required("brief", &out.Brief); err != nil {
		return err
	}
	if err := f.required("video", &out.Video); err != nil {
		return err
	}
	if err := f.labels("io_left", out.IOLeft[:]); err != nil {
		return err
	}
	if err := f.labels("io_right", out.IORight[:]); err != nil {
		return err
	}
	*h = out
	return nil
}

// labels decodes a fixed-length label array. Every entry must be present.
func (f fields) labels(name string, dst []Label) error {
	var got []Label
	if err := f.required(name, &got); err != nil {
		return err
	}
	if len(got) != len(dst) {
		return &ArrayLengthError{Field: name, Want: len(dst), Got: len(got)}
	}
	copy(dst, got)
	return nil
}

func (m *BitstreamManifest) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	var out BitstreamManifest
	if err := f.required("hw_rev", &out.HwRev); err != nil {
		return err
	}
	if err := f.required("name", &out.Name); err != nil {
		return err
	}
	if err := f.required("tag", &out.Tag); err != nil {
		return err
	}
	if err := f.required("regions", &out.Regions); err != nil {
		return err
	}
	if err := f.optional("help", &out.Help); err != nil {
		return err
	}
	if err := f.optional("external_pll_config", &out.ExternalPLLConfig); err != nil {
		return err
	}
	if err := f.required("magic", &out.Magic); err != nil {
		return err
	}
	*m = out
	return nil
}
